package script

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListBuiltin(t *testing.T) {
	names := ListBuiltin()
	assert.Contains(t, names, "hello")
	assert.Contains(t, names, "render")
}

func TestBuiltin_AllPass(t *testing.T) {
	for _, name := range ListBuiltin() {
		t.Run(name, func(t *testing.T) {
			sc, err := Builtin(name)
			require.NoError(t, err)
			assert.Equal(t, name, sc.Name)

			report, err := NewRunner(nil, nil, nil).Run(context.Background(), sc)
			require.NoError(t, err)
			requirePassed(t, report)
		})
	}
}

func TestBuiltin_Unknown(t *testing.T) {
	_, err := Builtin("nope")
	assert.Error(t, err)
}
