package script

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/popwin/internal/config"
	"github.com/jmylchreest/popwin/internal/registry"
)

func run(t *testing.T, src string) *Report {
	t.Helper()
	sc, err := Parse([]byte(src))
	require.NoError(t, err)
	report, err := NewRunner(nil, nil, nil).Run(context.Background(), sc)
	require.NoError(t, err)
	return report
}

func requirePassed(t *testing.T, r *Report) {
	t.Helper()
	for _, st := range r.Steps {
		assert.Empty(t, st.Failures, "step %d (%s)", st.Index, st.Op)
	}
	require.True(t, r.Passed())
}

func TestParse_Defaults(t *testing.T) {
	sc, err := Parse([]byte(`
name: empty
steps:
  - op: create
    content: hi
`))
	require.NoError(t, err)
	assert.Equal(t, "empty", sc.Name)
	assert.Equal(t, 1, sc.View)
	require.Len(t, sc.Steps, 1)
	assert.Equal(t, OpCreate, sc.Steps[0].Op)
	assert.Equal(t, "hi", sc.Steps[0].Content)
}

func TestParse_UnknownOp(t *testing.T) {
	_, err := Parse([]byte(`
steps:
  - op: create
    content: hi
  - op: explode
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownOp)

	var serr *ScriptError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 2, serr.Step)
	assert.Equal(t, Op("explode"), serr.Op)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("steps: [\n"))
	assert.Error(t, err)
}

func TestParse_Duration(t *testing.T) {
	sc, err := Parse([]byte(`
steps:
  - op: advance
    duration: 250
  - op: advance
    duration: 2s
`))
	require.NoError(t, err)
	assert.Equal(t, Duration(250*time.Millisecond), sc.Steps[0].Duration)
	assert.Equal(t, Duration(2*time.Second), sc.Steps[1].Duration)

	_, err = Parse([]byte(`
steps:
  - op: advance
    duration: soon
`))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: file\nsteps: []\n"), 0o644))

	sc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file", sc.Name)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestRun_HelloTopLeft(t *testing.T) {
	r := run(t, `
name: hello
screen: {rows: 24, cols: 80}
steps:
  - op: create
    name: hello
    content: hello
    options: {line: 1, col: 1, pos: topleft}
    expect: {row: 0, col: 0, width: 5, height: 1, visible: true, count: 1}
  - op: getoptions
    name: hello
    expect: {pos: topleft, zindex: 50, line: "1"}
`)
	requirePassed(t, r)
	assert.Equal(t, registry.FirstID, r.Steps[0].ID)
	assert.Equal(t, 1, r.Open)
	assert.NotEmpty(t, r.RunID)
}

func TestRun_MinWidth(t *testing.T) {
	r := run(t, `
steps:
  - op: create
    name: p
    content: hello
    options: {line: 1, col: 1, pos: topleft, minwidth: 20}
    expect: {width: 20, height: 1}
`)
	requirePassed(t, r)
}

func TestRun_CloseThenGetPos(t *testing.T) {
	r := run(t, `
steps:
  - op: create
    name: p
    content: bye
  - op: close
    name: p
    expect: {count: 0}
  - op: getpos
    name: p
    expect: {row: 0, col: 0, width: 0, height: 0, visible: false}
`)
	requirePassed(t, r)
	assert.Zero(t, r.Open)
}

func TestRun_AtCursorFirstRow(t *testing.T) {
	r := run(t, `
cursor: {row: 0, col: 0}
steps:
  - op: atcursor
    name: hint
    content: hint
    expect: {row: 1, pos: topleft, line: "2"}
  - op: cursor
    row: 10
    col: 4
  - op: atcursor
    name: above
    content: hint
    expect: {row: 9, col: 4, pos: botleft}
`)
	requirePassed(t, r)
}

func TestRun_TimerAutoClose(t *testing.T) {
	r := run(t, `
steps:
  - op: create
    name: flash
    content: saved
    options: {time: 500}
  - op: advance
    duration: 200ms
  - op: getoptions
    name: flash
    expect: {count: 1}
  - op: advance
    duration: 300ms
    expect: {count: 0}
`)
	requirePassed(t, r)
	assert.Equal(t, 300*time.Millisecond, r.Steps[2].ClosesIn)
	assert.Equal(t, 1, r.Steps[3].Fired)
	assert.Equal(t, 500*time.Millisecond, r.Elapsed)
}

func TestRun_ExpectedErrors(t *testing.T) {
	r := run(t, `
steps:
  - op: create
    content: []
    expect: {error: InvalidContent, count: 0}
  - op: create
    content: x
    options: {tab: 2}
    expect: {error: NotImplemented}
  - op: create
    name: p
    content: x
    options: {pos: sideways}
    expect: {error: InvalidArgument, count: 1}
  - op: move
    name: p
    options: {line: "cursor+x"}
    expect: {error: InvalidExpression}
  - op: window
    name: w
  - op: hide
    name: w
    expect: {error: NotPopupWindow}
`)
	requirePassed(t, r)
	assert.NotEmpty(t, r.Steps[0].Error)
}

func TestRun_FailuresAreReported(t *testing.T) {
	r := run(t, `
steps:
  - op: create
    name: p
    content: hello
    options: {line: 1, col: 1, pos: topleft}
    expect: {width: 7}
  - op: create
    content: []
`)
	assert.False(t, r.Passed())
	assert.Equal(t, 2, r.Failures)
	assert.Len(t, r.Steps[0].Failures, 1)
	assert.Contains(t, r.Steps[1].Failures[0], "unexpected error")
}

func TestRun_HideShowAndViews(t *testing.T) {
	r := run(t, `
steps:
  - op: create
    name: global
    content: g
    options: {tab: -1}
  - op: create
    name: local
    content: l
  - op: hide
    name: local
    expect: {visible: false}
  - op: show
    name: local
    expect: {visible: true}
  - op: view
    view: 2
  - op: closeall
    expect: {count: 1}
  - op: closeview
    view: 1
    expect: {count: 0}
`)
	requirePassed(t, r)
}

func TestRun_ScreenResizeReflow(t *testing.T) {
	r := run(t, `
screen: {rows: 24, cols: 80}
steps:
  - op: create
    name: p
    content: hello
    options: {pos: center}
  - op: screen
    rows: 10
    cols: 20
  - op: reflow
  - op: getpos
    name: p
    expect: {row: 4, col: 7}
`)
	requirePassed(t, r)
	assert.Equal(t, 1, r.Steps[2].Reflowed)
}

func TestRun_SetText(t *testing.T) {
	r := run(t, `
steps:
  - op: create
    name: p
    content: a
    options: {line: 1, col: 1, pos: topleft}
  - op: settext
    name: p
    content: [longer, lines]
    expect: {width: 6, height: 2}
`)
	requirePassed(t, r)
}

func TestRun_Render(t *testing.T) {
	r := run(t, `
screen: {rows: 3, cols: 10}
base:
  - ".........."
  - ".........."
  - ".........."
steps:
  - op: create
    name: p
    content: hi
    options: {line: 2, col: 3, pos: topleft}
  - op: render
    expect:
      frame:
        - ".........."
        - "..hi......"
        - ".........."
`)
	requirePassed(t, r)
	assert.Len(t, r.Steps[1].Frame, 3)
}

func TestRun_UnknownNameStops(t *testing.T) {
	sc, err := Parse([]byte(`
steps:
  - op: hide
    name: ghost
`))
	require.NoError(t, err)

	_, err = NewRunner(nil, nil, nil).Run(context.Background(), sc)
	assert.ErrorIs(t, err, ErrUnknownName)
}

func TestRun_Cancelled(t *testing.T) {
	sc, err := Parse([]byte("steps:\n  - op: create\n    content: x\n"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewRunner(nil, nil, nil).Run(ctx, sc)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_ConfiguredScreen(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Screen.Rows = 10
	cfg.Screen.Cols = 40

	sc, err := Parse([]byte(`
steps:
  - op: create
    name: p
    content: abcd
    options: {pos: center}
    expect: {row: 4, col: 18}
`))
	require.NoError(t, err)
	r, err := NewRunner(cfg, nil, nil).Run(context.Background(), sc)
	require.NoError(t, err)
	requirePassed(t, r)
}
