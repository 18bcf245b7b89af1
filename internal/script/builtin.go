package script

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// EmbeddedScenarios contains the bundled example scenarios.
//
//go:embed scenarios/*.yaml
var EmbeddedScenarios embed.FS

// Builtin parses a bundled scenario by name.
func Builtin(name string) (*Scenario, error) {
	data, err := EmbeddedScenarios.ReadFile("scenarios/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown scenario %q, must be one of: %v", name, ListBuiltin())
	}
	return Parse(data)
}

// ListBuiltin returns names of all bundled scenarios.
func ListBuiltin() []string {
	entries, err := fs.ReadDir(EmbeddedScenarios, "scenarios")
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if ext := filepath.Ext(name); !entry.IsDir() && ext == ".yaml" {
			names = append(names, strings.TrimSuffix(name, ext))
		}
	}
	return names
}
