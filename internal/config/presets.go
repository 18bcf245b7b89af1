package config

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// EmbeddedPresets contains the bundled highlight presets.
//
//go:embed presets/*.toml
var EmbeddedPresets embed.FS

// BundledPresets lists all embedded preset names.
var BundledPresets = []string{"catppuccin", "minimal", "solarized"}

// Preset returns the highlight groups of a bundled preset.
func Preset(name string) (map[string]HighlightConfig, error) {
	data, err := EmbeddedPresets.ReadFile("presets/" + name + ".toml")
	if err != nil {
		return nil, fmt.Errorf("unknown theme %q, must be one of: %v", name, ListPresets())
	}
	var p struct {
		Highlights map[string]HighlightConfig `toml:"highlights"`
	}
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse theme %q: %w", name, err)
	}
	return p.Highlights, nil
}

// ListPresets returns names of all embedded presets.
func ListPresets() []string {
	entries, err := fs.ReadDir(EmbeddedPresets, "presets")
	if err != nil {
		return BundledPresets // Fallback to known list
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if ext := filepath.Ext(name); !entry.IsDir() && ext == ".toml" {
			names = append(names, strings.TrimSuffix(name, ext))
		}
	}
	return names
}

// highlightsFor layers the built-in groups, the named preset and the groups
// from the config file, later ones winning.
func highlightsFor(theme string, fromFile map[string]HighlightConfig) (map[string]HighlightConfig, error) {
	merged := DefaultHighlights()
	if theme != "" {
		preset, err := Preset(theme)
		if err != nil {
			return nil, err
		}
		for name, h := range preset {
			merged[name] = h
		}
	}
	for name, h := range fromFile {
		merged[name] = h
	}
	return merged, nil
}
