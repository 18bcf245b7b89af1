package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	assert.ElementsMatch(t, BundledPresets, presets)
}

func TestPreset_AllParse(t *testing.T) {
	for _, name := range BundledPresets {
		t.Run(name, func(t *testing.T) {
			groups, err := Preset(name)
			require.NoError(t, err)
			for group := range DefaultHighlights() {
				assert.Contains(t, groups, group)
			}
		})
	}
}

func TestPreset_Unknown(t *testing.T) {
	_, err := Preset("neon")
	assert.Error(t, err)
}

func TestLoadConfig_ThemeLayers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[popup]
theme = "catppuccin"

[highlights.PmenuSel]
fg = "1"
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "catppuccin", cfg.Popup.Theme)
	assert.Equal(t, "#cdd6f4", cfg.Highlights["Pmenu"].Foreground, "from the preset")
	assert.Equal(t, HighlightConfig{Foreground: "1"}, cfg.Highlights["PmenuSel"], "file wins")
}

func TestLoadConfig_UnknownTheme(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[popup]\ntheme = \"neon\"\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
