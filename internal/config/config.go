// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/popwin/internal/layout"
	"github.com/jmylchreest/popwin/internal/options"
)

// Default configuration values.
const (
	DefaultRows      = 24
	DefaultCols      = 80
	DefaultHighlight = "Pmenu"
	DefaultFormat    = "plain"
	DefaultDemoTime  = 3 * time.Second
)

// Config represents the popwin configuration.
type Config struct {
	Popup      PopupConfig                `toml:"popup"`
	Screen     ScreenConfig               `toml:"screen"`
	Highlights map[string]HighlightConfig `toml:"highlights"`
	Output     OutputConfig               `toml:"output"`
	Demo       DemoConfig                 `toml:"demo"`
}

// PopupConfig holds defaults for options a popup does not set.
type PopupConfig struct {
	ZIndex    int    `toml:"zindex"`    // Used when zindex is missing or 0
	Wrap      bool   `toml:"wrap"`      // Wrap long lines
	Highlight string `toml:"highlight"` // Group used when a popup names none
	Theme     string `toml:"theme"`     // Bundled highlight preset, empty = built-in groups
}

// ScreenConfig is the grid size used when nothing else gives one.
type ScreenConfig struct {
	Rows int `toml:"rows"`
	Cols int `toml:"cols"`
}

// HighlightConfig describes one highlight group.
type HighlightConfig struct {
	Foreground string `toml:"fg"` // lipgloss color: "#rrggbb", ANSI number or name
	Background string `toml:"bg"`
	Bold       bool   `toml:"bold"`
	Italic     bool   `toml:"italic"`
	Underline  bool   `toml:"underline"`
	Reverse    bool   `toml:"reverse"`
}

// OutputConfig holds scenario report settings.
type OutputConfig struct {
	Format string `toml:"format"` // plain, json, yaml
}

// DemoConfig holds settings for the interactive demo.
type DemoConfig struct {
	Time     Duration `toml:"time"`      // Auto-close for popups opened by the demo, 0 = never
	ShowHelp bool     `toml:"show_help"` // Show the key help line
	Watch    bool     `toml:"watch"`     // Reload the config file when it changes

	Clipboard ClipboardConfig `toml:"clipboard"`
}

// ClipboardConfig holds clipboard settings for the demo.
type ClipboardConfig struct {
	Command string `toml:"command"` // Empty = auto-detect wl-copy, xclip, xsel
}

// ValidFormats returns the report formats the CLI understands.
func ValidFormats() []string {
	return []string{"plain", "json", "yaml"}
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Popup: PopupConfig{
			ZIndex:    options.DefaultZIndex,
			Wrap:      true,
			Highlight: DefaultHighlight,
		},
		Screen: ScreenConfig{
			Rows: DefaultRows,
			Cols: DefaultCols,
		},
		Highlights: DefaultHighlights(),
		Output: OutputConfig{
			Format: DefaultFormat,
		},
		Demo: DemoConfig{
			Time:     Duration(DefaultDemoTime),
			ShowHelp: true,
			Watch:    true,
		},
	}
}

// DefaultHighlights returns the built-in highlight groups.
func DefaultHighlights() map[string]HighlightConfig {
	return map[string]HighlightConfig{
		"Pmenu":      {Foreground: "252", Background: "238"},
		"PmenuSel":   {Foreground: "235", Background: "111", Bold: true},
		"WarningMsg": {Foreground: "214", Background: "236", Bold: true},
		"ErrorMsg":   {Foreground: "231", Background: "160", Bold: true},
		"Comment":    {Foreground: "244", Italic: true},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "popwin", "config.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Highlight groups from the file are merged over the preset and the
	// built-in ones.
	cfg.Highlights = nil
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Highlights, err = highlightsFor(cfg.Popup.Theme, cfg.Highlights); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Popup.ZIndex < 0 {
		return fmt.Errorf("popup.zindex must not be negative, got %d", c.Popup.ZIndex)
	}
	if c.Screen.Rows < 1 || c.Screen.Cols < 1 {
		return fmt.Errorf("screen must be at least 1x1, got %dx%d", c.Screen.Rows, c.Screen.Cols)
	}
	if !slices.Contains(ValidFormats(), c.Output.Format) {
		return fmt.Errorf("invalid output format %q, must be one of: %v", c.Output.Format, ValidFormats())
	}
	if c.Demo.Time < 0 {
		return fmt.Errorf("demo.time must not be negative, got %s", c.Demo.Time.Duration())
	}
	return nil
}

// OptionDefaults returns the popup defaults for option resolution.
func (c *Config) OptionDefaults() options.Defaults {
	d := options.Defaults{ZIndex: c.Popup.ZIndex, Wrap: c.Popup.Wrap}
	if d.ZIndex == 0 {
		d.ZIndex = options.DefaultZIndex
	}
	return d
}

// ScreenSize returns the configured grid size.
func (c *Config) ScreenSize() layout.Screen {
	return layout.Screen{Rows: c.Screen.Rows, Cols: c.Screen.Cols}
}

// GetHighlight returns the named highlight group. An empty name selects the
// popup default group.
func (c *Config) GetHighlight(name string) (HighlightConfig, bool) {
	if name == "" {
		name = c.Popup.Highlight
	}
	h, ok := c.Highlights[name]
	return h, ok
}
