// Package render paints popups over a text view.
package render

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jmylchreest/popwin/internal/config"
)

// Theme maps highlight group names to styles.
type Theme struct {
	renderer     *lipgloss.Renderer
	styles       map[string]lipgloss.Style
	defaultGroup string
}

// NewTheme builds styles for groups. Popups without a highlight use
// defaultGroup. A nil renderer uses lipgloss' default renderer.
func NewTheme(groups map[string]config.HighlightConfig, defaultGroup string, renderer *lipgloss.Renderer) *Theme {
	if renderer == nil {
		renderer = lipgloss.DefaultRenderer()
	}
	t := &Theme{
		renderer:     renderer,
		styles:       make(map[string]lipgloss.Style, len(groups)),
		defaultGroup: defaultGroup,
	}
	for name, h := range groups {
		t.styles[name] = t.build(h)
	}
	return t
}

// ThemeFromConfig builds the theme described by cfg.
func ThemeFromConfig(cfg *config.Config, renderer *lipgloss.Renderer) *Theme {
	return NewTheme(cfg.Highlights, cfg.Popup.Highlight, renderer)
}

// NewRenderer returns a renderer writing to stdout. profile forces a color
// profile: "ascii", "ansi", "ansi256" or "truecolor"; anything else detects
// it from the terminal.
func NewRenderer(profile string) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(os.Stdout)
	if p, ok := ParseProfile(profile); ok {
		r.SetColorProfile(p)
	}
	return r
}

// ParseProfile maps a color profile name to a termenv profile.
func ParseProfile(name string) (termenv.Profile, bool) {
	switch name {
	case "ascii":
		return termenv.Ascii, true
	case "ansi":
		return termenv.ANSI, true
	case "ansi256":
		return termenv.ANSI256, true
	case "truecolor":
		return termenv.TrueColor, true
	default:
		return termenv.Ascii, false
	}
}

func (t *Theme) build(h config.HighlightConfig) lipgloss.Style {
	s := t.renderer.NewStyle().
		Bold(h.Bold).
		Italic(h.Italic).
		Underline(h.Underline).
		Reverse(h.Reverse)
	if h.Foreground != "" {
		s = s.Foreground(lipgloss.Color(h.Foreground))
	}
	if h.Background != "" {
		s = s.Background(lipgloss.Color(h.Background))
	}
	return s
}

// Style returns the style for group name, falling back to the default group
// and then to an unstyled style.
func (t *Theme) Style(name string) lipgloss.Style {
	if s, ok := t.styles[name]; ok {
		return s
	}
	if s, ok := t.styles[t.defaultGroup]; ok {
		return s
	}
	return t.renderer.NewStyle()
}

// Has reports whether the theme defines group name.
func (t *Theme) Has(name string) bool {
	_, ok := t.styles[name]
	return ok
}

// Renderer returns the renderer the theme's styles were built with.
func (t *Theme) Renderer() *lipgloss.Renderer {
	return t.renderer
}
