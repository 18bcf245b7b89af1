package render

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/jmylchreest/popwin/internal/content"
	"github.com/jmylchreest/popwin/internal/layout"
	"github.com/jmylchreest/popwin/internal/popup"
)

// Compose paints popups over base, a view drawn for screen. Popups are
// painted in the order given, so pass them back to front as
// popup.Manager.Visible returns them. The result has exactly screen.Rows
// lines, each screen.Cols cells wide.
func Compose(base string, screen layout.Screen, popups []popup.Snapshot, theme *Theme) string {
	rows := max(screen.Rows, 1)
	cols := max(screen.Cols, 1)

	lines := Fit(base, rows, cols)
	for _, p := range popups {
		lines = splice(lines, Surface(p, theme), p.Rect.Col, p.Rect.Row)
	}
	return strings.Join(lines, "\n")
}

// Fit cuts or pads view to rows lines of cols cells.
func Fit(view string, rows, cols int) []string {
	var lines []string
	if view != "" {
		lines = strings.Split(view, "\n")
	}
	if len(lines) > rows {
		lines = lines[:rows]
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	for i, l := range lines {
		lines[i] = pad(ansi.Truncate(l, cols, ""), cols)
	}
	return lines
}

// Surface renders a popup's content as Height lines of Width cells in its
// highlight style. Properties whose type names a highlight group are
// styled with that group.
func Surface(p popup.Snapshot, theme *Theme) []string {
	width := max(p.Rect.Width, 1)
	height := max(p.Rect.Height, 1)

	styled := make([]string, len(p.Lines))
	copy(styled, p.Lines)
	if theme != nil {
		for _, pl := range p.Props {
			styled = applyProp(styled, pl, theme)
		}
	}

	var rows []string
	for _, l := range styled {
		if p.Wrap && ansi.StringWidth(l) > width {
			rows = append(rows, strings.Split(ansi.Hardwrap(l, width, true), "\n")...)
		} else {
			rows = append(rows, ansi.Truncate(l, width, ""))
		}
		if len(rows) >= height {
			break
		}
	}
	if len(rows) > height {
		rows = rows[:height]
	}
	for len(rows) < height {
		rows = append(rows, "")
	}

	for i, r := range rows {
		r = pad(r, width)
		if theme != nil {
			r = theme.Style(p.Highlight).Render(r)
		}
		rows[i] = r
	}
	return rows
}

func applyProp(lines []string, pl content.Placement, theme *Theme) []string {
	if pl.Line < 0 || pl.Line >= len(lines) || !theme.Has(pl.Prop.Type) {
		return lines
	}
	line := lines[pl.Line]
	w := ansi.StringWidth(line)
	start := pl.Col
	end := w
	if pl.Prop.Length > 0 {
		end = min(start+pl.Prop.Length, w)
	}
	if start >= end {
		return lines
	}
	lines[pl.Line] = ansi.Cut(line, 0, start) +
		theme.Style(pl.Prop.Type).Render(ansi.Cut(line, start, end)) +
		ansi.Cut(line, end, w)
	return lines
}

// splice replaces the cells under overlay, which starts at column x of row
// y. Escape sequences on either side of the overlay are kept.
func splice(lines, overlay []string, x, y int) []string {
	if x < 0 {
		x = 0
	}
	for i, over := range overlay {
		idx := y + i
		if idx < 0 || idx >= len(lines) {
			continue
		}
		line := lines[idx]
		lineW := ansi.StringWidth(line)
		overW := ansi.StringWidth(over)

		var b strings.Builder
		b.WriteString(ansi.Truncate(line, x, ""))
		if w := ansi.StringWidth(b.String()); w < x {
			b.WriteString(strings.Repeat(" ", x-w))
		}
		b.WriteString("\x1b[0m")
		b.WriteString(over)
		b.WriteString("\x1b[0m")
		if x+overW < lineW {
			b.WriteString(ansi.TruncateLeft(line, x+overW, ""))
		}
		lines[idx] = b.String()
	}
	return lines
}

func pad(s string, width int) string {
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
