package popup

import (
	"time"

	"github.com/jmylchreest/popwin/internal/content"
	"github.com/jmylchreest/popwin/internal/layout"
	"github.com/jmylchreest/popwin/internal/timer"
)

// Screen reports the current size of the terminal grid.
type Screen interface {
	Size() layout.Screen
}

// Cursor reports the current 0-based cursor cell.
type Cursor interface {
	Position() layout.Point
}

// Redrawer receives redraw requests. Requests are fire and forget.
type Redrawer interface {
	RequestFullRedraw()
}

// ScreenFunc adapts a function to Screen.
type ScreenFunc func() layout.Screen

func (f ScreenFunc) Size() layout.Screen { return f() }

// CursorFunc adapts a function to Cursor.
type CursorFunc func() layout.Point

func (f CursorFunc) Position() layout.Point { return f() }

// RedrawFunc adapts a function to Redrawer.
type RedrawFunc func()

func (f RedrawFunc) RequestFullRedraw() { f() }

// FixedScreen is a Screen that never resizes.
type FixedScreen layout.Screen

func (s FixedScreen) Size() layout.Screen { return layout.Screen(s) }

// CloseCallback is called after a popup has been closed.
type CloseCallback func(id int)

// PopupState is the state of one live popup.
type PopupState struct {
	ID          int
	Constraints layout.Constraints
	Layout      layout.Result
	ZIndex      int
	Hidden      bool
	Time        time.Duration
	Highlight   string
	Buffer      *content.Buffer

	// Cursor is the cursor cell the last layout pass resolved against.
	Cursor layout.Point

	timer timer.Handle
}

// cursorRelative reports whether either coordinate follows the cursor.
func (p *PopupState) cursorRelative() bool {
	return p.Constraints.Line.Cursor || p.Constraints.Col.Cursor
}

// PositionInfo is a snapshot of where a popup is. Row and Col are 0-based.
type PositionInfo struct {
	Row     int  `json:"row" yaml:"row"`
	Col     int  `json:"col" yaml:"col"`
	Width   int  `json:"width" yaml:"width"`
	Height  int  `json:"height" yaml:"height"`
	Visible bool `json:"visible" yaml:"visible"`
}

// OptionsInfo is a snapshot of a popup's stored options, as given rather
// than as resolved.
type OptionsInfo struct {
	Line      layout.Coord  `json:"line" yaml:"line"`
	Col       layout.Coord  `json:"col" yaml:"col"`
	MinWidth  int           `json:"minwidth" yaml:"minwidth"`
	MinHeight int           `json:"minheight" yaml:"minheight"`
	MaxWidth  int           `json:"maxwidth" yaml:"maxwidth"`
	MaxHeight int           `json:"maxheight" yaml:"maxheight"`
	ZIndex    int           `json:"zindex" yaml:"zindex"`
	Pos       layout.Anchor `json:"pos" yaml:"pos"`
	Time      time.Duration `json:"time" yaml:"time"`
	Highlight string        `json:"highlight,omitempty" yaml:"highlight,omitempty"`
	Wrap      bool          `json:"wrap" yaml:"wrap"`
}

// Snapshot is what a renderer needs to paint one popup.
type Snapshot struct {
	ID        int                 `json:"id" yaml:"id"`
	Rect      layout.Rect         `json:"rect" yaml:"rect"`
	ZIndex    int                 `json:"zindex" yaml:"zindex"`
	Highlight string              `json:"highlight,omitempty" yaml:"highlight,omitempty"`
	Wrap      bool                `json:"wrap" yaml:"wrap"`
	Lines     []string            `json:"lines" yaml:"lines"`
	Props     []content.Placement `json:"props,omitempty" yaml:"props,omitempty"`
}

func (p *PopupState) position() PositionInfo {
	r := p.Layout.Rect
	return PositionInfo{Row: r.Row, Col: r.Col, Width: r.Width, Height: r.Height, Visible: !p.Hidden}
}

func (p *PopupState) options() OptionsInfo {
	c := p.Constraints
	return OptionsInfo{
		Line:      c.Line,
		Col:       c.Col,
		MinWidth:  c.MinWidth,
		MinHeight: c.MinHeight,
		MaxWidth:  c.MaxWidth,
		MaxHeight: c.MaxHeight,
		ZIndex:    p.ZIndex,
		Pos:       c.Anchor,
		Time:      p.Time,
		Highlight: p.Highlight,
		Wrap:      c.Wrap,
	}
}

func (p *PopupState) snapshot() Snapshot {
	return Snapshot{
		ID:        p.ID,
		Rect:      p.Layout.Rect,
		ZIndex:    p.ZIndex,
		Highlight: p.Highlight,
		Wrap:      p.Constraints.Wrap,
		Lines:     p.Buffer.Lines(),
		Props:     p.Buffer.Properties(),
	}
}
