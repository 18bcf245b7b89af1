// Package options turns popup option sets into layout constraints.
//
// Every option key is applied on its own: a bad value is reported but does
// not stop the other keys from taking effect.
package options

import (
	"errors"
	"fmt"
	"time"

	"github.com/jmylchreest/popwin/internal/layout"
)

// Option errors.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidExpression is the layout package's error for bad cursor offsets.
	ErrInvalidExpression = layout.ErrInvalidExpression
)

// DefaultZIndex is used when no z-index, or zero, is given.
const DefaultZIndex = 50

// Options is a structured option set. Nil fields are not set.
type Options struct {
	Line      *layout.Coord
	Col       *layout.Coord
	Pos       *string
	MinWidth  *int
	MinHeight *int
	MaxWidth  *int
	MaxHeight *int
	ZIndex    *int
	Time      *time.Duration
	Highlight *string
	Tab       *int
	Wrap      *bool
}

// Defaults are the values used for options that are not given.
type Defaults struct {
	ZIndex int
	Wrap   bool
}

// DefaultDefaults returns the built-in option defaults.
func DefaultDefaults() Defaults {
	return Defaults{ZIndex: DefaultZIndex, Wrap: true}
}

// Resolved is the result of resolving a full option set.
type Resolved struct {
	Constraints layout.Constraints
	ZIndex      int
	Time        time.Duration
	Highlight   string
}

// Int returns a pointer to n, for building Options literals.
func Int(n int) *int { return &n }

// String returns a pointer to s.
func String(s string) *string { return &s }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Duration returns a pointer to d.
func Duration(d time.Duration) *time.Duration { return &d }

// Coord returns a pointer to c.
func Coord(c layout.Coord) *layout.Coord { return &c }

// Resolve produces constraints and presentation settings from opts, starting
// from the popup defaults: top-left anchor, unset position, wrap per d. The
// returned error joins every per-key problem; the result is valid either way.
func Resolve(opts Options, d Defaults) (Resolved, error) {
	return resolve(opts, d, nil)
}

// ResolveAtCursor is Resolve for popups placed at the cursor: the cursor
// placement is applied before line, col and pos, which still override it.
func ResolveAtCursor(opts Options, d Defaults, cursor layout.Point) (Resolved, error) {
	return resolve(opts, d, &cursor)
}

func resolve(opts Options, d Defaults, cursor *layout.Point) (Resolved, error) {
	r := Resolved{
		Constraints: layout.Constraints{Anchor: layout.AnchorTopLeft, Wrap: d.Wrap},
	}
	var errs []error

	c := &r.Constraints
	errs = appendErr(errs, setBound(&c.MinWidth, "minwidth", opts.MinWidth, false))
	errs = appendErr(errs, setBound(&c.MinHeight, "minheight", opts.MinHeight, false))
	errs = appendErr(errs, setBound(&c.MaxWidth, "maxwidth", opts.MaxWidth, false))
	errs = appendErr(errs, setBound(&c.MaxHeight, "maxheight", opts.MaxHeight, false))
	if cursor != nil {
		*c = AtCursor(*c, *cursor)
	}
	errs = append(errs, applyPosition(c, opts)...)

	if opts.Wrap != nil {
		c.Wrap = *opts.Wrap
	}
	if opts.ZIndex != nil {
		r.ZIndex = *opts.ZIndex
	}
	if r.ZIndex == 0 {
		r.ZIndex = d.ZIndex
	}
	if opts.Time != nil && *opts.Time > 0 {
		r.Time = *opts.Time
	}
	if opts.Highlight != nil {
		r.Highlight = *opts.Highlight
	}

	return r, errors.Join(errs...)
}

// ResolveMove applies the size and position keys of opts onto c. Size bounds
// only change when given a positive value, so a move never clears them.
func ResolveMove(c layout.Constraints, opts Options) (layout.Constraints, error) {
	var errs []error
	errs = appendErr(errs, setBound(&c.MinWidth, "minwidth", opts.MinWidth, true))
	errs = appendErr(errs, setBound(&c.MinHeight, "minheight", opts.MinHeight, true))
	errs = appendErr(errs, setBound(&c.MaxWidth, "maxwidth", opts.MaxWidth, true))
	errs = appendErr(errs, setBound(&c.MaxHeight, "maxheight", opts.MaxHeight, true))
	errs = append(errs, applyPosition(&c, opts)...)
	return c, errors.Join(errs...)
}

// AtCursor places c just above the cursor, or just below it when the cursor
// is on the first screen row. cursor is 0-based.
func AtCursor(c layout.Constraints, cursor layout.Point) layout.Constraints {
	c.Anchor = layout.AnchorBotLeft
	c.Line = layout.At(cursor.Row)
	if cursor.Row == 0 {
		c.Line = layout.At(2)
		c.Anchor = layout.AnchorTopLeft
	}
	c.Col = layout.At(cursor.Col + 1)
	return c
}

// applyPosition sets line, col and pos.
func applyPosition(c *layout.Constraints, opts Options) []error {
	var errs []error
	if opts.Line != nil {
		if err := checkCoord("line", *opts.Line); err != nil {
			errs = append(errs, err)
		} else if opts.Line.IsSet() {
			c.Line = *opts.Line
		}
	}
	if opts.Col != nil {
		if err := checkCoord("col", *opts.Col); err != nil {
			errs = append(errs, err)
		} else if opts.Col.IsSet() {
			c.Col = *opts.Col
		}
	}
	if opts.Pos != nil {
		a, err := layout.ParseAnchor(*opts.Pos)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: pos %q", ErrInvalidArgument, *opts.Pos))
		} else {
			c.Anchor = a
		}
	}
	return errs
}

func checkCoord(key string, c layout.Coord) error {
	if !c.Cursor && c.Abs < 0 {
		return fmt.Errorf("%w: %s %d", ErrInvalidArgument, key, c.Abs)
	}
	return nil
}

// setBound stores a size bound. With positiveOnly, zero leaves dst alone.
func setBound(dst *int, key string, v *int, positiveOnly bool) error {
	if v == nil {
		return nil
	}
	if *v < 0 {
		return fmt.Errorf("%w: %s %d", ErrInvalidArgument, key, *v)
	}
	if positiveOnly && *v == 0 {
		return nil
	}
	*dst = *v
	return nil
}

func appendErr(errs []error, err error) []error {
	if err != nil {
		return append(errs, err)
	}
	return errs
}
