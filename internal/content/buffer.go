// Package content holds the text shown inside a popup: an ordered list of
// lines with inline property placements, loaded from a string, a list of
// strings or a list of line records.
package content

import (
	"errors"
	"fmt"

	"github.com/rivo/uniseg"
)

// Content errors.
var (
	ErrInvalidContent = errors.New("invalid content")
	ErrLocked         = errors.New("buffer is locked")
	ErrLineRange      = errors.New("line out of range")
)

// LineStore is the line storage a popup renders from.
type LineStore interface {
	AppendLine(after int, text string) error
	DeleteLine(n int) error
	LineCount() int
	Line(n int) string
}

// PropertySink receives inline property placements.
type PropertySink interface {
	AddProperty(line, col int, prop Prop) error
}

// Placement is a property anchored at a 0-based line and column.
type Placement struct {
	Line int  `json:"line" yaml:"line"`
	Col  int  `json:"col" yaml:"col"`
	Prop Prop `json:"prop" yaml:"prop"`
}

// Buffer is a popup's private line buffer. A new buffer holds one empty
// line. Every mutation advances the change tick.
type Buffer struct {
	lines  []string
	props  []Placement
	tick   uint64
	locked bool
}

// NewBuffer returns a buffer holding the single implicit empty line.
func NewBuffer() *Buffer {
	return &Buffer{lines: []string{""}}
}

// AppendLine inserts text after the 0-based line "after"; -1 inserts at the
// top.
func (b *Buffer) AppendLine(after int, text string) error {
	if b.locked {
		return ErrLocked
	}
	if after < -1 || after >= len(b.lines) {
		return fmt.Errorf("%w: %d", ErrLineRange, after)
	}
	b.lines = append(b.lines, "")
	copy(b.lines[after+2:], b.lines[after+1:])
	b.lines[after+1] = text
	for i := range b.props {
		if b.props[i].Line > after {
			b.props[i].Line++
		}
	}
	b.tick++
	return nil
}

// DeleteLine removes the 0-based line n along with its properties.
func (b *Buffer) DeleteLine(n int) error {
	if b.locked {
		return ErrLocked
	}
	if n < 0 || n >= len(b.lines) {
		return fmt.Errorf("%w: %d", ErrLineRange, n)
	}
	b.lines = append(b.lines[:n], b.lines[n+1:]...)
	kept := b.props[:0]
	for _, p := range b.props {
		switch {
		case p.Line == n:
			continue
		case p.Line > n:
			p.Line--
		}
		kept = append(kept, p)
	}
	b.props = kept
	b.tick++
	return nil
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// Line returns the 0-based line n, or "" when out of range.
func (b *Buffer) Line(n int) string {
	if n < 0 || n >= len(b.lines) {
		return ""
	}
	return b.lines[n]
}

// Lines returns a copy of all lines.
func (b *Buffer) Lines() []string {
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// AddProperty places prop at the 0-based line and column.
func (b *Buffer) AddProperty(line, col int, prop Prop) error {
	if b.locked {
		return ErrLocked
	}
	if line < 0 || line >= len(b.lines) {
		return fmt.Errorf("%w: %d", ErrLineRange, line)
	}
	b.props = append(b.props, Placement{Line: line, Col: col, Prop: prop})
	b.tick++
	return nil
}

// Properties returns a copy of the property placements in insertion order.
func (b *Buffer) Properties() []Placement {
	out := make([]Placement, len(b.props))
	copy(out, b.props)
	return out
}

// Widths returns the display width of every line, counting wide graphemes
// as two cells.
func (b *Buffer) Widths() []int {
	out := make([]int, len(b.lines))
	for i, l := range b.lines {
		out[i] = uniseg.StringWidth(l)
	}
	return out
}

// ChangeTick returns a counter that grows on every mutation.
func (b *Buffer) ChangeTick() uint64 {
	return b.tick
}

// Lock marks the buffer as owned by a popup; external edits then fail.
func (b *Buffer) Lock() { b.locked = true }

// Unlock releases the popup's ownership.
func (b *Buffer) Unlock() { b.locked = false }

// Locked reports whether a popup owns the buffer.
func (b *Buffer) Locked() bool { return b.locked }
