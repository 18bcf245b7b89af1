package content

import (
	"fmt"
	"strings"
)

// Prop is an inline property annotation on a content line.
type Prop struct {
	// Col is the 1-based start column.
	Col     int    `json:"col" yaml:"col"`
	Length  int    `json:"length,omitempty" yaml:"length,omitempty"`
	EndLine int    `json:"end_lnum,omitempty" yaml:"end_lnum,omitempty"`
	EndCol  int    `json:"end_col,omitempty" yaml:"end_col,omitempty"`
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
	ID      int    `json:"id,omitempty" yaml:"id,omitempty"`
}

// Record is one structured content line.
type Record struct {
	Text  string `json:"text" yaml:"text"`
	Props []Prop `json:"props,omitempty" yaml:"props,omitempty"`
}

// Kind tells which shape a payload was given in.
type Kind int

const (
	KindNone Kind = iota
	KindText
	KindLines
	KindRecords
)

// Payload is the content a popup is created from.
type Payload struct {
	kind    Kind
	text    string
	lines   []string
	records []Record
}

// Text returns a single line payload.
func Text(s string) Payload {
	return Payload{kind: KindText, text: s}
}

// Lines returns a payload of plain lines.
func Lines(lines ...string) Payload {
	return Payload{kind: KindLines, lines: lines}
}

// Records returns a payload of structured lines.
func Records(records ...Record) Payload {
	return Payload{kind: KindRecords, records: records}
}

// Kind returns the payload shape.
func (p Payload) Kind() Kind {
	return p.kind
}

// Validate reports ErrInvalidContent for empty payloads and properties that
// do not name a column.
func (p Payload) Validate() error {
	switch p.kind {
	case KindText:
		if p.text == "" {
			return fmt.Errorf("%w: empty string", ErrInvalidContent)
		}
	case KindLines:
		if len(p.lines) == 0 {
			return fmt.Errorf("%w: empty list", ErrInvalidContent)
		}
	case KindRecords:
		if len(p.records) == 0 {
			return fmt.Errorf("%w: empty list", ErrInvalidContent)
		}
		for i, r := range p.records {
			for _, prop := range r.Props {
				if prop.Col < 1 {
					return fmt.Errorf("%w: line %d: property column %d", ErrInvalidContent, i+1, prop.Col)
				}
			}
		}
	default:
		return fmt.Errorf("%w: no content", ErrInvalidContent)
	}
	return nil
}

// texts returns the payload's entries in order, one per line or record.
func (p Payload) texts() []string {
	switch p.kind {
	case KindText:
		return []string{p.text}
	case KindLines:
		return p.lines
	case KindRecords:
		out := make([]string, len(p.records))
		for i, r := range p.records {
			out[i] = r.Text
		}
		return out
	}
	return nil
}

// Target is what Load writes into.
type Target interface {
	LineStore
	PropertySink
}

// Load validates p and writes it into dst: lines first, in order, then the
// property placements. An entry containing newlines becomes one buffer line
// per segment, and a property lands on the segment its column falls in. The
// implicit empty line of a fresh buffer is removed afterwards.
func Load(dst Target, p Payload) error {
	if err := p.Validate(); err != nil {
		return err
	}

	var n int
	first := make([]int, 0, len(p.texts()))
	for _, text := range p.texts() {
		first = append(first, n)
		for _, seg := range strings.Split(text, "\n") {
			if err := dst.AppendLine(n-1, seg); err != nil {
				return err
			}
			n++
		}
	}

	for i, r := range p.records {
		for _, prop := range r.Props {
			line, col := segmentOf(r.Text, prop.Col-1)
			if err := dst.AddProperty(first[i]+line, col, prop); err != nil {
				return err
			}
		}
	}

	return dst.DeleteLine(dst.LineCount() - 1)
}

// segmentOf maps a 0-based column of text to the newline separated segment
// holding it and the column within that segment. Columns past the end stay
// on the last segment.
func segmentOf(text string, col int) (line, segCol int) {
	segs := strings.Split(text, "\n")
	for i, seg := range segs {
		if col <= len(seg) || i == len(segs)-1 {
			return i, col
		}
		col -= len(seg) + 1
	}
	return 0, col
}

// Replace clears b and loads p into it, keeping the buffer's change tick
// increasing. It works on locked buffers because the popup owning the buffer
// is the caller.
func (b *Buffer) Replace(p Payload) error {
	if err := p.Validate(); err != nil {
		return err
	}
	locked := b.locked
	b.locked = false
	defer func() { b.locked = locked }()

	b.lines = []string{""}
	b.props = nil
	b.tick++
	return Load(b, p)
}
