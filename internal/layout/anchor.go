package layout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Anchor is the point of the popup rectangle that the wanted line and column
// refer to.
type Anchor int

const (
	AnchorTopLeft Anchor = iota
	AnchorTopRight
	AnchorBotLeft
	AnchorBotRight
	AnchorCenter
)

// anchorNames holds the option spelling for each anchor.
var anchorNames = map[Anchor]string{
	AnchorTopLeft:  "topleft",
	AnchorTopRight: "topright",
	AnchorBotLeft:  "botleft",
	AnchorBotRight: "botright",
	AnchorCenter:   "center",
}

// ErrUnknownAnchor is returned by ParseAnchor for names it does not know.
var ErrUnknownAnchor = errors.New("unknown anchor")

// ParseAnchor maps an option name such as "botright" to its Anchor.
func ParseAnchor(name string) (Anchor, error) {
	for a, n := range anchorNames {
		if n == name {
			return a, nil
		}
	}
	return AnchorTopLeft, fmt.Errorf("%w: %q", ErrUnknownAnchor, name)
}

func (a Anchor) String() string {
	if n, ok := anchorNames[a]; ok {
		return n
	}
	return "anchor(" + strconv.Itoa(int(a)) + ")"
}

// MarshalText implements encoding.TextMarshaler.
func (a Anchor) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Anchor) UnmarshalText(text []byte) error {
	v, err := ParseAnchor(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Top reports whether the anchor sits on the top edge.
func (a Anchor) Top() bool {
	return a == AnchorTopLeft || a == AnchorTopRight
}

// Bottom reports whether the anchor sits on the bottom edge.
func (a Anchor) Bottom() bool {
	return a == AnchorBotLeft || a == AnchorBotRight
}

// Left reports whether the anchor sits on the left edge.
func (a Anchor) Left() bool {
	return a == AnchorTopLeft || a == AnchorBotLeft
}

// Right reports whether the anchor sits on the right edge.
func (a Anchor) Right() bool {
	return a == AnchorTopRight || a == AnchorBotRight
}

// ErrInvalidExpression is returned when the offset in a "cursor+N" value
// cannot be parsed.
var ErrInvalidExpression = errors.New("invalid expression")

// ErrInvalidCoord is returned for line/col text that is neither a number nor
// a cursor-relative form.
var ErrInvalidCoord = errors.New("invalid coordinate")

const cursorMarker = "cursor"

// Coord is a wanted line or column. The zero value is unset, which centers
// the popup on that axis.
type Coord struct {
	// Abs is the 1-based screen line or column when Cursor is false.
	Abs int
	// Cursor marks the value as relative to the live cursor position.
	Cursor bool
	// Offset is added to the cursor line or column.
	Offset int
}

// At returns an absolute coordinate.
func At(n int) Coord {
	return Coord{Abs: n}
}

// AtCursor returns a coordinate relative to the cursor.
func AtCursor(offset int) Coord {
	return Coord{Cursor: true, Offset: offset}
}

// IsSet reports whether the coordinate names a position.
func (c Coord) IsSet() bool {
	return c.Cursor || c.Abs > 0
}

// Resolve turns the coordinate into a 1-based screen position. cursor is the
// 0-based cursor row or column. Cursor-relative results are clamped to 1.
func (c Coord) Resolve(cursor int) int {
	if !c.Cursor {
		return c.Abs
	}
	return max(cursor+1+c.Offset, 1)
}

func (c Coord) String() string {
	if !c.Cursor {
		return strconv.Itoa(c.Abs)
	}
	switch {
	case c.Offset > 0:
		return cursorMarker + "+" + strconv.Itoa(c.Offset)
	case c.Offset < 0:
		return cursorMarker + strconv.Itoa(c.Offset)
	default:
		return cursorMarker
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Coord) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Coord) UnmarshalText(text []byte) error {
	v, err := ParseCoord(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseCoord parses "12", "cursor", "cursor+3", "cursor-1" or "cursor 2".
// Text after the signed offset must be blank.
func ParseCoord(s string) (Coord, error) {
	rest, ok := strings.CutPrefix(s, cursorMarker)
	if !ok {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return Coord{}, fmt.Errorf("%w: %q", ErrInvalidCoord, s)
		}
		return Coord{Abs: n}, nil
	}

	rest = strings.TrimSpace(rest)
	if rest == "" {
		return AtCursor(0), nil
	}

	end := 0
	if rest[0] == '+' || rest[0] == '-' {
		end = 1
	}
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(rest[:end])
	if err != nil || strings.TrimSpace(rest[end:]) != "" {
		return Coord{}, fmt.Errorf("%w: %q", ErrInvalidExpression, s)
	}
	return AtCursor(n), nil
}
