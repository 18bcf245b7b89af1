package options

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/popwin/internal/layout"
)

func TestResolve_Defaults(t *testing.T) {
	r, err := Resolve(Options{}, DefaultDefaults())
	require.NoError(t, err)

	assert.Equal(t, layout.AnchorTopLeft, r.Constraints.Anchor)
	assert.False(t, r.Constraints.Line.IsSet())
	assert.False(t, r.Constraints.Col.IsSet())
	assert.True(t, r.Constraints.Wrap)
	assert.Equal(t, DefaultZIndex, r.ZIndex)
	assert.Zero(t, r.Time)
}

func TestResolve_AllKeys(t *testing.T) {
	r, err := Resolve(Options{
		Line:      Coord(layout.At(3)),
		Col:       Coord(layout.AtCursor(2)),
		Pos:       String("botright"),
		MinWidth:  Int(4),
		MinHeight: Int(2),
		MaxWidth:  Int(40),
		MaxHeight: Int(10),
		ZIndex:    Int(200),
		Time:      Duration(3 * time.Second),
		Highlight: String("PopupInfo"),
		Wrap:      Bool(false),
	}, DefaultDefaults())
	require.NoError(t, err)

	c := r.Constraints
	assert.Equal(t, layout.AnchorBotRight, c.Anchor)
	assert.Equal(t, layout.At(3), c.Line)
	assert.Equal(t, layout.AtCursor(2), c.Col)
	assert.Equal(t, 4, c.MinWidth)
	assert.Equal(t, 2, c.MinHeight)
	assert.Equal(t, 40, c.MaxWidth)
	assert.Equal(t, 10, c.MaxHeight)
	assert.False(t, c.Wrap)
	assert.Equal(t, 200, r.ZIndex)
	assert.Equal(t, 3*time.Second, r.Time)
	assert.Equal(t, "PopupInfo", r.Highlight)
}

func TestResolve_ZeroZIndexUsesDefault(t *testing.T) {
	r, err := Resolve(Options{ZIndex: Int(0)}, Defaults{ZIndex: 77})
	require.NoError(t, err)
	assert.Equal(t, 77, r.ZIndex)
}

func TestResolve_NonPositiveTimeDisables(t *testing.T) {
	r, err := Resolve(Options{Time: Duration(-time.Second)}, DefaultDefaults())
	require.NoError(t, err)
	assert.Zero(t, r.Time)
}

func TestResolve_BadKeysDoNotBlockOthers(t *testing.T) {
	r, err := Resolve(Options{
		Pos:      String("middle"),
		MinWidth: Int(-1),
		MaxWidth: Int(30),
		Line:     Coord(layout.At(4)),
	}, DefaultDefaults())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "middle")
	assert.Contains(t, err.Error(), "minwidth")

	assert.Equal(t, layout.AnchorTopLeft, r.Constraints.Anchor)
	assert.Equal(t, 0, r.Constraints.MinWidth)
	assert.Equal(t, 30, r.Constraints.MaxWidth)
	assert.Equal(t, layout.At(4), r.Constraints.Line)
}

func TestResolveAtCursor(t *testing.T) {
	r, err := ResolveAtCursor(Options{}, DefaultDefaults(), layout.Point{Row: 6, Col: 9})
	require.NoError(t, err)

	assert.Equal(t, layout.AnchorBotLeft, r.Constraints.Anchor)
	assert.Equal(t, layout.At(6), r.Constraints.Line)
	assert.Equal(t, layout.At(10), r.Constraints.Col)
}

func TestResolveAtCursor_FirstRowFlipsBelow(t *testing.T) {
	r, err := ResolveAtCursor(Options{}, DefaultDefaults(), layout.Point{Row: 0, Col: 3})
	require.NoError(t, err)

	assert.Equal(t, layout.AnchorTopLeft, r.Constraints.Anchor)
	assert.Equal(t, layout.At(2), r.Constraints.Line)
	assert.Equal(t, layout.At(4), r.Constraints.Col)
}

func TestResolveAtCursor_ExplicitPosOverrides(t *testing.T) {
	r, err := ResolveAtCursor(Options{Pos: String("center")}, DefaultDefaults(), layout.Point{Row: 6, Col: 9})
	require.NoError(t, err)
	assert.Equal(t, layout.AnchorCenter, r.Constraints.Anchor)
}

func TestResolveMove_KeepsBoundsOnZero(t *testing.T) {
	base := layout.Constraints{Anchor: layout.AnchorTopLeft, MinWidth: 10, MaxHeight: 5, Line: layout.At(2)}
	c, err := ResolveMove(base, Options{MinWidth: Int(0), MaxHeight: Int(8), Col: Coord(layout.At(7))})
	require.NoError(t, err)

	assert.Equal(t, 10, c.MinWidth)
	assert.Equal(t, 8, c.MaxHeight)
	assert.Equal(t, layout.At(2), c.Line)
	assert.Equal(t, layout.At(7), c.Col)
}

func TestResolveMove_UnsetLineKeepsPrevious(t *testing.T) {
	base := layout.Constraints{Line: layout.At(9)}
	c, err := ResolveMove(base, Options{Line: Coord(layout.At(0))})
	require.NoError(t, err)
	assert.Equal(t, layout.At(9), c.Line)
}

func TestDecode(t *testing.T) {
	o, err := Decode(map[string]any{
		"line":      "cursor+1",
		"col":       float64(12),
		"pos":       "topright",
		"minwidth":  3,
		"maxheight": int64(7),
		"zindex":    uint64(90),
		"time":      "250ms",
		"highlight": "Error",
		"tab":       -1,
		"wrap":      false,
		"unknown":   "ignored",
	})
	require.NoError(t, err)

	assert.Equal(t, layout.AtCursor(1), *o.Line)
	assert.Equal(t, layout.At(12), *o.Col)
	assert.Equal(t, "topright", *o.Pos)
	assert.Equal(t, 3, *o.MinWidth)
	assert.Equal(t, 7, *o.MaxHeight)
	assert.Equal(t, 90, *o.ZIndex)
	assert.Equal(t, 250*time.Millisecond, *o.Time)
	assert.Equal(t, "Error", *o.Highlight)
	assert.Equal(t, -1, *o.Tab)
	assert.False(t, *o.Wrap)
	assert.Nil(t, o.MinHeight)
}

func TestDecode_TimeMilliseconds(t *testing.T) {
	o, err := Decode(map[string]any{"time": 1500})
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, *o.Time)

	o, err = Decode(map[string]any{"time": "20"})
	require.NoError(t, err)
	assert.Equal(t, 20*time.Millisecond, *o.Time)
}

func TestDecode_BestEffort(t *testing.T) {
	o, err := Decode(map[string]any{
		"line":     "cursor+abc",
		"col":      "left",
		"minwidth": "wide",
		"pos":      12,
		"time":     true,
		"maxwidth": 20,
		"zindex":   1e300,
	})
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrInvalidExpression)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Nil(t, o.Line)
	assert.Nil(t, o.Col)
	assert.Nil(t, o.MinWidth)
	assert.Nil(t, o.Pos)
	assert.Nil(t, o.Time)
	assert.Nil(t, o.ZIndex)
	require.NotNil(t, o.MaxWidth)
	assert.Equal(t, 20, *o.MaxWidth)
}
