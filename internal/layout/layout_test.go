package layout

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var screen80x24 = Screen{Rows: 24, Cols: 80}

func widths(ws ...int) Metrics {
	return Metrics{Widths: ws}
}

func TestResolve_TopLeftSingleLine(t *testing.T) {
	c := Constraints{Anchor: AnchorTopLeft, Line: At(1), Col: At(1), Wrap: true}
	r := Resolve(c, widths(5), screen80x24, Point{}, 0)

	assert.Equal(t, Rect{Row: 0, Col: 0, Width: 5, Height: 1}, r.Rect)
	assert.Equal(t, 1, r.WantLine)
	assert.Equal(t, 1, r.WantCol)
}

func TestResolve_MinWidthFloor(t *testing.T) {
	c := Constraints{Anchor: AnchorTopLeft, Line: At(1), Col: At(1), MinWidth: 20}
	r := Resolve(c, widths(5), screen80x24, Point{}, 0)

	assert.Equal(t, 20, r.Width)
	assert.Equal(t, 1, r.Height)
}

func TestResolve_Center(t *testing.T) {
	c := Constraints{Anchor: AnchorCenter, Line: At(3), Col: At(7)}
	r := Resolve(c, widths(10, 4, 7), screen80x24, Point{}, 0)

	assert.Equal(t, 10, r.Width)
	assert.Equal(t, 3, r.Height)
	assert.Equal(t, (80-10)/2, r.Col)
	assert.Equal(t, (24-3)/2, r.Row)
}

func TestResolve_UnsetAxisCenters(t *testing.T) {
	c := Constraints{Anchor: AnchorTopLeft, Line: At(5)}
	r := Resolve(c, widths(11), screen80x24, Point{}, 0)

	assert.Equal(t, 4, r.Row)
	assert.Equal(t, (80-11)/2, r.Col)
}

func TestResolve_LeftAnchorKeepsRightMargin(t *testing.T) {
	c := Constraints{Anchor: AnchorTopLeft, Line: At(1), Col: At(200)}
	r := Resolve(c, widths(10), screen80x24, Point{}, 0)

	assert.Equal(t, 77, r.Col)
	assert.Equal(t, 3, r.Width)
}

func TestResolve_TopRowClamped(t *testing.T) {
	c := Constraints{Anchor: AnchorTopLeft, Line: At(100), Col: At(1)}
	r := Resolve(c, widths(4, 4), screen80x24, Point{}, 0)

	assert.Equal(t, 23, r.Row)
	assert.Equal(t, 1, r.Height)
}

func TestResolve_RightAnchor(t *testing.T) {
	c := Constraints{Anchor: AnchorTopRight, Line: At(2), Col: At(40)}
	r := Resolve(c, widths(10), screen80x24, Point{}, 0)

	assert.Equal(t, 30, r.Col)
	assert.Equal(t, 40, r.Right())
}

func TestResolve_RightAnchorWiderThanWanted(t *testing.T) {
	c := Constraints{Anchor: AnchorTopRight, Line: At(2), Col: At(4)}
	r := Resolve(c, widths(10), screen80x24, Point{}, 0)

	assert.Equal(t, 0, r.Col)
	assert.Equal(t, 10, r.Width)
}

func TestResolve_BottomAnchor(t *testing.T) {
	c := Constraints{Anchor: AnchorBotLeft, Line: At(10), Col: At(5)}
	r := Resolve(c, widths(3, 3, 3), screen80x24, Point{}, 0)

	assert.Equal(t, 7, r.Row)
	assert.Equal(t, 10, r.Bottom())
	assert.Equal(t, 4, r.Col)
}

func TestResolve_BottomRightFallsBackBelow(t *testing.T) {
	c := Constraints{Anchor: AnchorBotRight, Line: At(2), Col: At(30)}
	r := Resolve(c, widths(5, 5, 5, 5), screen80x24, Point{}, 0)

	assert.Equal(t, 3, r.Row)
	assert.Equal(t, 4, r.Height)
	assert.GreaterOrEqual(t, r.Row, 0)
}

func TestResolve_BottomFallbackClampsHeight(t *testing.T) {
	lines := make([]int, 30)
	for i := range lines {
		lines[i] = 2
	}
	c := Constraints{Anchor: AnchorBotLeft, Line: At(20), Col: At(1)}
	r := Resolve(c, Metrics{Widths: lines}, screen80x24, Point{}, 0)

	assert.True(t, r.Within(screen80x24), "rect %+v", r.Rect)
	assert.Equal(t, 21, r.Row)
	assert.Equal(t, 3, r.Height)
}

func TestResolve_WrapAddsRows(t *testing.T) {
	c := Constraints{Anchor: AnchorTopLeft, Line: At(1), Col: At(1), MaxWidth: 10, Wrap: true}
	r := Resolve(c, widths(25, 4), screen80x24, Point{}, 0)

	assert.Equal(t, 10, r.Width)
	// 25 columns wrap into 3 rows, plus the second line.
	assert.Equal(t, 4, r.Height)
}

func TestResolve_NoWrapTruncatesWidth(t *testing.T) {
	c := Constraints{Anchor: AnchorTopLeft, Line: At(1), Col: At(1), MaxWidth: 10}
	r := Resolve(c, widths(25, 4), screen80x24, Point{}, 0)

	assert.Equal(t, 10, r.Width)
	assert.Equal(t, 2, r.Height)
}

func TestResolve_HeightBounds(t *testing.T) {
	c := Constraints{Anchor: AnchorTopLeft, Line: At(1), Col: At(1), MinHeight: 5}
	assert.Equal(t, 5, Resolve(c, widths(1), screen80x24, Point{}, 0).Height)

	c = Constraints{Anchor: AnchorTopLeft, Line: At(1), Col: At(1), MaxHeight: 2}
	assert.Equal(t, 2, Resolve(c, widths(1, 1, 1, 1), screen80x24, Point{}, 0).Height)
}

func TestResolve_KeepsPreviousHeight(t *testing.T) {
	c := Constraints{Anchor: AnchorTopLeft, Line: At(1), Col: At(1), MaxHeight: 4}
	r := Resolve(c, widths(3), screen80x24, Point{}, 6)

	// A previously computed height survives, re-clamped by maxheight.
	assert.Equal(t, 4, r.Height)

	r = Resolve(c, widths(3, 3), screen80x24, Point{}, 1)
	assert.Equal(t, 2, r.Height)
}

func TestResolve_CursorRelative(t *testing.T) {
	c := Constraints{Anchor: AnchorTopLeft, Line: AtCursor(1), Col: AtCursor(-2)}
	r := Resolve(c, widths(4), screen80x24, Point{Row: 5, Col: 10}, 0)

	assert.Equal(t, 7, r.WantLine)
	assert.Equal(t, 9, r.WantCol)
	assert.Equal(t, 6, r.Row)
	assert.Equal(t, 8, r.Col)

	// Resolution follows the live cursor.
	r = Resolve(c, widths(4), screen80x24, Point{Row: 0, Col: 0}, 0)
	assert.Equal(t, 2, r.WantLine)
	assert.Equal(t, 1, r.WantCol)
}

func TestResolve_TinyScreen(t *testing.T) {
	c := Constraints{Anchor: AnchorTopLeft, Line: At(1), Col: At(1)}
	r := Resolve(c, widths(10, 10), Screen{Rows: 0, Cols: 0}, Point{}, 0)

	assert.Equal(t, Rect{Width: 1, Height: 1}, r.Rect)
	assert.Equal(t, Screen{Rows: 1, Cols: 1}, r.Screen)
}

func TestResolve_EmptyContentFloorsSize(t *testing.T) {
	r := Resolve(Constraints{Anchor: AnchorCenter}, Metrics{}, screen80x24, Point{}, 0)
	assert.Equal(t, 1, r.Width)
	assert.Equal(t, 1, r.Height)
}

func TestResolve_RecordsTick(t *testing.T) {
	r := Resolve(Constraints{}, Metrics{Widths: []int{1}, Tick: 42}, screen80x24, Point{}, 0)
	assert.Equal(t, uint64(42), r.Tick)
}

func TestResolve_AlwaysWithinScreen(t *testing.T) {
	anchors := []Anchor{AnchorTopLeft, AnchorTopRight, AnchorBotLeft, AnchorBotRight, AnchorCenter}
	screens := []Screen{{1, 1}, {2, 3}, {5, 10}, {24, 80}, {50, 200}}
	contents := []Metrics{widths(1), widths(5, 90), widths(300), widths(2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2)}

	for _, s := range screens {
		for _, a := range anchors {
			for _, m := range contents {
				for _, line := range []int{0, 1, 3, s.Rows, s.Rows + 5} {
					for _, col := range []int{0, 1, 4, s.Cols, s.Cols + 9} {
						for _, wrap := range []bool{false, true} {
							c := Constraints{
								Anchor: a, Line: At(line), Col: At(col),
								Wrap: wrap, MinWidth: 4, MinHeight: 2,
							}
							name := fmt.Sprintf("%v/%v/l%d/c%d/w%v/%v", s, a, line, col, wrap, m.Widths)
							r := Resolve(c, m, s, Point{}, 0)
							require.True(t, r.Within(s), "%s: %+v", name, r.Rect)
							require.GreaterOrEqual(t, r.Width, 1, name)
							require.GreaterOrEqual(t, r.Height, 1, name)
						}
					}
				}
			}
		}
	}
}

func TestParseAnchor(t *testing.T) {
	a, err := ParseAnchor("botright")
	require.NoError(t, err)
	assert.Equal(t, AnchorBotRight, a)
	assert.Equal(t, "botright", a.String())

	_, err = ParseAnchor("middle")
	assert.ErrorIs(t, err, ErrUnknownAnchor)
}

func TestParseCoord(t *testing.T) {
	tests := []struct {
		in   string
		want Coord
	}{
		{"12", At(12)},
		{"cursor", AtCursor(0)},
		{"cursor+3", AtCursor(3)},
		{"cursor-1", AtCursor(-1)},
		{"cursor 2", AtCursor(2)},
		{"cursor+4 ", AtCursor(4)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCoord(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseCoord("cursor+x")
	assert.ErrorIs(t, err, ErrInvalidExpression)
	_, err = ParseCoord("cursor+3abc")
	assert.ErrorIs(t, err, ErrInvalidExpression)
	_, err = ParseCoord("top")
	assert.ErrorIs(t, err, ErrInvalidCoord)
}

func TestCoord_StringRoundTrip(t *testing.T) {
	for _, c := range []Coord{At(7), AtCursor(0), AtCursor(5), AtCursor(-3)} {
		got, err := ParseCoord(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}

func TestCoord_ResolveClampsCursorForms(t *testing.T) {
	assert.Equal(t, 1, AtCursor(-10).Resolve(2))
	assert.Equal(t, 0, At(0).Resolve(9))
	assert.False(t, At(0).IsSet())
	assert.True(t, AtCursor(-10).IsSet())
}
