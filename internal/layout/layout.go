package layout

// Screen is the size of the terminal grid in cells.
type Screen struct {
	Rows int `json:"rows" yaml:"rows"`
	Cols int `json:"cols" yaml:"cols"`
}

// Point is a 0-based screen cell.
type Point struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// Rect is a resolved popup rectangle. Row and Col are 0-based.
type Rect struct {
	Row    int `json:"row" yaml:"row"`
	Col    int `json:"col" yaml:"col"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Bottom returns the first row below the rectangle.
func (r Rect) Bottom() int { return r.Row + r.Height }

// Right returns the first column right of the rectangle.
func (r Rect) Right() int { return r.Col + r.Width }

// Within reports whether the rectangle fits entirely on the screen.
func (r Rect) Within(s Screen) bool {
	return r.Row >= 0 && r.Col >= 0 && r.Bottom() <= s.Rows && r.Right() <= s.Cols
}

// Constraints is everything the user asked for about placement and size.
// Zero sizes mean unconstrained and unset coordinates mean centered.
type Constraints struct {
	Anchor    Anchor
	Line      Coord
	Col       Coord
	MinWidth  int
	MinHeight int
	MaxWidth  int
	MaxHeight int
	Wrap      bool
}

// Metrics describes the content being laid out.
type Metrics struct {
	// Widths holds the display width of every content line, in order.
	Widths []int
	// Tick is the content change tick the metrics were taken at.
	Tick uint64
}

// Result is the outcome of a layout pass.
type Result struct {
	Rect
	// WantLine and WantCol are the 1-based targets after cursor resolution.
	WantLine int
	WantCol  int
	// Tick is the content change tick the layout was computed against.
	Tick uint64
	// Screen is the grid size the layout was computed against.
	Screen Screen
}

// minRightMargin is how many columns a left-anchored popup always keeps
// available to its right.
const minRightMargin = 3

// Resolve computes the popup rectangle. cursor is the live cursor position
// used by cursor-relative coordinates, and prevHeight is the height kept from
// the previous pass (0 on the first pass); a height above one is retained and
// only re-clamped.
func Resolve(c Constraints, m Metrics, s Screen, cursor Point, prevHeight int) Result {
	rows := max(s.Rows, 1)
	cols := max(s.Cols, 1)
	wantLine := c.Line.Resolve(cursor.Row)
	wantCol := c.Col.Resolve(cursor.Col)

	var row, col int
	centerVert, centerHor := false, false
	if c.Anchor == AnchorCenter {
		centerVert, centerHor = true, true
	} else {
		if wantLine <= 0 {
			centerVert = true
		} else if c.Anchor.Top() {
			row = min(wantLine-1, rows-1)
		}

		if wantCol <= 0 {
			centerHor = true
		} else if c.Anchor.Left() {
			col = max(min(wantCol-1, cols-minRightMargin), 0)
		}
	}

	// Centered and right aligned popups may use the full width, left
	// aligned ones what is left of their column.
	maxWidth := cols - col
	if c.MaxWidth > 0 && maxWidth > c.MaxWidth {
		maxWidth = c.MaxWidth
	}
	maxWidth = max(maxWidth, 1)

	width, wrapped := 0, 0
	for _, w := range m.Widths {
		for c.Wrap && w > maxWidth {
			wrapped++
			w -= maxWidth
			width = maxWidth
		}
		width = max(width, w)
	}

	if c.MinWidth > 0 && width < c.MinWidth {
		width = c.MinWidth
	}
	width = max(min(width, maxWidth), 1)

	if centerHor {
		col = (cols - width) / 2
	} else if c.Anchor.Right() {
		// Shift left so the right edge lands on the wanted column. Never
		// truncate, that would change the height.
		edge := min(wantCol, cols)
		if width < edge {
			col = edge - width
		}
	}

	height := prevHeight
	if height <= 1 {
		height = len(m.Widths) + wrapped
	}
	if c.MinHeight > 0 && height < c.MinHeight {
		height = c.MinHeight
	}
	if c.MaxHeight > 0 && height > c.MaxHeight {
		height = c.MaxHeight
	}
	height = max(min(height, rows-row), 1)

	if centerVert {
		row = (rows - height) / 2
	} else if c.Anchor.Bottom() {
		edge := min(wantLine, rows)
		if height <= edge {
			// Bottom edge lands on the wanted line.
			row = edge - height
		} else {
			// Not enough room above, place it below instead.
			row = min(wantLine+1, rows-1)
			height = max(min(height, rows-row), 1)
		}
	}

	return Result{
		Rect:     Rect{Row: row, Col: col, Width: width, Height: height},
		WantLine: wantLine,
		WantCol:  wantCol,
		Tick:     m.Tick,
		Screen:   Screen{Rows: rows, Cols: cols},
	}
}
