// SPDX-License-Identifier: AGPL-3.0-only

package dashboard

// GridColumns is the width of the Grafana layout grid.
const GridColumns = 24

// GridPos is the rectangle a panel occupies in the dashboard grid.
// Overlapping panels are not detected; layout is up to the caller.
type GridPos struct {
	X, Y int
	W, H int
}

// NewGridPos returns the position at column x, row y with width w and height h.
func NewGridPos(x, y, w, h int) GridPos {
	return GridPos{X: x, Y: y, W: w, H: h}
}

// Below returns a position of the given size starting at the row right after p.
func (p GridPos) Below(w, h int) GridPos {
	return GridPos{X: 0, Y: p.Y + p.H, W: w, H: h}
}

// RightOf returns a position of the given size starting at the column right after p.
func (p GridPos) RightOf(w, h int) GridPos {
	return GridPos{X: p.X + p.W, Y: p.Y, W: w, H: h}
}

func (p GridPos) validate() error {
	if p.X < 0 || p.X >= GridColumns {
		return invalid("gridPos.x", "%d is outside [0, %d)", p.X, GridColumns)
	}
	if p.Y < 0 {
		return invalid("gridPos.y", "%d is negative", p.Y)
	}
	if p.W <= 0 || p.W > GridColumns {
		return invalid("gridPos.w", "%d is outside (0, %d]", p.W, GridColumns)
	}
	if p.H <= 0 {
		return invalid("gridPos.h", "%d must be positive", p.H)
	}
	if p.X+p.W > GridColumns {
		return invalid("gridPos.w", "x+w = %d exceeds the %d grid columns", p.X+p.W, GridColumns)
	}
	return nil
}

// Row lays out panels left to right on a single grid row, wrapping to the
// next row when the grid is full.
type Row struct {
	next GridPos
}

// NewRow starts a layout at row y.
func NewRow(y int) *Row {
	return &Row{next: GridPos{Y: y}}
}

// Next returns the position for a panel of the given size and advances the cursor.
func (r *Row) Next(w, h int) GridPos {
	if r.next.X+w > GridColumns {
		r.next = GridPos{X: 0, Y: r.next.Y + r.next.H}
	}
	pos := GridPos{X: r.next.X, Y: r.next.Y, W: w, H: h}
	r.next = GridPos{X: pos.X + w, Y: pos.Y, H: max(r.next.H, h)}
	return pos
}
