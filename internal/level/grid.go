package level

import "github.com/retroenv/bblevel/internal/layout"

// Grid is the tile map of a level, true marks a solid tile.
type Grid [layout.Rows][layout.Columns]bool

// Hole identifies one of the openings in the top and bottom border rows.
type Hole int

// Border holes in the order of their flag bits.
const (
	TopLeft Hole = iota
	TopRight
	BottomLeft
	BottomRight
)

// HoleWidth is the number of tiles of a border hole.
const HoleWidth = 4

// Holes contains the open state of every border hole.
type Holes [4]bool

// Span returns the row and the first column of the hole.
func (h Hole) Span() (row, column int) {
	switch h {
	case TopLeft:
		return 0, 9
	case TopRight:
		return 0, 19
	case BottomLeft:
		return layout.Rows - 1, 9
	default:
		return layout.Rows - 1, 19
	}
}

// WallColumns is the number of always solid columns at each side of a row.
const WallColumns = 2

// SetBorders fills the top and bottom rows and opens the given holes.
func (g *Grid) SetBorders(holes Holes) {
	for x := 0; x < layout.Columns; x++ {
		g[0][x] = true
		g[layout.Rows-1][x] = true
	}
	for i, open := range holes {
		if !open {
			continue
		}
		row, column := Hole(i).Span()
		for x := column; x < column+HoleWidth; x++ {
			g[row][x] = false
		}
	}
}

// SetWalls makes the outer columns of every row solid.
func (g *Grid) SetWalls() {
	for y := range g {
		for x := 0; x < WallColumns; x++ {
			g[y][x] = true
			g[y][layout.Columns-1-x] = true
		}
	}
}

// OpenWall returns the position of the first wall tile that is not solid.
// The second return value is false if all wall tiles are solid.
func (g *Grid) OpenWall() (Point, bool) {
	for y := range g {
		for x := 0; x < WallColumns; x++ {
			if !g[y][x] {
				return Point{X: x, Y: y}, true
			}
			if !g[y][layout.Columns-1-x] {
				return Point{X: layout.Columns - 1 - x, Y: y}, true
			}
		}
	}
	return Point{}, false
}

// Holes returns the hole state of the border rows. The second return value is
// false if a border row contains anything but fully open or closed holes.
func (g *Grid) Holes() (Holes, bool) {
	var holes Holes
	var expected Grid
	for i := range holes {
		row, column := Hole(i).Span()
		holes[i] = !g[row][column]
	}
	expected.SetBorders(holes)
	return holes, expected[0] == g[0] && expected[layout.Rows-1] == g[layout.Rows-1]
}

// IsSymmetric returns whether every interior row mirrors its left half on the right half.
func (g *Grid) IsSymmetric() bool {
	for y := 1; y < layout.Rows-1; y++ {
		for x := 0; x < layout.Columns/2; x++ {
			if g[y][x] != g[y][layout.Columns-1-x] {
				return false
			}
		}
	}
	return true
}
