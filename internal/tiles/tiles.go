// Package tiles implements the tile bitmap codec of the level data.
//
// Every level stores its 23 interior tile rows in one bitmap stream that is
// shared by all levels. A row is 4 bytes with 8 tiles per byte, the most
// significant bit being the leftmost tile. Symmetric levels store only the 2
// bytes of the left half, the right half is the bit and byte mirrored left half.
// The start of a level in the stream is therefore the sum of the sizes of all
// preceding levels, see Offsets.
package tiles

import (
	"errors"
	"fmt"

	"github.com/retroenv/bblevel/internal/bits"
	"github.com/retroenv/bblevel/internal/layout"
	"github.com/retroenv/bblevel/internal/level"
	"github.com/retroenv/bblevel/internal/memory"
)

var (
	// ErrTooManyAsymmetricLevels is returned when the asymmetric levels do not fit into the bitmap stream.
	ErrTooManyAsymmetricLevels = errors.New("too many asymmetric levels")
	// ErrInvalidBorder is returned for border rows that do not consist of complete holes.
	ErrInvalidBorder = errors.New("border row has partially open holes")
	// ErrInvalidWall is returned for an open tile in the wall columns.
	ErrInvalidWall = errors.New("wall tile is not solid")
)

// level flags bits.
const (
	sidebarBit   = 0
	symmetricBit = 7
)

// IsSymmetric returns whether the level flags byte marks the level as symmetric.
func IsSymmetric(flags byte) bool {
	return bits.Bit(flags, symmetricBit)
}

// HasSidebar returns whether the level flags byte marks the level as having its own sidebar glyphs.
func HasSidebar(flags byte) bool {
	return bits.Bit(flags, sidebarBit)
}

// EncodeFlags updates the symmetry and sidebar bits of a level flags byte,
// all other bits are kept.
func EncodeFlags(flags byte, symmetric, sidebar bool) byte {
	flags = bits.Set(flags, symmetricBit, symmetric)
	return bits.Set(flags, sidebarBit, sidebar)
}

// DecodeHoles returns the border hole flags of a holes byte.
func DecodeHoles(b byte) level.Holes {
	var holes level.Holes
	for i := range holes {
		holes[i] = bits.Bit(b, i)
	}
	return holes
}

// EncodeHoles stores the border hole flags in a holes byte, all other bits are kept.
func EncodeHoles(b byte, holes level.Holes) byte {
	for i, open := range holes {
		b = bits.Set(b, i, open)
	}
	return b
}

// Row is a fully expanded tile row.
type Row [layout.AsymmetricRowBytes]byte

// Rows contains the interior rows of a level.
type Rows [layout.InteriorRows]Row

// Size returns the number of bitmap bytes of a level.
func Size(symmetric bool) int {
	if symmetric {
		return layout.SymmetricTileBytes
	}
	return layout.AsymmetricTileBytes
}

// Read reads the rows of a level starting at the given address and expands
// symmetric rows to full width.
func Read(r memory.Reader, address int, symmetric bool) (Rows, error) {
	var rows Rows
	data, err := r.Read(address, Size(symmetric))
	if err != nil {
		return rows, fmt.Errorf("reading tile rows: %w", err)
	}

	if !symmetric {
		for y := range rows {
			copy(rows[y][:], data[y*layout.AsymmetricRowBytes:])
		}
		return rows, nil
	}

	for y := range rows {
		left := data[y*layout.SymmetricRowBytes:]
		rows[y] = Row{left[0], left[1], bits.Mirror(left[1]), bits.Mirror(left[0])}
	}
	return rows, nil
}

// Stored returns the bitmap bytes of the rows. For symmetric levels the left
// half is derived from the right half so that the bits of the rightmost
// columns survive the mirroring.
func (rows *Rows) Stored(symmetric bool) []byte {
	data := make([]byte, 0, Size(symmetric))
	for _, row := range rows {
		if symmetric {
			data = append(data, bits.Mirror(row[3]), bits.Mirror(row[2]))
		} else {
			data = append(data, row[:]...)
		}
	}
	return data
}

// Grid builds the tile grid from the rows and the border holes.
func (rows *Rows) Grid(holes level.Holes) level.Grid {
	var g level.Grid
	for y, row := range rows {
		for i, b := range row {
			tiles := bits.Unpack(b)
			copy(g[y+1][i*8:], tiles[:])
		}
	}
	g.SetBorders(holes)
	g.SetWalls()
	return g
}

// Encode converts the interior rows of the grid. The wall columns are stored
// as solid tiles.
func Encode(g *level.Grid) Rows {
	var rows Rows
	for y := range rows {
		for i := range rows[y] {
			rows[y][i] = bits.Pack(g[y+1][i*8 : i*8+8])
		}
		for x := 0; x < level.WallColumns; x++ {
			rows[y][0] = bits.Set(rows[y][0], x, true)
			rows[y][layout.AsymmetricRowBytes-1] = bits.Set(rows[y][layout.AsymmetricRowBytes-1], 7-x, true)
		}
	}
	return rows
}

// CheckWalls returns an error if a tile of the wall columns is open. Wall
// tiles are always stored as solid, an open one would also change the
// symmetry of the level.
func CheckWalls(g *level.Grid) error {
	if p, open := g.OpenWall(); open {
		return fmt.Errorf("%w: row %d column %d", ErrInvalidWall, p.Y, p.X)
	}
	return nil
}

// BorderHoles returns the border holes of the grid.
func BorderHoles(g *level.Grid) (level.Holes, error) {
	holes, ok := g.Holes()
	if !ok {
		return holes, ErrInvalidBorder
	}
	return holes, nil
}

// Offsets contains the bitmap stream offset of every level, the last entry
// is the total stream size.
type Offsets [layout.Levels + 1]int

// NewOffsets calculates the stream offsets from the symmetry of all levels.
func NewOffsets(symmetric []bool) Offsets {
	var offsets Offsets
	for i := 0; i < layout.Levels; i++ {
		offsets[i+1] = offsets[i] + Size(i < len(symmetric) && symmetric[i])
	}
	return offsets
}

// Total returns the size of the bitmap stream.
func (o *Offsets) Total() int {
	return o[layout.Levels]
}

// CheckCapacity returns an error if more levels are asymmetric than the stream can hold.
func CheckCapacity(symmetric []bool, maxAsymmetric int) error {
	asymmetric := 0
	for _, sym := range symmetric {
		if !sym {
			asymmetric++
		}
	}
	if asymmetric > maxAsymmetric {
		return fmt.Errorf("%w: %d levels are asymmetric, maximum is %d",
			ErrTooManyAsymmetricLevels, asymmetric, maxAsymmetric)
	}
	return nil
}
