package currents

import (
	"github.com/retroenv/bblevel/internal/bits"
	"github.com/retroenv/bblevel/internal/layout"
	"github.com/retroenv/bblevel/internal/tiles"
)

// bit positions of the 2 bit current codes.
const (
	rowCurrentBit    = 6 // in the rightmost byte of a tile row
	topCurrentBit    = 4 // in the holes byte
	bottomCurrentBit = 6 // in the holes byte
)

// LineDefaults returns the current direction of every tile row. The border
// rows are stored in the holes byte, the interior rows use the bits of the
// rightmost wall columns of the tile rows.
func LineDefaults(rows *tiles.Rows, holes byte) [layout.Rows]uint8 {
	var defaults [layout.Rows]uint8
	defaults[0] = bits.Pair(holes, topCurrentBit)
	for y, row := range rows {
		defaults[y+1] = bits.Pair(row[layout.AsymmetricRowBytes-1], rowCurrentBit)
	}
	defaults[layout.Rows-1] = bits.Pair(holes, bottomCurrentBit)
	return defaults
}

// StoreLineDefaults stores the row current directions in the tile rows and
// returns the updated holes byte.
func StoreLineDefaults(rows *tiles.Rows, holes byte, defaults [layout.Rows]uint8) byte {
	for y := range rows {
		last := &rows[y][layout.AsymmetricRowBytes-1]
		*last = bits.SetPair(*last, rowCurrentBit, defaults[y+1])
	}
	holes = bits.SetPair(holes, topCurrentBit, defaults[0])
	return bits.SetPair(holes, bottomCurrentBit, defaults[layout.Rows-1])
}
