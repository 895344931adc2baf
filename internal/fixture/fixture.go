// Package fixture provides generated level lists and images for tests.
package fixture

import (
	"encoding/binary"

	"github.com/retroenv/bblevel/internal/glyph"
	"github.com/retroenv/bblevel/internal/layout"
	"github.com/retroenv/bblevel/internal/level"
	"github.com/retroenv/bblevel/internal/memory"
)

// LoadAddress is the load address of generated images.
const LoadAddress = 0x1000

// Blank returns an image buffer that covers all reserved segments of the
// layout. The content is filled with a repeating pattern so that bytes which
// are not part of the level data are recognizable.
func Blank(l layout.Layout) []byte {
	data := make([]byte, memory.HeaderSize+l.End()-LoadAddress)
	binary.LittleEndian.PutUint16(data, LoadAddress)
	for i := memory.HeaderSize; i < len(data); i++ {
		data[i] = byte(i*31 + i>>8)
	}
	return data
}

// Levels returns a level list that uses every feature of the format: symmetric
// and asymmetric levels, border holes, sidebar glyphs, monsters, copy levels,
// rectangles with symmetry markers and row current directions.
func Levels() []level.Level {
	levels := make([]level.Level, layout.Levels)
	for i := range levels {
		l := &levels[i]
		l.Index = i
		l.BgColorLight = uint8(i % 16)
		l.BgColorDark = uint8(i * 7 % 16)
		l.PlatformChar = Glyph(i)

		var holes level.Holes
		holes[i%4] = i%3 == 0
		holes[(i+1)%4] = i%5 == 0
		l.Tiles.SetBorders(holes)
		l.Tiles.SetWalls()
		for y := 4; y < layout.Rows-1; y += 5 {
			for x := 2 + i%5; x < 12; x++ {
				l.Tiles[y][x] = true
				l.Tiles[y][layout.Columns-1-x] = true
			}
		}
		if i%3 == 1 {
			l.Tiles[6+i%3][5+i%20] = true
		}

		if i%10 == 2 {
			var chars [layout.SidebarGlyphs]glyph.Glyph
			for j := range chars {
				chars[j] = Glyph(i + j + 1)
			}
			l.SidebarChars = &chars
		}

		if !l.IsBoss() {
			for j := 0; j < i%4; j++ {
				l.Monsters = append(l.Monsters, level.Monster{
					Type: uint8((i + j) % 8),
					Spawn: level.Point{
						X: 28 + 8*((i+j)%30),
						Y: 21 + 2*((i*3+j)%100),
					},
					FacingLeft: j%2 == 1,
					OddY:       (i+j)%3 == 0,
					Flags:      uint8(j * i % 0x80),
				})
			}
		}

		switch {
		case i%7 == 3:
			l.Currents = level.Currents{Kind: level.Copy, Source: i - 1}
		case i%11 == 5:
			l.Currents = level.Currents{ZeroHeader: true}
		default:
			l.Currents.Entries = []level.Entry{{
				Rectangle: level.Rectangle{
					Left:      i % 20,
					Top:       1 + i%20,
					Width:     1 + i%6,
					Height:    1 + i%4,
					Direction: uint8(i % 4),
					Padding:   i%5 == 0,
				},
			}}
			if i%2 == 0 {
				l.Currents.Entries = append(l.Currents.Entries, level.Entry{Mirror: true, Marker: byte(i % 6)})
			}
		}

		for y := range l.LineDefaults {
			l.LineDefaults[y] = uint8((i + y) % 4)
		}
	}
	return levels
}

// Glyph returns a glyph with a pattern derived from the seed.
func Glyph(seed int) glyph.Glyph {
	var g glyph.Glyph
	for y := range g {
		for x := range g[y] {
			g[y][x] = uint8((seed + y*3 + x) % 4)
		}
	}
	return g
}
