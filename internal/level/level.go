// Package level contains the decoded representation of a game level.
package level

import (
	"github.com/retroenv/bblevel/internal/glyph"
	"github.com/retroenv/bblevel/internal/layout"
)

// Level is the decoded data of a single level.
type Level struct {
	Index int

	Tiles        Grid
	BgColorLight uint8
	BgColorDark  uint8
	PlatformChar glyph.Glyph
	SidebarChars *[layout.SidebarGlyphs]glyph.Glyph // nil if the platform char is used for the sidebar

	Monsters     []Monster
	Currents     Currents
	LineDefaults [layout.Rows]uint8 // current direction per tile row
}

// IsBoss returns whether the level is the boss level.
func (l *Level) IsBoss() bool {
	return l.Index == layout.BossLevel
}

// IsSymmetric returns whether the tile grid allows half size storage.
func (l *Level) IsSymmetric() bool {
	return l.Tiles.IsSymmetric()
}

// Point is a position in pixel space.
type Point struct {
	X int
	Y int
}

// Monster is a spawn list entry.
type Monster struct {
	Type       uint8
	Spawn      Point
	FacingLeft bool

	// record bits without a known meaning
	OddY  bool  // lowest bit of the y byte
	Flags uint8 // lower 7 bits of the direction byte
}
