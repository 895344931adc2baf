// Package codec decodes all levels from a program image and patches edited
// levels back into it.
package codec

import (
	"errors"
	"fmt"

	"github.com/retroenv/bblevel/internal/bits"
	"github.com/retroenv/bblevel/internal/currents"
	"github.com/retroenv/bblevel/internal/glyph"
	"github.com/retroenv/bblevel/internal/layout"
	"github.com/retroenv/bblevel/internal/level"
	"github.com/retroenv/bblevel/internal/memory"
	"github.com/retroenv/bblevel/internal/monsters"
	"github.com/retroenv/bblevel/internal/tiles"
)

var (
	// ErrTooManySidebarLevels is returned when more levels have own sidebar glyphs than the segment can hold.
	ErrTooManySidebarLevels = errors.New("too many levels with sidebar glyphs")
	// ErrInvalidColor is returned for a background color that is not a 4 bit value.
	ErrInvalidColor = errors.New("invalid background color")
)

const maxColor = 0x0F

// Codec converts between the program image and the level list.
type Codec struct {
	layout layout.Layout
}

// New returns a codec for the given layout.
func New(l layout.Layout) (*Codec, error) {
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("validating layout: %w", err)
	}
	return &Codec{layout: l}, nil
}

// Layout returns the layout used by the codec.
func (c *Codec) Layout() layout.Layout {
	return c.layout
}

// perLevel contains the bytes of the fixed size segments.
type perLevel struct {
	colors []byte
	flags  []byte
	holes  []byte
}

func (c *Codec) readPerLevel(img memory.Reader) (perLevel, error) {
	var p perLevel
	var err error
	if p.colors, err = img.Read(c.layout.Colors, layout.Levels); err != nil {
		return p, fmt.Errorf("reading %s: %w", layout.ColorsSegment, err)
	}
	if p.flags, err = img.Read(c.layout.Flags, layout.Levels); err != nil {
		return p, fmt.Errorf("reading %s: %w", layout.FlagsSegment, err)
	}
	if p.holes, err = img.Read(c.layout.Holes, layout.Levels); err != nil {
		return p, fmt.Errorf("reading %s: %w", layout.HolesSegment, err)
	}
	return p, nil
}

// Decode decodes all levels of the image.
func (c *Codec) Decode(img memory.Reader) ([]level.Level, error) {
	p, err := c.readPerLevel(img)
	if err != nil {
		return nil, err
	}

	platformChars, err := glyph.Read(img, c.layout.PlatformChars, layout.Levels)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", layout.PlatformCharsSegment, err)
	}

	symmetric := make([]bool, layout.Levels)
	for i, flags := range p.flags {
		symmetric[i] = tiles.IsSymmetric(flags)
	}
	offsets := tiles.NewOffsets(symmetric)

	records, _, err := currents.DecodeAll(img, c.layout.Currents)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", layout.CurrentsSegment, err)
	}

	monsterLists, _, err := monsters.DecodeAll(img, c.layout.Monsters)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", layout.MonstersSegment, err)
	}

	sidebarAddress := c.layout.SidebarChars
	levels := make([]level.Level, layout.Levels)

	for i := range levels {
		l := &levels[i]
		l.Index = i
		l.BgColorLight = bits.HighNibble(p.colors[i])
		l.BgColorDark = bits.LowNibble(p.colors[i])
		l.PlatformChar = platformChars[i]
		l.Currents = records[i]
		l.Monsters = monsterLists[i]

		if tiles.HasSidebar(p.flags[i]) {
			chars, err := glyph.Read(img, sidebarAddress, layout.SidebarGlyphs)
			if err != nil {
				return nil, fmt.Errorf("reading %s of level %d: %w", layout.SidebarCharsSegment, i, err)
			}
			var sidebar [layout.SidebarGlyphs]glyph.Glyph
			copy(sidebar[:], chars)
			l.SidebarChars = &sidebar
			sidebarAddress += layout.SidebarBytes
		}

		rows, err := tiles.Read(img, c.layout.Tiles+offsets[i], symmetric[i])
		if err != nil {
			return nil, fmt.Errorf("decoding %s of level %d: %w", layout.TilesSegment, i, err)
		}
		l.Tiles = rows.Grid(tiles.DecodeHoles(p.holes[i]))
		l.LineDefaults = currents.LineDefaults(&rows, p.holes[i])
	}

	return levels, nil
}

// encoded contains all data of a level list in image representation.
type encoded struct {
	perLevel
	platformChars []glyph.Glyph
	sidebarChars  []glyph.Glyph
	tiles         []byte
	monsters      []byte
	currents      []byte
}

// encode converts the levels and checks all capacity limits. The original
// per level bytes provide the bits that are not part of the level model.
func (c *Codec) encode(original perLevel, levels []level.Level) (*encoded, error) {
	if err := level.CheckList(levels); err != nil {
		return nil, err
	}

	symmetric := make([]bool, len(levels))
	for i := range levels {
		if err := tiles.CheckWalls(&levels[i].Tiles); err != nil {
			return nil, fmt.Errorf("encoding level %d: %w", i, err)
		}
		symmetric[i] = levels[i].IsSymmetric()
	}
	if err := tiles.CheckCapacity(symmetric, c.layout.MaxAsymmetric); err != nil {
		return nil, err
	}
	offsets := tiles.NewOffsets(symmetric)

	e := &encoded{
		perLevel: perLevel{
			colors: make([]byte, layout.Levels),
			flags:  make([]byte, layout.Levels),
			holes:  make([]byte, layout.Levels),
		},
		platformChars: make([]glyph.Glyph, 0, layout.Levels),
		tiles:         make([]byte, offsets.Total()),
	}

	for i := range levels {
		l := &levels[i]
		if l.BgColorLight > maxColor || l.BgColorDark > maxColor {
			return nil, fmt.Errorf("%w: level %d colors %d/%d", ErrInvalidColor, i, l.BgColorLight, l.BgColorDark)
		}
		e.colors[i] = bits.Nibbles(l.BgColorLight, l.BgColorDark)
		e.flags[i] = tiles.EncodeFlags(original.flags[i], symmetric[i], l.SidebarChars != nil)
		e.platformChars = append(e.platformChars, l.PlatformChar)
		if l.SidebarChars != nil {
			e.sidebarChars = append(e.sidebarChars, l.SidebarChars[:]...)
		}

		holes, err := tiles.BorderHoles(&l.Tiles)
		if err != nil {
			return nil, fmt.Errorf("encoding level %d: %w", i, err)
		}
		rows := tiles.Encode(&l.Tiles)
		e.holes[i] = currents.StoreLineDefaults(&rows, tiles.EncodeHoles(original.holes[i], holes), l.LineDefaults)
		copy(e.tiles[offsets[i]:], rows.Stored(symmetric[i]))
	}

	if sidebarLevels := len(e.sidebarChars) / layout.SidebarGlyphs; sidebarLevels > c.layout.MaxSidebarLevels {
		return nil, fmt.Errorf("%w: %d levels, maximum is %d", ErrTooManySidebarLevels, sidebarLevels, c.layout.MaxSidebarLevels)
	}

	var err error
	if e.monsters, err = monsters.EncodeAll(levels, c.layout.MaxMonsters); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", layout.MonstersSegment, err)
	}
	if e.currents, err = currents.Encode(levels, c.layout.MaxCurrentBytes); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", layout.CurrentsSegment, err)
	}
	return e, nil
}

// Patch returns a copy of the image with the given levels written into it.
// Bytes that do not belong to the level data are copied unchanged. Neither the
// image nor the levels are modified.
func (c *Codec) Patch(img *memory.Image, levels []level.Level) ([]byte, error) {
	original, err := c.readPerLevel(img)
	if err != nil {
		return nil, err
	}
	e, err := c.encode(original, levels)
	if err != nil {
		return nil, err
	}

	p := img.Patch()
	writes := []struct {
		segment string
		address int
		data    []byte
	}{
		{layout.ColorsSegment, c.layout.Colors, e.colors},
		{layout.FlagsSegment, c.layout.Flags, e.flags},
		{layout.HolesSegment, c.layout.Holes, e.holes},
		{layout.TilesSegment, c.layout.Tiles, e.tiles},
		{layout.MonstersSegment, c.layout.Monsters, e.monsters},
		{layout.CurrentsSegment, c.layout.Currents, e.currents},
	}
	for _, w := range writes {
		if err := p.Write(w.address, w.data); err != nil {
			return nil, fmt.Errorf("writing %s: %w", w.segment, err)
		}
	}

	if err := glyph.Write(p, c.layout.PlatformChars, e.platformChars...); err != nil {
		return nil, fmt.Errorf("writing %s: %w", layout.PlatformCharsSegment, err)
	}
	if err := glyph.Write(p, c.layout.SidebarChars, e.sidebarChars...); err != nil {
		return nil, fmt.Errorf("writing %s: %w", layout.SidebarCharsSegment, err)
	}

	return p.Bytes(), nil
}

// Segments returns the segment table that the given levels occupy when
// written to an image.
func (c *Codec) Segments(img *memory.Image, levels []level.Level) ([]layout.Segment, error) {
	original, err := c.readPerLevel(img)
	if err != nil {
		return nil, err
	}
	e, err := c.encode(original, levels)
	if err != nil {
		return nil, err
	}
	return c.layout.Segments(layout.Extents{
		SidebarLevels: len(e.sidebarChars) / layout.SidebarGlyphs,
		TileBytes:     len(e.tiles),
		MonsterBytes:  len(e.monsters),
		CurrentBytes:  len(e.currents),
	}), nil
}
