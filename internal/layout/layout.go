// Package layout describes where the level data segments are located in the
// program image and how much data they are allowed to hold.
package layout

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrInvalidLayout is returned for a layout with overlapping or empty segments.
var ErrInvalidLayout = errors.New("invalid layout")

// Segment names.
const (
	ColorsSegment        = "colors"
	FlagsSegment         = "flags"
	HolesSegment         = "holes"
	PlatformCharsSegment = "platform chars"
	SidebarCharsSegment  = "sidebar chars"
	TilesSegment         = "tiles"
	MonstersSegment      = "monsters"
	CurrentsSegment      = "currents"
)

// Layout contains the segment start addresses and the capacity limits of the
// variable length segments.
type Layout struct {
	Colors        int `yaml:"colors"`
	Flags         int `yaml:"flags"`
	Holes         int `yaml:"holes"`
	PlatformChars int `yaml:"platform_chars"`
	SidebarChars  int `yaml:"sidebar_chars"`
	Tiles         int `yaml:"tiles"`
	Monsters      int `yaml:"monsters"`
	Currents      int `yaml:"currents"`

	MaxAsymmetric    int `yaml:"max_asymmetric"`
	MaxMonsters      int `yaml:"max_monsters"`
	MaxCurrentBytes  int `yaml:"max_current_bytes"`
	MaxSidebarLevels int `yaml:"max_sidebar_levels"`
}

// Default returns the layout of the supported program image.
func Default() Layout {
	return Layout{
		Colors:        0x1000,
		Flags:         0x1064,
		Holes:         0x10C8,
		PlatformChars: 0x112C,
		SidebarChars:  0x144C,
		Tiles:         0x16CC,
		Monsters:      0x30DA,
		Currents:      0x37F1,

		MaxAsymmetric:    45,
		MaxMonsters:      572,
		MaxCurrentBytes:  1500,
		MaxSidebarLevels: 20,
	}
}

// LoadFile reads a YAML file that overrides fields of the default layout.
func LoadFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("reading layout file '%s': %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML document that overrides fields of the default layout.
func Parse(data []byte) (Layout, error) {
	l := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&l); err != nil && !errors.Is(err, io.EOF) {
		return Layout{}, fmt.Errorf("decoding layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// Segment is a named contiguous region of the image.
type Segment struct {
	Name   string
	Start  int
	Length int
}

// End returns the first address after the segment.
func (s Segment) End() int {
	return s.Start + s.Length
}

// Extents contains the actual sizes of the variable length segments.
type Extents struct {
	SidebarLevels int // number of levels carrying their own sidebar glyphs
	TileBytes     int
	MonsterBytes  int
	CurrentBytes  int
}

// Segments returns the segment table for the given variable segment extents.
func (l Layout) Segments(e Extents) []Segment {
	return []Segment{
		{Name: ColorsSegment, Start: l.Colors, Length: Levels},
		{Name: FlagsSegment, Start: l.Flags, Length: Levels},
		{Name: HolesSegment, Start: l.Holes, Length: Levels},
		{Name: PlatformCharsSegment, Start: l.PlatformChars, Length: Levels * GlyphBytes},
		{Name: SidebarCharsSegment, Start: l.SidebarChars, Length: e.SidebarLevels * SidebarBytes},
		{Name: TilesSegment, Start: l.Tiles, Length: e.TileBytes},
		{Name: MonstersSegment, Start: l.Monsters, Length: e.MonsterBytes},
		{Name: CurrentsSegment, Start: l.Currents, Length: e.CurrentBytes},
	}
}

// Reserved returns the segment table with every variable segment at its
// maximum size allowed by the capacity limits.
func (l Layout) Reserved() []Segment {
	return l.Segments(Extents{
		SidebarLevels: l.MaxSidebarLevels,
		TileBytes:     MaxTileBytes(l.MaxAsymmetric),
		MonsterBytes:  l.MaxMonsters*MonsterRecordBytes + BossLevel,
		CurrentBytes:  l.MaxCurrentBytes,
	})
}

// MaxTileBytes returns the tile bitmap size when the given number of levels is asymmetric.
func MaxTileBytes(asymmetric int) int {
	return asymmetric*AsymmetricTileBytes + (Levels-asymmetric)*SymmetricTileBytes
}

// Validate checks the capacity limits and that the reserved segments do not overlap.
func (l Layout) Validate() error {
	switch {
	case l.MaxAsymmetric < 0 || l.MaxAsymmetric > Levels:
		return fmt.Errorf("%w: max asymmetric levels %d", ErrInvalidLayout, l.MaxAsymmetric)
	case l.MaxMonsters < 0:
		return fmt.Errorf("%w: max monsters %d", ErrInvalidLayout, l.MaxMonsters)
	case l.MaxCurrentBytes < Levels:
		return fmt.Errorf("%w: max current bytes %d is less than one byte per level", ErrInvalidLayout, l.MaxCurrentBytes)
	case l.MaxSidebarLevels < 0 || l.MaxSidebarLevels > Levels:
		return fmt.Errorf("%w: max sidebar levels %d", ErrInvalidLayout, l.MaxSidebarLevels)
	}

	segments := l.Reserved()
	sort.Slice(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})
	for i := 1; i < len(segments); i++ {
		prev, cur := segments[i-1], segments[i]
		if prev.End() > cur.Start {
			return fmt.Errorf("%w: segment %s ($%04X-$%04X) overlaps %s ($%04X)",
				ErrInvalidLayout, prev.Name, prev.Start, prev.End()-1, cur.Name, cur.Start)
		}
	}
	return nil
}

// End returns the first address after the last reserved segment.
func (l Layout) End() int {
	end := 0
	for _, seg := range l.Reserved() {
		if seg.End() > end {
			end = seg.End()
		}
	}
	return end
}
