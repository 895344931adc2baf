// Package document converts level lists to and from an editable YAML document.
package document

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/bblevel/internal/glyph"
	"github.com/retroenv/bblevel/internal/layout"
	"github.com/retroenv/bblevel/internal/level"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDocument is returned for a document that does not describe a valid level list.
var ErrInvalidDocument = errors.New("invalid level document")

// Characters used for tiles in the tile rows.
const (
	Solid = '#'
	Open  = '.'
)

// Document is the editable representation of all levels.
type Document struct {
	Levels []Level `yaml:"levels"`
}

// Level is the editable representation of a level.
type Level struct {
	Index        int        `yaml:"index"`
	Colors       Colors     `yaml:"colors"`
	Tiles        []string   `yaml:"tiles"`
	PlatformChar []string   `yaml:"platform_char,flow"`
	SidebarChars [][]string `yaml:"sidebar_chars,omitempty,flow"`
	Monsters     []Monster  `yaml:"monsters,omitempty"`
	Currents     Currents   `yaml:"currents"`
	LineDefaults []uint8    `yaml:"line_defaults,flow"`
}

// Colors contains the background colors.
type Colors struct {
	Light uint8 `yaml:"light"`
	Dark  uint8 `yaml:"dark"`
}

// Monster is a spawn list entry.
type Monster struct {
	Type       uint8 `yaml:"type"`
	X          int   `yaml:"x"`
	Y          int   `yaml:"y"`
	FacingLeft bool  `yaml:"facing_left,omitempty"`
	OddY       bool  `yaml:"odd_y,omitempty"`
	Flags      uint8 `yaml:"flags,omitempty"`
}

// Currents contains either a copy source or a list of entries.
type Currents struct {
	CopyOf     *int    `yaml:"copy_of,omitempty"`
	Entries    []Entry `yaml:"entries,omitempty"`
	ZeroHeader bool    `yaml:"zero_header,omitempty"`
}

// Entry is either a rectangle or a symmetry marker.
type Entry struct {
	Mirror bool  `yaml:"mirror,omitempty"`
	Marker uint8 `yaml:"marker,omitempty"`
	Rect   *Rect `yaml:"rect,omitempty,flow"`
}

// Rect is a bubble current rectangle.
type Rect struct {
	Left      int   `yaml:"left"`
	Top       int   `yaml:"top"`
	Width     int   `yaml:"width"`
	Height    int   `yaml:"height"`
	Direction uint8 `yaml:"direction"`
	Padding   bool  `yaml:"padding,omitempty"`
}

// Write writes the YAML document of the levels.
func Write(w io.Writer, levels []level.Level) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(FromLevels(levels)); err != nil {
		return fmt.Errorf("encoding level document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding level document: %w", err)
	}
	return nil
}

// Read reads a YAML document and returns the levels it describes.
func Read(r io.Reader) ([]level.Level, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding level document: %w", err)
	}
	return doc.ToLevels()
}

// FromLevels converts a level list to its document representation.
func FromLevels(levels []level.Level) Document {
	doc := Document{
		Levels: make([]Level, len(levels)),
	}
	for i := range levels {
		doc.Levels[i] = fromLevel(&levels[i])
	}
	return doc
}

func fromLevel(l *level.Level) Level {
	dl := Level{
		Index: l.Index,
		Colors: Colors{
			Light: l.BgColorLight,
			Dark:  l.BgColorDark,
		},
		Tiles:        make([]string, len(l.Tiles)),
		PlatformChar: fromGlyph(l.PlatformChar),
		LineDefaults: append([]uint8(nil), l.LineDefaults[:]...),
	}

	for y, row := range l.Tiles {
		var sb strings.Builder
		for _, solid := range row {
			if solid {
				sb.WriteByte(Solid)
			} else {
				sb.WriteByte(Open)
			}
		}
		dl.Tiles[y] = sb.String()
	}

	if l.SidebarChars != nil {
		for _, g := range l.SidebarChars {
			dl.SidebarChars = append(dl.SidebarChars, fromGlyph(g))
		}
	}

	for _, m := range l.Monsters {
		dl.Monsters = append(dl.Monsters, Monster{
			Type:       m.Type,
			X:          m.Spawn.X,
			Y:          m.Spawn.Y,
			FacingLeft: m.FacingLeft,
			OddY:       m.OddY,
			Flags:      m.Flags,
		})
	}

	dl.Currents.ZeroHeader = l.Currents.ZeroHeader
	if l.Currents.Kind == level.Copy {
		source := l.Currents.Source
		dl.Currents.CopyOf = &source
	}
	for _, e := range l.Currents.Entries {
		if e.Mirror {
			dl.Currents.Entries = append(dl.Currents.Entries, Entry{Mirror: true, Marker: e.Marker})
			continue
		}
		r := e.Rectangle
		dl.Currents.Entries = append(dl.Currents.Entries, Entry{Rect: &Rect{
			Left:      r.Left,
			Top:       r.Top,
			Width:     r.Width,
			Height:    r.Height,
			Direction: r.Direction,
			Padding:   r.Padding,
		}})
	}
	return dl
}

func fromGlyph(g glyph.Glyph) []string {
	rows := make([]string, len(g))
	for y, row := range g {
		var sb strings.Builder
		for _, pixel := range row {
			sb.WriteByte('0' + pixel)
		}
		rows[y] = sb.String()
	}
	return rows
}

// ToLevels converts the document to a level list.
func (d Document) ToLevels() ([]level.Level, error) {
	if len(d.Levels) != layout.Levels {
		return nil, fmt.Errorf("%w: %d levels, expected %d", ErrInvalidDocument, len(d.Levels), layout.Levels)
	}

	levels := make([]level.Level, len(d.Levels))
	for i := range d.Levels {
		dl := &d.Levels[i]
		if dl.Index != i {
			return nil, fmt.Errorf("%w: level at position %d has index %d", ErrInvalidDocument, i, dl.Index)
		}
		l, err := dl.toLevel()
		if err != nil {
			return nil, fmt.Errorf("%w: level %d: %w", ErrInvalidDocument, i, err)
		}
		levels[i] = l
	}
	return levels, nil
}

func (dl *Level) toLevel() (level.Level, error) {
	l := level.Level{
		Index:        dl.Index,
		BgColorLight: dl.Colors.Light,
		BgColorDark:  dl.Colors.Dark,
	}

	if len(dl.Tiles) != layout.Rows {
		return l, fmt.Errorf("%d tile rows, expected %d", len(dl.Tiles), layout.Rows)
	}
	for y, row := range dl.Tiles {
		if len(row) != layout.Columns {
			return l, fmt.Errorf("tile row %d has %d columns, expected %d", y, len(row), layout.Columns)
		}
		for x := 0; x < len(row); x++ {
			switch row[x] {
			case Solid:
				l.Tiles[y][x] = true
			case Open:
			default:
				return l, fmt.Errorf("tile row %d has invalid character '%c'", y, row[x])
			}
		}
	}

	var err error
	if l.PlatformChar, err = toGlyph(dl.PlatformChar); err != nil {
		return l, fmt.Errorf("platform char: %w", err)
	}

	if dl.SidebarChars != nil {
		if len(dl.SidebarChars) != layout.SidebarGlyphs {
			return l, fmt.Errorf("%d sidebar chars, expected %d", len(dl.SidebarChars), layout.SidebarGlyphs)
		}
		var chars [layout.SidebarGlyphs]glyph.Glyph
		for i, rows := range dl.SidebarChars {
			if chars[i], err = toGlyph(rows); err != nil {
				return l, fmt.Errorf("sidebar char %d: %w", i, err)
			}
		}
		l.SidebarChars = &chars
	}

	for _, m := range dl.Monsters {
		l.Monsters = append(l.Monsters, level.Monster{
			Type:       m.Type,
			Spawn:      level.Point{X: m.X, Y: m.Y},
			FacingLeft: m.FacingLeft,
			OddY:       m.OddY,
			Flags:      m.Flags,
		})
	}

	if l.Currents, err = dl.Currents.toCurrents(); err != nil {
		return l, err
	}

	if len(dl.LineDefaults) != layout.Rows {
		return l, fmt.Errorf("%d line defaults, expected %d", len(dl.LineDefaults), layout.Rows)
	}
	for y, direction := range dl.LineDefaults {
		if direction > 3 {
			return l, fmt.Errorf("line default %d has invalid direction %d", y, direction)
		}
		l.LineDefaults[y] = direction
	}
	return l, nil
}

func (c Currents) toCurrents() (level.Currents, error) {
	if c.CopyOf != nil {
		if len(c.Entries) > 0 || c.ZeroHeader {
			return level.Currents{}, errors.New("currents can not have both copy_of and entries or zero_header")
		}
		return level.Currents{Kind: level.Copy, Source: *c.CopyOf}, nil
	}

	currents := level.Currents{ZeroHeader: c.ZeroHeader}
	for i, e := range c.Entries {
		switch {
		case e.Mirror && e.Rect == nil:
			currents.Entries = append(currents.Entries, level.Entry{Mirror: true, Marker: e.Marker})
		case !e.Mirror && e.Rect != nil && e.Marker == 0:
			currents.Entries = append(currents.Entries, level.Entry{Rectangle: level.Rectangle{
				Left:      e.Rect.Left,
				Top:       e.Rect.Top,
				Width:     e.Rect.Width,
				Height:    e.Rect.Height,
				Direction: e.Rect.Direction,
				Padding:   e.Rect.Padding,
			}})
		case !e.Mirror && e.Rect != nil:
			return currents, fmt.Errorf("current entry %d has a marker but no mirror", i)
		default:
			return currents, fmt.Errorf("current entry %d must be either mirror or rect", i)
		}
	}
	return currents, nil
}

func toGlyph(rows []string) (glyph.Glyph, error) {
	var g glyph.Glyph
	if len(rows) != glyph.Height {
		return g, fmt.Errorf("%d glyph rows, expected %d", len(rows), glyph.Height)
	}
	for y, row := range rows {
		if len(row) != glyph.Width {
			return g, fmt.Errorf("glyph row %d has %d pixels, expected %d", y, len(row), glyph.Width)
		}
		for x := 0; x < len(row); x++ {
			if row[x] < '0' || row[x] > '3' {
				return g, fmt.Errorf("glyph row %d has invalid pixel '%c'", y, row[x])
			}
			g[y][x] = row[x] - '0'
		}
	}
	return g, nil
}
