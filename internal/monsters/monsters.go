// Package monsters implements the codec of the monster spawn lists.
//
// The lists of all levels are stored back to back, every list is a sequence
// of 3 byte records followed by a zero byte. The boss level has no list and
// no terminator.
package monsters

import (
	"errors"
	"fmt"

	"github.com/retroenv/bblevel/internal/bits"
	"github.com/retroenv/bblevel/internal/layout"
	"github.com/retroenv/bblevel/internal/level"
	"github.com/retroenv/bblevel/internal/memory"
)

var (
	// ErrTooManyMonsters is returned when the monster lists exceed their capacity.
	ErrTooManyMonsters = errors.New("too many monsters")
	// ErrInvalidMonster is returned for a monster that can not be encoded.
	ErrInvalidMonster = errors.New("invalid monster")
	// ErrBossMonsters is returned for monsters assigned to the boss level.
	ErrBossMonsters = errors.New("boss level can not have a monster list")
)

// Spawn point coordinates are stored relative to these origins.
const (
	OriginX = 20
	OriginY = 21

	terminator = 0x00
	maxType    = 7
	maxOffsetX = 0xF8
	maxOffsetY = 0xFE
	maxFlags   = 0x7F
)

// Decoder reads the monster lists of consecutive levels, keeping the
// position of the next list.
type Decoder struct {
	r       memory.Reader
	address int
	start   int
}

// NewDecoder returns a decoder for the lists starting at the given address.
func NewDecoder(r memory.Reader, address int) *Decoder {
	return &Decoder{
		r:       r,
		address: address,
		start:   address,
	}
}

// Consumed returns the number of bytes read so far.
func (d *Decoder) Consumed() int {
	return d.address - d.start
}

// Next decodes the list of the level with the given index.
func (d *Decoder) Next(index int) ([]level.Monster, error) {
	if index == layout.BossLevel {
		return nil, nil
	}

	var list []level.Monster
	for {
		b, err := d.r.Byte(d.address)
		if err != nil {
			return nil, fmt.Errorf("reading monster record: %w", err)
		}
		if b == terminator {
			d.address++
			return list, nil
		}

		record, err := d.r.Read(d.address, layout.MonsterRecordBytes)
		if err != nil {
			return nil, fmt.Errorf("reading monster record: %w", err)
		}
		d.address += layout.MonsterRecordBytes
		list = append(list, Decode(record))
	}
}

// DecodeAll decodes the lists of all levels and returns them together with
// the number of bytes they occupy.
func DecodeAll(r memory.Reader, address int) ([][]level.Monster, int, error) {
	d := NewDecoder(r, address)
	lists := make([][]level.Monster, layout.Levels)
	for i := range lists {
		list, err := d.Next(i)
		if err != nil {
			return nil, 0, fmt.Errorf("decoding level %d: %w", i, err)
		}
		lists[i] = list
	}
	return lists, d.Consumed(), nil
}

// Decode decodes a 3 byte monster record.
func Decode(b []byte) level.Monster {
	return level.Monster{
		Type: bits.Field(b[0], 5, 3),
		Spawn: level.Point{
			X: int(bits.Field(b[0], 0, 5))<<3 + OriginX,
			Y: int(bits.Field(b[1], 0, 7))<<1 + OriginY,
		},
		FacingLeft: bits.Bit(b[2], 0),
		OddY:       bits.Bit(b[1], 7),
		Flags:      bits.Field(b[2], 1, 7),
	}
}

// Encode encodes a monster record.
func Encode(m level.Monster) ([]byte, error) {
	x := m.Spawn.X - OriginX
	y := m.Spawn.Y - OriginY
	switch {
	case m.Type > maxType:
		return nil, fmt.Errorf("%w: type %d", ErrInvalidMonster, m.Type)
	case x < 0 || x > maxOffsetX || x&7 != 0:
		return nil, fmt.Errorf("%w: x position %d", ErrInvalidMonster, m.Spawn.X)
	case y < 0 || y > maxOffsetY || y&1 != 0:
		return nil, fmt.Errorf("%w: y position %d", ErrInvalidMonster, m.Spawn.Y)
	case m.Flags > maxFlags:
		return nil, fmt.Errorf("%w: flags $%02X", ErrInvalidMonster, m.Flags)
	case x == 0 && m.Type == 0:
		return nil, fmt.Errorf("%w: type 0 at x position %d collides with the list terminator",
			ErrInvalidMonster, m.Spawn.X)
	}

	b := make([]byte, layout.MonsterRecordBytes)
	b[0] = bits.SetField(0, 0, 5, uint8(x>>3))
	b[0] = bits.SetField(b[0], 5, 3, m.Type)
	b[1] = bits.SetField(0, 0, 7, uint8(y>>1))
	b[1] = bits.Set(b[1], 7, m.OddY)
	b[2] = bits.Set(0, 0, m.FacingLeft)
	b[2] = bits.SetField(b[2], 1, 7, m.Flags)
	return b, nil
}

// EncodeAll encodes the lists of all levels.
func EncodeAll(levels []level.Level, maxMonsters int) ([]byte, error) {
	total := 0
	for i := range levels {
		if levels[i].IsBoss() && len(levels[i].Monsters) > 0 {
			return nil, fmt.Errorf("%w: %d monsters", ErrBossMonsters, len(levels[i].Monsters))
		}
		total += len(levels[i].Monsters)
	}
	if total > maxMonsters {
		return nil, fmt.Errorf("%w: %d monsters, maximum is %d", ErrTooManyMonsters, total, maxMonsters)
	}

	stream := make([]byte, 0, total*layout.MonsterRecordBytes+len(levels))
	for i := range levels {
		if levels[i].IsBoss() {
			continue
		}
		for j, m := range levels[i].Monsters {
			b, err := Encode(m)
			if err != nil {
				return nil, fmt.Errorf("encoding monster %d of level %d: %w", j, i, err)
			}
			stream = append(stream, b...)
		}
		stream = append(stream, terminator)
	}
	return stream, nil
}
