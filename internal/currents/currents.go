// Package currents implements the bubble current stream codec.
//
// The stream contains one record per level. A record starts with a header
// byte: if its most significant bit is set, the lower 7 bits are the index of
// the level whose currents are reused and the record is 1 byte long. Otherwise
// the lower 7 bits are the record length including the header, a length of 0
// counts as 1. The bytes after the header are entries: a byte with a clear
// most significant bit is a symmetry marker, a set bit starts a 3 byte
// rectangle. The position of a record can only be found by walking all
// preceding records.
package currents

import (
	"errors"
	"fmt"

	"github.com/retroenv/bblevel/internal/bits"
	"github.com/retroenv/bblevel/internal/layout"
	"github.com/retroenv/bblevel/internal/level"
	"github.com/retroenv/bblevel/internal/memory"
	"github.com/retroenv/retrogolib/set"
)

var (
	// ErrMalformedCurrents is returned for a rectangle that crosses the end of its record.
	ErrMalformedCurrents = errors.New("malformed bubble current record")
	// ErrInvalidRectangle is returned for a rectangle that can not be encoded.
	ErrInvalidRectangle = errors.New("invalid bubble current rectangle")
	// ErrInvalidMarker is returned for a symmetry marker value with the most significant bit set.
	ErrInvalidMarker = errors.New("invalid symmetry marker")
	// ErrRecordTooLong is returned for a level with more entries than a record can hold.
	ErrRecordTooLong = errors.New("bubble current record too long")
	// ErrCurrentsOverflow is returned when the stream exceeds its capacity.
	ErrCurrentsOverflow = errors.New("bubble current stream overflow")
)

const (
	copyFlag       = 0x80
	payloadMask    = 0x7F
	rectangleBit   = 0
	paddingBit     = 2
	rectangleBytes = 3
)

// Decoder reads the records of consecutive levels, keeping the position
// of the next record.
type Decoder struct {
	r       memory.Reader
	address int
	start   int
}

// NewDecoder returns a decoder for the stream at the given address.
func NewDecoder(r memory.Reader, address int) *Decoder {
	return &Decoder{
		r:       r,
		address: address,
		start:   address,
	}
}

// Consumed returns the number of stream bytes read so far.
func (d *Decoder) Consumed() int {
	return d.address - d.start
}

// Next decodes the record of the next level.
func (d *Decoder) Next() (level.Currents, error) {
	header, err := d.r.Byte(d.address)
	if err != nil {
		return level.Currents{}, fmt.Errorf("reading record header: %w", err)
	}
	d.address++

	if header&copyFlag != 0 {
		return level.Currents{
			Kind:   level.Copy,
			Source: int(header & payloadMask),
		}, nil
	}

	length := max(1, int(header&payloadMask))
	data, err := d.r.Read(d.address, length-1)
	if err != nil {
		return level.Currents{}, fmt.Errorf("reading record entries: %w", err)
	}
	d.address += length - 1

	entries, err := decodeEntries(data)
	if err != nil {
		return level.Currents{}, err
	}
	return level.Currents{
		Kind:       level.Rectangles,
		Entries:    entries,
		ZeroHeader: header == 0,
	}, nil
}

func decodeEntries(data []byte) ([]level.Entry, error) {
	var entries []level.Entry
	for i := 0; i < len(data); {
		if !bits.Bit(data[i], rectangleBit) {
			entries = append(entries, level.Entry{Mirror: true, Marker: data[i]})
			i++
			continue
		}
		if i+rectangleBytes > len(data) {
			return nil, fmt.Errorf("%w: rectangle at entry offset %d exceeds record of %d bytes",
				ErrMalformedCurrents, i, len(data)+1)
		}
		entries = append(entries, level.Entry{Rectangle: DecodeRectangle(data[i:])})
		i += rectangleBytes
	}
	return entries, nil
}

// DecodeAll decodes the records of all levels and returns them together with
// the stream size.
func DecodeAll(r memory.Reader, address int) ([]level.Currents, int, error) {
	d := NewDecoder(r, address)
	result := make([]level.Currents, layout.Levels)
	for i := range result {
		c, err := d.Next()
		if err != nil {
			return nil, 0, fmt.Errorf("decoding level %d: %w", i, err)
		}
		result[i] = c
	}
	if err := checkCopyChains(result); err != nil {
		return nil, 0, err
	}
	return result, d.Consumed(), nil
}

// checkCopyChains follows the copy records of every level. A chain must end
// after one hop at a level with its own entries.
func checkCopyChains(records []level.Currents) error {
	for i, c := range records {
		if c.Kind != level.Copy {
			continue
		}

		visited := set.New[int]()
		visited.Add(i)
		chain := []int{i}
		for current := i; records[current].Kind == level.Copy; {
			source := records[current].Source
			if source >= len(records) {
				return fmt.Errorf("%w: level %d copies level %d", level.ErrInvalidCopyChain, current, source)
			}
			chain = append(chain, source)
			if visited.Contains(source) {
				return fmt.Errorf("%w: levels %v form a loop", level.ErrInvalidCopyChain, chain)
			}
			visited.Add(source)
			current = source
		}
		if len(chain) > 2 {
			return fmt.Errorf("%w: levels %v form a chain", level.ErrInvalidCopyChain, chain)
		}
	}
	return nil
}

// DecodeRectangle decodes a 3 byte rectangle entry.
func DecodeRectangle(b []byte) level.Rectangle {
	return level.Rectangle{
		Direction: bits.Field(b[0], 1, 2),
		Left:      int(bits.Field(b[0], 3, 5)),
		Top:       int(bits.Field(b[1], 0, 5)),
		Width:     int(bits.Field(b[1], 5, 3)<<2|bits.Field(b[2], 0, 2)) + 1,
		Height:    int(bits.Field(b[2], 3, 5)) + 1,
		Padding:   bits.Bit(b[2], paddingBit),
	}
}

// EncodeRectangle encodes a rectangle entry.
func EncodeRectangle(r level.Rectangle) ([]byte, error) {
	switch {
	case r.Left < 0 || r.Left >= layout.Columns,
		r.Top < 0 || r.Top >= layout.Columns,
		r.Width < 1 || r.Width > layout.Columns,
		r.Height < 1 || r.Height > layout.Columns,
		r.Direction > 3:
		return nil, fmt.Errorf("%w: %+v", ErrInvalidRectangle, r)
	}

	width := uint8(r.Width - 1)
	b := make([]byte, rectangleBytes)
	b[0] = bits.Set(0, rectangleBit, true)
	b[0] = bits.SetField(b[0], 1, 2, r.Direction)
	b[0] = bits.SetField(b[0], 3, 5, uint8(r.Left))
	b[1] = bits.SetField(0, 0, 5, uint8(r.Top))
	b[1] = bits.SetField(b[1], 5, 3, width>>2)
	b[2] = bits.SetField(0, 0, 2, width&3)
	b[2] = bits.Set(b[2], paddingBit, r.Padding)
	b[2] = bits.SetField(b[2], 3, 5, uint8(r.Height-1))
	return b, nil
}

// EncodeRecord encodes the record of a level.
func EncodeRecord(c level.Currents) ([]byte, error) {
	if c.Kind == level.Copy {
		if c.Source < 0 || c.Source > payloadMask {
			return nil, fmt.Errorf("%w: copy source %d", level.ErrInvalidCopyChain, c.Source)
		}
		return []byte{copyFlag | byte(c.Source)}, nil
	}

	if c.ZeroHeader {
		if len(c.Entries) > 0 {
			return nil, fmt.Errorf("%w: record with header 0 can not have entries", ErrMalformedCurrents)
		}
		return []byte{0}, nil
	}

	record := []byte{0}
	for _, entry := range c.Entries {
		if entry.Mirror {
			if entry.Marker&copyFlag != 0 {
				return nil, fmt.Errorf("%w: $%02X", ErrInvalidMarker, entry.Marker)
			}
			record = append(record, entry.Marker)
			continue
		}
		b, err := EncodeRectangle(entry.Rectangle)
		if err != nil {
			return nil, err
		}
		record = append(record, b...)
	}
	if len(record) > payloadMask {
		return nil, fmt.Errorf("%w: %d bytes, maximum is %d", ErrRecordTooLong, len(record), payloadMask)
	}
	record[0] = byte(len(record))
	return record, nil
}

// Encode encodes the records of all levels into one stream.
func Encode(levels []level.Level, maxBytes int) ([]byte, error) {
	var stream []byte
	for i := range levels {
		if levels[i].Currents.Kind == level.Copy {
			if err := level.CheckCopySource(levels, i); err != nil {
				return nil, err
			}
		}
		record, err := EncodeRecord(levels[i].Currents)
		if err != nil {
			return nil, fmt.Errorf("encoding level %d: %w", i, err)
		}
		stream = append(stream, record...)
	}
	if len(stream) > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes, maximum is %d", ErrCurrentsOverflow, len(stream), maxBytes)
	}
	return stream, nil
}
