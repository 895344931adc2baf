package currents

import (
	"errors"
	"testing"

	"github.com/retroenv/bblevel/internal/layout"
	"github.com/retroenv/bblevel/internal/level"
	"github.com/retroenv/bblevel/internal/memory"
	"github.com/retroenv/bblevel/internal/tiles"
	"github.com/retroenv/retrogolib/assert"
)

const testAddress = 0x4000

func newImage(t *testing.T, content []byte) *memory.Image {
	t.Helper()
	data := append([]byte{0x00, 0x40}, content...)
	img, err := memory.New(data)
	assert.NoError(t, err)
	return img
}

func TestDecodeRectangle(t *testing.T) {
	r := DecodeRectangle([]byte{0b11000101, 0b00101011, 0b01000001})
	assert.Equal(t, level.Rectangle{Direction: 2, Left: 5, Top: 5, Width: 14, Height: 2}, r)

	b, err := EncodeRectangle(r)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0b11000101, 0b00101011, 0b01000001}, b)
}

func TestEncodeRectangle(t *testing.T) {
	tests := []struct {
		name string
		rect level.Rectangle
	}{
		{name: "left", rect: level.Rectangle{Left: 32, Width: 1, Height: 1}},
		{name: "top", rect: level.Rectangle{Top: -1, Width: 1, Height: 1}},
		{name: "zero width", rect: level.Rectangle{Width: 0, Height: 1}},
		{name: "height", rect: level.Rectangle{Width: 1, Height: 33}},
		{name: "direction", rect: level.Rectangle{Width: 1, Height: 1, Direction: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeRectangle(tt.rect)
			assert.True(t, errors.Is(err, ErrInvalidRectangle))
		})
	}

	b, err := EncodeRectangle(level.Rectangle{Left: 31, Top: 31, Width: 32, Height: 32, Direction: 3})
	assert.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xDF}, b)
}

func TestDecoder_Copy(t *testing.T) {
	img := newImage(t, []byte{0b10000011, 0x01})
	d := NewDecoder(img, testAddress)

	c, err := d.Next()
	assert.NoError(t, err)
	assert.Equal(t, level.Currents{Kind: level.Copy, Source: 3}, c)
	assert.Equal(t, 1, d.Consumed())

	c, err = d.Next()
	assert.NoError(t, err)
	assert.Equal(t, level.Rectangles, c.Kind)
	assert.Equal(t, 0, len(c.Entries))
	assert.Equal(t, 2, d.Consumed())
}

func TestDecoder_Entries(t *testing.T) {
	img := newImage(t, []byte{
		0x06, 0b11000101, 0b00101011, 0b01000001, 0x00, 0x00,
		0x00,
		0x04, 0x00, 0x80, 0x00,
	})
	d := NewDecoder(img, testAddress)

	c, err := d.Next()
	assert.NoError(t, err)
	assert.Equal(t, []level.Entry{
		{Rectangle: level.Rectangle{Direction: 2, Left: 5, Top: 5, Width: 14, Height: 2}},
		{Mirror: true},
		{Mirror: true},
	}, c.Entries)

	c, err = d.Next()
	assert.NoError(t, err)
	assert.Equal(t, 0, len(c.Entries))
	assert.Equal(t, 7, d.Consumed())

	_, err = d.Next()
	assert.True(t, errors.Is(err, ErrMalformedCurrents))
}

func TestDecoder_KeepsUnusedBits(t *testing.T) {
	stream := []byte{
		0x00,
		0x06, 0b11000101, 0b00101011, 0b01100001, 0x35, 0x00,
	}
	img := newImage(t, stream)
	d := NewDecoder(img, testAddress)

	empty, err := d.Next()
	assert.NoError(t, err)
	assert.Equal(t, level.Currents{Kind: level.Rectangles, ZeroHeader: true}, empty)

	c, err := d.Next()
	assert.NoError(t, err)
	assert.Equal(t, []level.Entry{
		{Rectangle: level.Rectangle{Direction: 2, Left: 5, Top: 5, Width: 14, Height: 2, Padding: true}},
		{Mirror: true, Marker: 0x35},
		{Mirror: true},
	}, c.Entries)

	var encoded []byte
	for _, record := range []level.Currents{empty, c} {
		b, err := EncodeRecord(record)
		assert.NoError(t, err)
		encoded = append(encoded, b...)
	}
	assert.Equal(t, stream, encoded)
}

func TestEncodeRecord_Invalid(t *testing.T) {
	_, err := EncodeRecord(level.Currents{Entries: []level.Entry{{Mirror: true, Marker: 0x80}}})
	assert.True(t, errors.Is(err, ErrInvalidMarker))

	_, err = EncodeRecord(level.Currents{ZeroHeader: true, Entries: []level.Entry{{Mirror: true}}})
	assert.True(t, errors.Is(err, ErrMalformedCurrents))
}

func TestDecoder_OutOfBounds(t *testing.T) {
	img := newImage(t, []byte{0x05, 0x80})
	d := NewDecoder(img, testAddress)
	_, err := d.Next()
	assert.True(t, errors.Is(err, memory.ErrOutOfBounds))
}

func copyStream(records ...byte) []byte {
	stream := make([]byte, layout.Levels)
	for i := range stream {
		stream[i] = 0x01
	}
	copy(stream, records)
	return stream
}

func TestDecodeAll(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		img := newImage(t, copyStream(0x01, 0x80, 0x01, 0x82))
		records, size, err := DecodeAll(img, testAddress)
		assert.NoError(t, err)
		assert.Equal(t, layout.Levels, size)
		assert.Equal(t, level.Currents{Kind: level.Copy, Source: 0}, records[1])
		assert.Equal(t, level.Currents{Kind: level.Copy, Source: 2}, records[3])
	})

	t.Run("copy of copy", func(t *testing.T) {
		img := newImage(t, copyStream(0x81, 0x82, 0x01))
		_, _, err := DecodeAll(img, testAddress)
		assert.True(t, errors.Is(err, level.ErrInvalidCopyChain))
		assert.ErrorContains(t, err, "[0 1 2] form a chain")
	})

	t.Run("self copy", func(t *testing.T) {
		img := newImage(t, copyStream(0x01, 0x81))
		_, _, err := DecodeAll(img, testAddress)
		assert.True(t, errors.Is(err, level.ErrInvalidCopyChain))
		assert.ErrorContains(t, err, "[1 1] form a loop")
	})

	t.Run("copy loop", func(t *testing.T) {
		img := newImage(t, copyStream(0x81, 0x80))
		_, _, err := DecodeAll(img, testAddress)
		assert.True(t, errors.Is(err, level.ErrInvalidCopyChain))
		assert.ErrorContains(t, err, "[0 1 0] form a loop")
	})

	t.Run("source out of range", func(t *testing.T) {
		img := newImage(t, copyStream(0xFF))
		_, _, err := DecodeAll(img, testAddress)
		assert.True(t, errors.Is(err, level.ErrInvalidCopyChain))
	})
}

func testLevels() []level.Level {
	levels := make([]level.Level, layout.Levels)
	for i := range levels {
		levels[i].Index = i
	}
	levels[0].Currents.Entries = []level.Entry{
		{Rectangle: level.Rectangle{Left: 2, Top: 1, Width: 3, Height: 20, Direction: 1}},
		{Mirror: true},
	}
	levels[1].Currents = level.Currents{Kind: level.Copy, Source: 0}
	return levels
}

func TestEncode(t *testing.T) {
	levels := testLevels()
	stream, err := Encode(levels, 1500)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x05}, stream[:1])
	assert.Equal(t, byte(0x80), stream[5])
	assert.Equal(t, 5+1+98, len(stream))

	img := newImage(t, stream)
	records, size, err := DecodeAll(img, testAddress)
	assert.NoError(t, err)
	assert.Equal(t, len(stream), size)
	for i := range levels {
		assert.Equal(t, len(levels[i].Currents.Entries), len(records[i].Entries))
		assert.Equal(t, levels[i].Currents.Kind, records[i].Kind)
	}
	assert.Equal(t, levels[0].Currents.Entries, records[0].Entries)
}

func TestEncode_Errors(t *testing.T) {
	t.Run("overflow", func(t *testing.T) {
		_, err := Encode(testLevels(), 100)
		assert.True(t, errors.Is(err, ErrCurrentsOverflow))
	})

	t.Run("copy chain", func(t *testing.T) {
		levels := testLevels()
		levels[2].Currents = level.Currents{Kind: level.Copy, Source: 1}
		_, err := Encode(levels, 1500)
		assert.True(t, errors.Is(err, level.ErrInvalidCopyChain))
	})

	t.Run("record too long", func(t *testing.T) {
		levels := testLevels()
		for i := 0; i < 127; i++ {
			levels[5].Currents.Entries = append(levels[5].Currents.Entries, level.Entry{Mirror: true})
		}
		_, err := Encode(levels, 1500)
		assert.True(t, errors.Is(err, ErrRecordTooLong))
	})
}

func TestLineDefaults(t *testing.T) {
	var rows tiles.Rows
	rows[0][3] = 0b0000_0010
	rows[22][3] = 0b1111_1101

	defaults := LineDefaults(&rows, 0b0000_1001)
	assert.Equal(t, uint8(2), defaults[0])
	assert.Equal(t, uint8(2), defaults[1])
	assert.Equal(t, uint8(1), defaults[23])
	assert.Equal(t, uint8(1), defaults[24])

	var stored tiles.Rows
	holes := StoreLineDefaults(&stored, 0xF0, defaults)
	assert.Equal(t, byte(0xF9), holes)
	assert.Equal(t, defaults, LineDefaults(&stored, holes))
}
