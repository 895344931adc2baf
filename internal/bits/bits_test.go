package bits

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestBit(t *testing.T) {
	assert.True(t, Bit(0x80, 0))
	assert.False(t, Bit(0x80, 7))
	assert.True(t, Bit(0x01, 7))
	assert.True(t, Bit(0x04, 5))
}

func TestSet(t *testing.T) {
	assert.Equal(t, byte(0x80), Set(0, 0, true))
	assert.Equal(t, byte(0x01), Set(0, 7, true))
	assert.Equal(t, byte(0x7F), Set(0xFF, 0, false))
}

func TestPair(t *testing.T) {
	tests := []struct {
		name  string
		b     byte
		index int
		want  uint8
	}{
		{name: "low bits", b: 0b0000_0011, index: 6, want: 3},
		{name: "high only", b: 0b0000_0010, index: 6, want: 2},
		{name: "low only", b: 0b0000_0001, index: 6, want: 1},
		{name: "middle", b: 0b0000_1000, index: 4, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Pair(tt.b, tt.index))
			assert.Equal(t, tt.b, SetPair(0, tt.index, tt.want))
		})
	}
}

func TestMirror(t *testing.T) {
	assert.Equal(t, byte(0x01), Mirror(0x80))
	assert.Equal(t, byte(0b1100_0101), Mirror(0b1010_0011))
	assert.Equal(t, byte(0xF0), Mirror(0x0F))
}

func TestPackUnpack(t *testing.T) {
	v := Unpack(0b1001_0110)
	assert.Equal(t, [8]bool{true, false, false, true, false, true, true, false}, v)
	assert.Equal(t, byte(0b1001_0110), Pack(v[:]))
}

func TestNibbles(t *testing.T) {
	assert.Equal(t, uint8(0xA), HighNibble(0xA5))
	assert.Equal(t, uint8(0x5), LowNibble(0xA5))
	assert.Equal(t, byte(0xA5), Nibbles(0xA, 0x5))
}

func TestField(t *testing.T) {
	b := byte(0b1100_0101)
	assert.Equal(t, uint8(1), Field(b, 0, 1))
	assert.Equal(t, uint8(2), Field(b, 1, 2))
	assert.Equal(t, uint8(5), Field(b, 3, 5))
	assert.Equal(t, b, SetField(SetField(SetField(0, 0, 1, 1), 1, 2, 2), 3, 5, 5))
	assert.Equal(t, byte(0b0011_1000), SetField(0, 2, 3, 0xFF))
}
