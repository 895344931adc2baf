// Package bits provides the MSB-first bit access used by all level data formats.
// Bit index 0 addresses the most significant bit (0x80), bit index 7 the least significant one.
package bits

// mask returns the byte mask for the MSB-first bit index.
func mask(index int) byte {
	return 0x80 >> uint(index)
}

// Bit returns whether the bit at the MSB-first index is set.
func Bit(b byte, index int) bool {
	return b&mask(index) != 0
}

// Set returns b with the bit at the MSB-first index set to the given value.
func Set(b byte, index int, value bool) byte {
	if value {
		return b | mask(index)
	}
	return b &^ mask(index)
}

// Field returns the value of width bits starting at the MSB-first index,
// the bit at index being the most significant bit of the value.
func Field(b byte, index, width int) uint8 {
	var v uint8
	for i := index; i < index+width; i++ {
		v <<= 1
		if Bit(b, i) {
			v |= 1
		}
	}
	return v
}

// SetField stores the lowest width bits of value starting at the MSB-first index.
func SetField(b byte, index, width int, value uint8) byte {
	for i := index + width - 1; i >= index; i-- {
		b = Set(b, i, value&1 != 0)
		value >>= 1
	}
	return b
}

// Pair returns the 2-bit value formed by the bits at index and index+1,
// the first one being the high bit.
func Pair(b byte, index int) uint8 {
	return Field(b, index, 2)
}

// SetPair stores a 2-bit value in the bits at index and index+1.
func SetPair(b byte, index int, value uint8) byte {
	return SetField(b, index, 2, value)
}

// Mirror reverses the bit order of a byte.
func Mirror(b byte) byte {
	var r byte
	for i := 0; i < 8; i++ {
		r = Set(r, 7-i, Bit(b, i))
	}
	return r
}

// Unpack expands a byte into 8 booleans, element 0 being the most significant bit.
func Unpack(b byte) [8]bool {
	var v [8]bool
	for i := range v {
		v[i] = Bit(b, i)
	}
	return v
}

// Pack is the inverse of Unpack.
func Pack(v []bool) byte {
	var b byte
	for i := 0; i < 8 && i < len(v); i++ {
		b = Set(b, i, v[i])
	}
	return b
}

// HighNibble returns the upper 4 bits of b.
func HighNibble(b byte) uint8 {
	return b >> 4
}

// LowNibble returns the lower 4 bits of b.
func LowNibble(b byte) uint8 {
	return b & 0x0F
}

// Nibbles combines two 4-bit values into a byte.
func Nibbles(high, low uint8) byte {
	return high<<4 | low&0x0F
}
