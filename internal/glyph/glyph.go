// Package glyph reads and writes 8x4 character cells with 2 bits per pixel.
package glyph

import (
	"fmt"

	"github.com/retroenv/bblevel/internal/bits"
	"github.com/retroenv/bblevel/internal/layout"
	"github.com/retroenv/bblevel/internal/memory"
)

// Size of a glyph in pixels.
const (
	Height = layout.GlyphBytes
	Width  = 4
)

// Glyph is a character cell, every pixel is a 2 bit color code.
type Glyph [Height][Width]uint8

// Decode converts the byte representation of a glyph.
func Decode(b []byte) Glyph {
	var g Glyph
	for y := 0; y < Height && y < len(b); y++ {
		for x := 0; x < Width; x++ {
			g[y][x] = bits.Pair(b[y], x*2)
		}
	}
	return g
}

// Encode returns the byte representation of the glyph.
func (g Glyph) Encode() []byte {
	b := make([]byte, Height)
	for y := range g {
		for x := range g[y] {
			b[y] = bits.SetPair(b[y], x*2, g[y][x])
		}
	}
	return b
}

// Read reads count glyphs starting at the given address.
func Read(r memory.Reader, address, count int) ([]Glyph, error) {
	data, err := r.Read(address, count*Height)
	if err != nil {
		return nil, fmt.Errorf("reading %d glyphs: %w", count, err)
	}
	glyphs := make([]Glyph, count)
	for i := range glyphs {
		glyphs[i] = Decode(data[i*Height:])
	}
	return glyphs, nil
}

// Write writes the glyphs consecutively starting at the given address.
func Write(w memory.Writer, address int, glyphs ...Glyph) error {
	data := make([]byte, 0, len(glyphs)*Height)
	for _, g := range glyphs {
		data = append(data, g.Encode()...)
	}
	if err := w.Write(address, data); err != nil {
		return fmt.Errorf("writing %d glyphs: %w", len(glyphs), err)
	}
	return nil
}
