package verification

import (
	"testing"

	"github.com/retroenv/bblevel/internal/codec"
	"github.com/retroenv/bblevel/internal/fixture"
	"github.com/retroenv/bblevel/internal/layout"
	"github.com/retroenv/bblevel/internal/memory"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func fixtureImage(t *testing.T, c *codec.Codec) *memory.Image {
	t.Helper()
	blank, err := memory.New(fixture.Blank(c.Layout()))
	assert.NoError(t, err)
	data, err := c.Patch(blank, fixture.Levels())
	assert.NoError(t, err)
	img, err := memory.New(data)
	assert.NoError(t, err)
	return img
}

func TestVerifyRoundTrip(t *testing.T) {
	logger := log.NewTestLogger(t)
	c, err := codec.New(layout.Default())
	assert.NoError(t, err)

	img := fixtureImage(t, c)
	assert.NoError(t, VerifyRoundTrip(logger, c, img))
}

func TestVerifyRoundTrip_DecodeError(t *testing.T) {
	logger := log.NewTestLogger(t)
	c, err := codec.New(layout.Default())
	assert.NoError(t, err)

	img, err := memory.New([]byte{0x00, 0x10, 0x00})
	assert.NoError(t, err)
	assert.ErrorContains(t, VerifyRoundTrip(logger, c, img), "decoding levels")
}

func TestCheckBufferEqual(t *testing.T) {
	logger := log.NewTestLogger(t)

	assert.NoError(t, checkBufferEqual(logger, []byte{1, 2, 3}, []byte{1, 2, 3}))
	assert.ErrorContains(t, checkBufferEqual(logger, []byte{1, 2}, []byte{1, 2, 3}), "mismatched lengths")

	input := make([]byte, 32)
	output := make([]byte, 32)
	for i := 0; i < 12; i++ {
		output[i*2] = 0xFF
	}
	assert.ErrorContains(t, checkBufferEqual(logger, input, output), "12 offset mismatches")
}
