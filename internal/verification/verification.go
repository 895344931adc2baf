// Package verification verifies that patching decoded levels recreates the input image.
package verification

import (
	"fmt"

	"github.com/retroenv/bblevel/internal/codec"
	"github.com/retroenv/bblevel/internal/memory"
	"github.com/retroenv/retrogolib/log"
)

const maxReportedMismatches = 10

// VerifyRoundTrip decodes the levels of the image, patches them back into it
// and checks that the result is identical to the input.
func VerifyRoundTrip(logger *log.Logger, c *codec.Codec, img *memory.Image) error {
	levels, err := c.Decode(img)
	if err != nil {
		return fmt.Errorf("decoding levels: %w", err)
	}

	output, err := c.Patch(img, levels)
	if err != nil {
		return fmt.Errorf("patching levels: %w", err)
	}

	if err := checkBufferEqual(logger, img.Patch().Bytes(), output); err != nil {
		return fmt.Errorf("image mismatch: %w", err)
	}
	return nil
}

func checkBufferEqual(logger *log.Logger, input, output []byte) error {
	if len(input) != len(output) {
		return fmt.Errorf("mismatched lengths, %d != %d", len(input), len(output))
	}

	var diffs uint64
	for i := range input {
		if input[i] == output[i] {
			continue
		}

		diffs++
		if diffs <= maxReportedMismatches {
			logger.Error("Offset mismatch",
				log.Hex("offset", i),
				log.Hex("expected", input[i]),
				log.Hex("got", output[i]))
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d offset mismatches", diffs)
}
