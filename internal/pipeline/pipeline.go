// Package pipeline orchestrates the workflows of the level tool.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/bblevel/internal/codec"
	"github.com/retroenv/bblevel/internal/document"
	"github.com/retroenv/bblevel/internal/level"
	"github.com/retroenv/bblevel/internal/loader"
	"github.com/retroenv/bblevel/internal/memory"
	"github.com/retroenv/bblevel/internal/options"
	"github.com/retroenv/bblevel/internal/verification"
	"github.com/retroenv/bblevel/internal/watch"
	"github.com/retroenv/retrogolib/log"
)

// ErrMissingOutput is returned when a workflow that writes an image has no output file set.
var ErrMissingOutput = errors.New("no output file set")

// Pipeline runs the workflows on files.
type Pipeline struct {
	logger *log.Logger
	loader *loader.Loader
}

// New creates a new pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger: logger,
		loader: loader.New(),
	}
}

// Info decodes the levels of the input image and logs the segment table.
func (p *Pipeline) Info(ctx context.Context, opts options.Program) error {
	c, img, err := p.load(ctx, opts)
	if err != nil {
		return err
	}
	levels, err := c.Decode(img)
	if err != nil {
		return fmt.Errorf("decoding levels: %w", err)
	}
	segments, err := c.Segments(img, levels)
	if err != nil {
		return fmt.Errorf("resolving segments: %w", err)
	}

	p.logger.Info("Processing image",
		log.String("file", opts.Input),
		log.Hex("load_address", img.LoadAddress()),
		log.Int("size", img.Len()),
	)
	for _, s := range segments {
		p.logger.Info("Segment",
			log.String("name", s.Name),
			log.Hex("start", s.Start),
			log.Hex("end", s.End()),
			log.Int("length", s.Length),
		)
	}

	var asymmetric, copies, monsters int
	for i := range levels {
		l := &levels[i]
		if !l.IsSymmetric() {
			asymmetric++
		}
		if l.Currents.Kind == level.Copy {
			copies++
		}
		monsters += len(l.Monsters)

		p.logger.Debug("Level",
			log.Int("index", l.Index),
			log.String("symmetric", fmt.Sprint(l.IsSymmetric())),
			log.Int("monsters", len(l.Monsters)),
			log.Int("currents", len(l.Currents.Entries)),
		)
	}
	p.logger.Info("Levels",
		log.Int("count", len(levels)),
		log.Int("asymmetric", asymmetric),
		log.Int("monsters", monsters),
		log.Int("current_copies", copies),
	)
	return nil
}

// Export decodes the levels of the input image and writes them as a level
// document to the output file, or to the given writer if no output is set.
func (p *Pipeline) Export(ctx context.Context, opts options.Program, stdout io.Writer) error {
	c, img, err := p.load(ctx, opts)
	if err != nil {
		return err
	}
	levels, err := c.Decode(img)
	if err != nil {
		return fmt.Errorf("decoding levels: %w", err)
	}

	if opts.Output == "" {
		return document.Write(stdout, levels)
	}

	file, err := os.Create(opts.Output)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", opts.Output, err)
	}
	if err := document.Write(file, levels); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing file %s: %w", opts.Output, err)
	}

	p.logger.Info("Exported levels", log.String("file", opts.Output), log.Int("count", len(levels)))
	return nil
}

// Patch writes the levels of the level document into the input image and
// saves the result to the output file.
func (p *Pipeline) Patch(ctx context.Context, opts options.Program) error {
	if opts.Output == "" {
		return ErrMissingOutput
	}
	c, img, err := p.load(ctx, opts)
	if err != nil {
		return err
	}
	levels, err := p.loader.Levels(opts)
	if err != nil {
		return err
	}

	data, err := c.Patch(img, levels)
	if err != nil {
		return fmt.Errorf("patching levels: %w", err)
	}
	if err := os.WriteFile(opts.Output, data, 0644); err != nil {
		return fmt.Errorf("writing file %s: %w", opts.Output, err)
	}

	p.logger.Info("Patched image", log.String("file", opts.Output), log.Int("size", len(data)))
	return nil
}

// Watch patches the image and repeats the patching every time the level
// document changes, until the context is cancelled. Failed patches of a
// changed document are logged and do not stop watching.
func (p *Pipeline) Watch(ctx context.Context, opts options.Program) error {
	w, err := watch.New(opts.Levels)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	if err := p.Patch(ctx, opts); err != nil {
		return err
	}

	p.logger.Info("Watching level document", log.String("file", opts.Levels))
	return w.Run(ctx, func() {
		if err := p.Patch(ctx, opts); err != nil {
			p.logger.Error("Patching failed", log.Err(err))
		}
	})
}

// Verify checks that decoding and patching the input image recreates it.
func (p *Pipeline) Verify(ctx context.Context, opts options.Program) error {
	c, img, err := p.load(ctx, opts)
	if err != nil {
		return err
	}
	if err := verification.VerifyRoundTrip(p.logger, c, img); err != nil {
		return fmt.Errorf("verifying %s: %w", opts.Input, err)
	}

	p.logger.Info("Verification successful", log.String("file", opts.Input))
	return nil
}

func (p *Pipeline) load(ctx context.Context, opts options.Program) (*codec.Codec, *memory.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	lay, err := p.loader.Layout(opts)
	if err != nil {
		return nil, nil, err
	}
	c, err := codec.New(lay)
	if err != nil {
		return nil, nil, fmt.Errorf("creating codec: %w", err)
	}
	img, err := p.loader.Image(opts)
	if err != nil {
		return nil, nil, err
	}

	p.logger.Debug("Loaded image",
		log.String("file", opts.Input),
		log.Hex("load_address", img.LoadAddress()),
		log.Hex("end_address", img.EndAddress()),
	)
	return c, img, nil
}
