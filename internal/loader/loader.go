// Package loader handles loading of program images, layout files and level documents.
package loader

import (
	"fmt"
	"os"

	"github.com/retroenv/bblevel/internal/document"
	"github.com/retroenv/bblevel/internal/layout"
	"github.com/retroenv/bblevel/internal/level"
	"github.com/retroenv/bblevel/internal/memory"
	"github.com/retroenv/bblevel/internal/options"
)

// Loader handles loading files from disk.
type Loader struct{}

// New creates a new loader.
func New() *Loader {
	return &Loader{}
}

// Layout returns the default layout with the overrides of the layout file
// of the options applied, if one is set.
func (l *Loader) Layout(opts options.Program) (layout.Layout, error) {
	if opts.Layout == "" {
		return layout.Default(), nil
	}
	lay, err := layout.LoadFile(opts.Layout)
	if err != nil {
		return layout.Layout{}, fmt.Errorf("loading layout file %s: %w", opts.Layout, err)
	}
	return lay, nil
}

// Image loads the program image of the input file.
func (l *Loader) Image(opts options.Program) (*memory.Image, error) {
	data, err := os.ReadFile(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", opts.Input, err)
	}
	img, err := memory.New(data)
	if err != nil {
		return nil, fmt.Errorf("loading image %s: %w", opts.Input, err)
	}
	return img, nil
}

// Levels loads the level document set in the options.
func (l *Loader) Levels(opts options.Program) ([]level.Level, error) {
	file, err := os.Open(opts.Levels)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", opts.Levels, err)
	}
	defer func() { _ = file.Close() }()

	levels, err := document.Read(file)
	if err != nil {
		return nil, fmt.Errorf("loading levels %s: %w", opts.Levels, err)
	}
	return levels, nil
}
