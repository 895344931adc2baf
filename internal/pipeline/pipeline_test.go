package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/retroenv/bblevel/internal/codec"
	"github.com/retroenv/bblevel/internal/document"
	"github.com/retroenv/bblevel/internal/fixture"
	"github.com/retroenv/bblevel/internal/layout"
	"github.com/retroenv/bblevel/internal/level"
	"github.com/retroenv/bblevel/internal/memory"
	"github.com/retroenv/bblevel/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestNew(t *testing.T) {
	logger := log.NewTestLogger(t)
	p := New(logger)

	assert.NotNil(t, p)
	assert.NotNil(t, p.logger)
	assert.NotNil(t, p.loader)
}

func TestInfo(t *testing.T) {
	p := New(log.NewTestLogger(t))
	opts := inputOptions(t)

	assert.NoError(t, p.Info(context.Background(), opts))
}

func TestExportPatch(t *testing.T) {
	p := New(log.NewTestLogger(t))
	ctx := context.Background()
	opts := inputOptions(t)
	dir := t.TempDir()

	// edit a level in the exported document and patch it back
	opts.Output = filepath.Join(dir, "levels.yaml")
	assert.NoError(t, p.Export(ctx, opts, nil))

	levels := readDocument(t, opts.Output)
	levels[10].BgColorLight = 15
	levels[10].Tiles[12][15] = true
	levels[10].Tiles[12][16] = true
	writeDocument(t, opts.Output, levels)

	opts.Levels = opts.Output
	opts.Output = filepath.Join(dir, "patched.prg")
	assert.NoError(t, p.Patch(ctx, opts))

	data, err := os.ReadFile(opts.Output)
	assert.NoError(t, err)
	img, err := memory.New(data)
	assert.NoError(t, err)
	c, err := codec.New(layout.Default())
	assert.NoError(t, err)
	result, err := c.Decode(img)
	assert.NoError(t, err)
	assert.Equal(t, levels, result)

	opts.Input = opts.Output
	assert.NoError(t, p.Verify(ctx, opts))
}

func TestExport_Stdout(t *testing.T) {
	p := New(log.NewTestLogger(t))
	opts := inputOptions(t)

	var buf bytes.Buffer
	assert.NoError(t, p.Export(context.Background(), opts, &buf))

	levels, err := document.Read(&buf)
	assert.NoError(t, err)
	assert.Equal(t, fixture.Levels(), levels)
}

func TestPatch_MissingOutput(t *testing.T) {
	p := New(log.NewTestLogger(t))
	opts := inputOptions(t)

	err := p.Patch(context.Background(), opts)
	assert.True(t, errors.Is(err, ErrMissingOutput))
}

func TestVerify(t *testing.T) {
	p := New(log.NewTestLogger(t))
	opts := inputOptions(t)

	assert.NoError(t, p.Verify(context.Background(), opts))
}

func TestWatch(t *testing.T) {
	p := New(log.NewTestLogger(t))
	opts := inputOptions(t)
	dir := t.TempDir()
	opts.Levels = filepath.Join(dir, "levels.yaml")
	opts.Output = filepath.Join(dir, "patched.prg")

	levels := fixture.Levels()
	writeDocument(t, opts.Levels, levels)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- p.Watch(ctx, opts)
	}()

	// the watcher is registered before the initial patch is written
	waitFor(t, func() bool {
		_, err := os.Stat(opts.Output)
		return err == nil
	})

	levels[20].BgColorDark = 3
	writeDocument(t, opts.Levels, levels)

	c, err := codec.New(layout.Default())
	assert.NoError(t, err)
	waitFor(t, func() bool {
		data, err := os.ReadFile(opts.Output)
		if err != nil {
			return false
		}
		img, err := memory.New(data)
		if err != nil {
			return false
		}
		result, err := c.Decode(img)
		return err == nil && result[20].BgColorDark == 3
	})

	cancel()
	assert.True(t, errors.Is(<-done, context.Canceled))
}

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !condition() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestCancelledContext(t *testing.T) {
	p := New(log.NewTestLogger(t))
	opts := inputOptions(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Verify(ctx, opts)
	assert.True(t, errors.Is(err, context.Canceled))
}

// inputOptions returns options with an input image that contains the
// generated fixture levels.
func inputOptions(t *testing.T) options.Program {
	t.Helper()
	c, err := codec.New(layout.Default())
	assert.NoError(t, err)
	blank, err := memory.New(fixture.Blank(layout.Default()))
	assert.NoError(t, err)
	data, err := c.Patch(blank, fixture.Levels())
	assert.NoError(t, err)

	file := filepath.Join(t.TempDir(), "levels.prg")
	assert.NoError(t, os.WriteFile(file, data, 0600))
	return options.Program{
		Parameters: options.Parameters{Input: file},
	}
}

func readDocument(t *testing.T, file string) []level.Level {
	t.Helper()
	f, err := os.Open(file)
	assert.NoError(t, err)
	defer func() { _ = f.Close() }()
	levels, err := document.Read(f)
	assert.NoError(t, err)
	return levels
}

func writeDocument(t *testing.T, file string, levels []level.Level) {
	t.Helper()
	var buf bytes.Buffer
	assert.NoError(t, document.Write(&buf, levels))
	assert.NoError(t, os.WriteFile(file, buf.Bytes(), 0600))
}
