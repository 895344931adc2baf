package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "levels.yaml")
	other := filepath.Join(dir, "other.yaml")
	assert.NoError(t, os.WriteFile(file, []byte("a"), 0600))

	w, err := New(file)
	assert.NoError(t, err)
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func() { changes <- struct{}{} })
	}()

	assert.NoError(t, os.WriteFile(other, []byte("b"), 0600))
	assert.NoError(t, os.WriteFile(file, []byte("c"), 0600))

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestRun_ReportsCompletedWrite(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "levels.yaml")
	assert.NoError(t, os.WriteFile(file, nil, 0600))

	w, err := New(file)
	assert.NoError(t, err)
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	contents := make(chan string, 16)
	go func() {
		_ = w.Run(ctx, func() {
			data, err := os.ReadFile(file)
			if err == nil {
				contents <- string(data)
			}
		})
	}()

	f, err := os.OpenFile(file, os.O_WRONLY|os.O_TRUNC, 0600)
	assert.NoError(t, err)
	_, err = f.WriteString("part")
	assert.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	_, err = f.WriteString("-complete")
	assert.NoError(t, err)
	assert.NoError(t, f.Close())

	var last string
	timeout := time.After(5 * time.Second)
	for last != "part-complete" {
		select {
		case last = <-contents:
			assert.Equal(t, "part-complete", last)
		case <-timeout:
			t.Fatalf("last reported content %q", last)
		}
	}
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "levels.yaml"))
	assert.Error(t, err)
}
