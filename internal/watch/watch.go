// Package watch reports changes of a file.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce is the quiet time after the last event of a change before the
// change is reported.
const debounce = 100 * time.Millisecond

// Watcher watches a single file. The directory of the file is watched, so
// that editors which replace the file on save are supported.
type Watcher struct {
	watcher *fsnotify.Watcher
	file    string
}

// New returns a watcher for the given file.
func New(file string) (*Watcher, error) {
	file, err := filepath.Abs(file)
	if err != nil {
		return nil, fmt.Errorf("resolving path %s: %w", file, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(file)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(file), err)
	}

	return &Watcher{
		watcher: w,
		file:    file,
	}, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run calls onChange once the file has not been written to for the debounce
// time, until the context is cancelled or the watcher fails.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-fire:
			fire = nil
			onChange()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != w.file {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching %s: %w", w.file, err)
		}
	}
}
