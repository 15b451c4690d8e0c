// Package watcher monitors the library file for edits made outside the
// server, so manual fixes to the JSON land in memory without a restart.
//
// Events are debounced: editors and atomic-rename writers emit bursts of
// filesystem events for one logical save, and the store should only reload
// once per burst.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher watches one file and invokes a callback after changes settle.
type Watcher struct {
	path     string
	onChange func()
	debounce time.Duration
	logger   *slog.Logger

	fsw *fsnotify.Watcher
}

// Options configures the watcher.
type Options struct {
	Path     string        // File to watch
	OnChange func()        // Invoked after a debounced change
	Debounce time.Duration // Defaults to 500ms
	Logger   *slog.Logger
}

// New creates a watcher for one file. The parent directory is watched
// rather than the file itself, because atomic saves replace the inode.
func New(opts Options) (*Watcher, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("watcher: path is required")
	}
	if opts.OnChange == nil {
		return nil, fmt.Errorf("watcher: change callback is required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(opts.Path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(opts.Path), err)
	}

	return &Watcher{
		path:     opts.Path,
		onChange: opts.OnChange,
		debounce: opts.Debounce,
		logger:   opts.Logger,
		fsw:      fsw,
	}, nil
}

// Start blocks, dispatching debounced change callbacks until the context
// is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if w.logger != nil {
				w.logger.Debug("library file changed", "op", event.Op.String())
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.onChange()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if w.logger != nil {
				w.logger.Warn("watcher error", "error", err)
			}
		}
	}
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
