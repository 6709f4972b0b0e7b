// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package watch re-runs work when a single input file changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrStopped is returned by Start after Stop; a watcher is not restartable.
var ErrStopped = errors.New("watch: watcher stopped")

// Op is the kind of change seen on the watched file.
type Op int

const (
	// OpCreate indicates the file was created or replaced by a rename.
	OpCreate Op = iota

	// OpWrite indicates the file was modified in place.
	OpWrite

	// OpRemove indicates the file was deleted or renamed away.
	OpRemove
)

// String returns the string representation of the operation.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Change is the last change in a debounce window.
type Change struct {
	// Path is the absolute path of the watched file.
	Path string

	// Op is the kind of the last event in the window.
	Op Op

	// Events is how many raw events the window collapsed.
	Events int

	// Time is when the last event was seen.
	Time time.Time
}

// Handler is called once per debounce window while the file exists.
type Handler func(ctx context.Context, change Change)

// Options configures a Watcher.
type Options struct {
	// Debounce is how long the file must stay quiet before Handler runs.
	// Default: 250ms
	Debounce time.Duration

	// Logger receives watcher diagnostics. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		Debounce: 250 * time.Millisecond,
		Logger:   slog.Default(),
	}
}

// Watcher watches one file and calls a Handler after changes settle.
//
// # Description
//
// The parent directory is watched rather than the file itself so editors
// that save by writing a temp file and renaming it over the original keep
// triggering. Events for other files in the directory are ignored.
//
// Events are collected until Debounce passes without a new one; then the
// handler runs once. A window that ends with the file missing is dropped.
//
// # Thread Safety
//
// Safe for concurrent use. The handler is called from a single goroutine,
// so runs never overlap.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher // nil until Start; guarded by mu
	handler  Handler
	debounce time.Duration
	logger   *slog.Logger

	changes  chan Change
	done     chan struct{}
	stopOnce sync.Once

	mu       sync.RWMutex
	watching bool
}

// New creates a watcher for path.
//
// # Inputs
//
//   - path: File to watch. Its directory must exist.
//   - handler: Called after each debounced change. Must not be nil.
//   - opts: Optional configuration (nil uses defaults).
//
// # Outputs
//
//   - *Watcher: Ready-to-use watcher (call Start or Run). No OS watch is
//     held until Start, so an unused Watcher needs no cleanup.
//   - error: Non-nil if the handler is nil or the directory is missing.
//
// # Example
//
//	w, err := watch.New("case.txt", func(ctx context.Context, c watch.Change) {
//	    report, err := svc.Analyze(ctx, ...)
//	}, nil)
//	if err != nil {
//	    return err
//	}
//	return w.Run(ctx)
func New(path string, handler Handler, opts *Options) (*Watcher, error) {
	if handler == nil {
		return nil, fmt.Errorf("watch %s: nil handler", path)
	}
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultOptions().Debounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if info, err := os.Stat(filepath.Dir(abs)); err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("watch %s: parent is not a directory", path)
	}

	return &Watcher{
		path:     abs,
		handler:  handler,
		debounce: debounce,
		logger:   logger.With("path", abs),
		changes:  make(chan Change, 64),
		done:     make(chan struct{}),
	}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Start begins watching. It returns immediately; the handler runs on a
// background goroutine until ctx is canceled or Stop is called. The
// fsnotify watch is opened here and released by Stop.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watching {
		return nil
	}
	select {
	case <-w.done:
		return ErrStopped
	default:
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.path, err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return fmt.Errorf("watch %s: %w", w.path, err)
	}
	w.watcher = fw
	w.watching = true

	go w.processEvents(ctx, fw)
	go w.debounceLoop(ctx)

	w.logger.Debug("watching", "debounce", w.debounce)
	return nil
}

// Run starts the watcher and blocks until ctx is canceled or Stop is
// called. It always stops the watcher before returning.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	select {
	case <-ctx.Done():
	case <-w.done:
	}
	return nil
}

// Stop stops the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)

		w.mu.Lock()
		if w.watcher != nil {
			_ = w.watcher.Close()
		}
		w.watching = false
		w.mu.Unlock()
	})
}

// IsWatching returns true if the watcher is currently active.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.watching
}

// processEvents filters fsnotify events down to the watched file.
func (w *Watcher) processEvents(ctx context.Context, fw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op == fsnotify.Chmod {
				continue
			}

			change := Change{Path: w.path, Op: convertOp(event.Op), Events: 1, Time: time.Now()}
			select {
			case w.changes <- change:
			default:
				// The debouncer is behind; one pending change is enough.
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func convertOp(op fsnotify.Op) Op {
	switch {
	case op.Has(fsnotify.Create):
		return OpCreate
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return OpRemove
	default:
		return OpWrite
	}
}

// debounceLoop collapses bursts of changes into one handler call.
func (w *Watcher) debounceLoop(ctx context.Context) {
	var pending *Change
	var timer *time.Timer
	var timerC <-chan time.Time

	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}
	defer stopTimer()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case change := <-w.changes:
			if pending != nil {
				change.Events += pending.Events
			}
			pending = &change

			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			stopTimer()
			change := *pending
			pending = nil

			if _, err := os.Stat(w.path); err != nil {
				w.logger.Debug("watched file missing, skipping", "op", change.Op.String())
				continue
			}
			w.logger.Debug("change settled", "op", change.Op.String(), "events", change.Events)
			w.handler(ctx, change)
		}
	}
}
