// Package watch monitors the ROM root for changes and coalesces bursts
// of filesystem events into single rescan triggers.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/romshelf/romshelf-builder/internal/scanner"
)

const defaultSettleDelay = 2 * time.Second

// Watcher wraps fsnotify with recursive directory registration and
// debouncing. Copying a multi-gigabyte ROM set produces thousands of
// events; the settle delay collapses them into one trigger once the
// tree goes quiet.
type Watcher struct {
	fsw    *fsnotify.Watcher
	logger *slog.Logger
	settle time.Duration

	mu    sync.Mutex
	timer *time.Timer

	triggers chan struct{}
}

// New creates a watcher. A settle of zero uses the default delay.
func New(logger *slog.Logger, settle time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if settle <= 0 {
		settle = defaultSettleDelay
	}
	return &Watcher{
		fsw:      fsw,
		logger:   logger,
		settle:   settle,
		triggers: make(chan struct{}, 1),
	}, nil
}

// Watch registers root and every directory beneath it.
func (w *Watcher) Watch(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			w.logger.Warn("failed to access path", "path", path, "error", err)
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Error("failed to add watch", "path", path, "error", err)
			return nil
		}
		w.logger.Debug("added watch", "path", path)
		return nil
	})
}

// Triggers delivers one signal per settled burst of changes.
func (w *Watcher) Triggers() <-chan struct{} {
	return w.triggers
}

// Run processes events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	// New directories join the watch set so nested drops are seen.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.Watch(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			w.arm()
			return
		}
	}

	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if !scanner.ValidExtension(filepath.Ext(event.Name)) {
		return
	}
	w.arm()
}

// arm (re)starts the settle timer; firing queues a trigger.
func (w *Watcher) arm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.settle, func() {
		select {
		case w.triggers <- struct{}{}:
		default:
		}
	})
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}
