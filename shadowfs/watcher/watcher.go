// Package watcher turns filesystem change notifications into full
// rescan-and-rebuild cycles. The virtual-layer core has no incremental
// maintenance path, so the watcher never patches indexes: it only decides
// when to run the next complete ScanSources + RebuildIndexes pass.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RescanFunc runs one full scan + rebuild cycle.
type RescanFunc func(ctx context.Context) error

// Config tunes event debouncing.
type Config struct {
	Debounce time.Duration // quiet period before a rescan fires
	MaxDelay time.Duration // cap on how long a busy burst can defer it
}

// Watcher wires fsnotify into a debounced rescan callback. Directories
// created under a watched root are added to the watch set as they appear.
type Watcher struct {
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
	rescan    RescanFunc

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a watcher that invokes rescan after debounced change bursts.
func New(cfg Config, rescan RescanFunc) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fsw:    fsw,
		rescan: rescan,
	}
	w.debouncer = NewDebouncer(cfg.Debounce, cfg.MaxDelay, w.runRescan)
	return w, nil
}

// Start watches every root recursively and begins processing events. The
// context bounds both the event loop and each triggered rescan.
func (w *Watcher) Start(ctx context.Context, roots []string) error {
	w.ctx, w.cancel = context.WithCancel(ctx)

	for _, root := range roots {
		if err := w.addRecursive(root); err != nil {
			slog.Warn("failed to watch root", "path", root, "error", err)
			continue
		}
	}

	w.wg.Add(1)
	go w.loop()

	slog.Info("watcher started", "roots", len(roots))
	return nil
}

// Close stops the event loop and releases the underlying watcher.
func (w *Watcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	w.debouncer.Stop()
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
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
			slog.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	slog.Debug("filesystem event", "op", event.Op.String(), "path", event.Name)

	// New directories must join the watch set before their contents start
	// producing events.
	if event.Op.Has(fsnotify.Create) {
		if err := w.addRecursive(event.Name); err != nil {
			slog.Debug("could not extend watch", "path", event.Name, "error", err)
		}
	}

	w.debouncer.Trigger()
}

func (w *Watcher) runRescan() {
	if w.ctx.Err() != nil {
		return
	}
	if err := w.rescan(w.ctx); err != nil {
		slog.Error("rescan failed", "error", err)
	}
}

// addRecursive registers path and every directory below it. Non-directories
// are ignored without error so Create events for plain files are cheap.
func (w *Watcher) addRecursive(path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Debug("skipping unwatchable path", "path", p, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(p); err != nil {
			slog.Warn("failed to add watch", "path", p, "error", err)
		}
		return nil
	})
}
