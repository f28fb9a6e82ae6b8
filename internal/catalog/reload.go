package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ppiankov/protectwatch/internal/metrics"
)

type snapshot struct {
	cat  *Catalog
	hash string
}

// Holder publishes the current catalog to concurrent readers.
// Readers always see a complete catalog; a reload swaps the whole value.
type Holder struct {
	path   string
	static bool
	cur    atomic.Pointer[snapshot]
}

// NewHolder loads the catalog at path (see LoadWithHash) and holds it.
func NewHolder(path string) (*Holder, error) {
	cat, hash, err := LoadWithHash(path)
	if err != nil {
		return nil, err
	}
	h := &Holder{path: path}
	h.cur.Store(&snapshot{cat: cat, hash: hash})
	return h, nil
}

// StaticHolder holds a fixed catalog. Reload is a no-op.
func StaticHolder(cat *Catalog) *Holder {
	h := &Holder{static: true}
	h.cur.Store(&snapshot{cat: cat, hash: hashOf(nil)})
	return h
}

// Catalog returns the current catalog.
func (h *Holder) Catalog() *Catalog { return h.cur.Load().cat }

// Hash returns the hash of the file the current catalog was loaded from.
func (h *Holder) Hash() string { return h.cur.Load().hash }

// Path returns the resolved catalog path, or "" for a static holder.
func (h *Holder) Path() string {
	if h.static {
		return ""
	}
	if h.path == "" {
		return DefaultPath()
	}
	return h.path
}

// Reload re-reads the catalog file. On error the current catalog is kept.
func (h *Holder) Reload() error {
	if h.static {
		return nil
	}
	cat, hash, err := LoadWithHash(h.path)
	if err != nil {
		return err
	}
	h.cur.Store(&snapshot{cat: cat, hash: hash})
	return nil
}

// Watcher reloads a Holder when its catalog file changes.
type Watcher struct {
	watcher *fsnotify.Watcher
	holder  *Holder
	logger  *zap.Logger
	name    string
	delay   time.Duration
}

// NewWatcher watches the directory holding the catalog file, so a file created
// later or replaced by rename is still picked up. A missing directory is not watched.
func NewWatcher(holder *Holder, logger *zap.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	var name string
	if p := holder.Path(); p != "" {
		dir := filepath.Dir(p)
		name = filepath.Base(p)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			if err := w.Add(dir); err != nil {
				w.Close()
				return nil, fmt.Errorf("failed to watch %q: %w", dir, err)
			}
		} else {
			logger.Debug("catalog directory missing, not watching", zap.String("dir", dir))
		}
	}

	return &Watcher{
		watcher: w,
		holder:  holder,
		logger:  logger,
		name:    name,
		delay:   500 * time.Millisecond,
	}, nil
}

// Run watches for file changes and reloads the catalog. Blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	// Debounce: wait after the last event before reloading
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.name == "" || filepath.Base(event.Name) != w.name {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(w.delay, w.reload)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("catalog watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	err := w.holder.Reload()
	metrics.ObserveReload(err)
	if err != nil {
		w.logger.Error("catalog reload failed, keeping previous catalog", zap.Error(err))
		return
	}
	w.logger.Info("catalog reloaded", zap.String("hash", w.holder.Hash()))
}
