package fleet

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/seaguardian/seaguardian/internal/model"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher reloads the registry file on change and upserts it into the store.
type Watcher struct {
	path     string
	store    model.FleetWriter
	log      *zap.Logger
	debounce time.Duration

	mu      sync.Mutex
	reloads int
	lastErr error
}

// NewWatcher returns a watcher for path. Call Sync once before Run to seed the store.
func NewWatcher(path string, store model.FleetWriter, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:     filepath.Clean(path),
		store:    store,
		log:      logger,
		debounce: defaultDebounce,
	}
}

// Sync loads the registry and upserts every vessel.
func (w *Watcher) Sync(ctx context.Context) error {
	vessels, err := Load(w.path)
	if err == nil {
		err = w.store.UpsertVessels(ctx, vessels)
	}

	w.mu.Lock()
	w.reloads++
	w.lastErr = err
	w.mu.Unlock()

	if err != nil {
		return err
	}
	w.log.Info("fleet: registry loaded", zap.String("path", w.path), zap.Int("vessels", len(vessels)))
	return nil
}

// Reloads reports how many syncs ran and the error of the last one.
func (w *Watcher) Reloads() (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads, w.lastErr
}

// Run watches the registry's directory until ctx is done. Editors replace
// files by rename, so the directory is watched and events are filtered by name.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	w.log.Debug("fleet: watching registry", zap.String("path", w.path))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("fleet: watcher error", zap.Error(err))

		case <-timer.C:
			if err := w.Sync(ctx); err != nil {
				// Keep the previous fleet; a half-written file must not clear it.
				w.log.Warn("fleet: reload failed", zap.Error(err))
			}
		}
	}
}
