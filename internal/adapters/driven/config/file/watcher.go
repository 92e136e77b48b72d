package file

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/drawsync/internal/logger"
)

// defaultDebounce collapses the burst of events an editor save produces.
const defaultDebounce = 200 * time.Millisecond

// Watcher reloads a ConfigStore whenever its file changes and notifies a
// callback after each successful reload.
type Watcher struct {
	store    *ConfigStore
	onChange func()
	debounce time.Duration
}

// NewWatcher creates a watcher for store. onChange may be nil.
func NewWatcher(store *ConfigStore, onChange func()) *Watcher {
	return &Watcher{
		store:    store,
		onChange: onChange,
		debounce: defaultDebounce,
	}
}

// Run watches until ctx is cancelled.
// The parent directory is watched so that atomic rename saves are seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	path := filepath.Clean(w.store.Path())
	if err := fw.Add(filepath.Dir(path)); err != nil {
		return err
	}

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("config: %s %s", event.Op, event.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config: watch error: %v", err)

		case <-fire:
			fire = nil
			if err := w.store.Load(); err != nil {
				logger.Warn("config: reload failed, keeping previous values: %v", err)
				continue
			}
			logger.Info("Reloaded configuration from %s", path)
			if w.onChange != nil {
				w.onChange()
			}
		}
	}
}
