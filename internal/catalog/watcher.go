package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a scheme override file into a Store whenever the file
// changes. Invalid files are logged and the previous snapshot is kept.
type Watcher struct {
	store    *Store
	path     string
	debounce time.Duration
	// reloaded is signalled after every reload attempt; used by tests.
	reloaded func(version int64, err error)
}

// NewWatcher returns a watcher for path feeding store.
func NewWatcher(store *Store, path string) *Watcher {
	return &Watcher{store: store, path: filepath.Clean(path), debounce: 250 * time.Millisecond}
}

// Load reads the override file once and installs it.
func (w *Watcher) Load() (int64, error) {
	schemes, err := LoadSchemesFile(w.path)
	if err != nil {
		return 0, err
	}
	return w.store.Replace(schemes), nil
}

// Run watches the override file until ctx is cancelled. The parent directory is
// watched so editors that replace the file by rename are picked up.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("catalog watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("catalog watcher: watch %s: %w", filepath.Dir(w.path), err)
	}
	logger.Info("catalog: watching override file", slog.String("path", w.path))

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
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
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
			logger.Error("catalog: watcher error", slog.Any("error", err))

		case <-fire:
			fire = nil
			version, err := w.Load()
			if err != nil {
				logger.Warn("catalog: override file rejected, keeping previous catalog", slog.String("path", w.path), slog.Any("error", err))
			} else {
				logger.Info("catalog: reloaded", slog.Int64("version", version))
			}
			if w.reloaded != nil {
				w.reloaded(version, err)
			}
		}
	}
}
