package config

import (
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the settings file and reloads the Store when it changes.
// Changes are debounced (300ms) to avoid rapid reloads while an editor or
// the settings UI is still writing.
type Watcher struct {
	store    *Store
	watcher  *fsnotify.Watcher
	debounce time.Duration
	stopChan chan struct{}
}

// NewWatcher creates a settings file watcher bound to the store.
func NewWatcher(store *Store) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		store:    store,
		watcher:  w,
		debounce: 300 * time.Millisecond,
	}, nil
}

// Start begins watching the store's settings file for changes.
func (sw *Watcher) Start() error {
	if err := sw.watcher.Add(sw.store.Path()); err != nil {
		return err
	}
	sw.stopChan = make(chan struct{})
	go sw.watchLoop()

	slog.Info("settings watcher started", "path", sw.store.Path())
	return nil
}

// Stop halts the file watcher.
func (sw *Watcher) Stop() {
	if sw.stopChan != nil {
		close(sw.stopChan)
	}
	sw.watcher.Close()
	slog.Info("settings watcher stopped")
}

func (sw *Watcher) watchLoop() {
	var debounceTimer *time.Timer

	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(sw.debounce, func() {
				if err := sw.store.Reload(); err != nil {
					slog.Error("settings reload failed", "error", err)
					return
				}
				slog.Info("settings reloaded", "path", sw.store.Path())
			})

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("settings watcher error", "error", err)

		case <-sw.stopChan:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return
		}
	}
}
