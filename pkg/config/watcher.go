package config

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounceDelay = 100 * time.Millisecond

// Watcher hot-reloads the JSON config file on write/create/remove events,
// debounced the way the teacher's cmd.ConfigManager.watch debounces YAML
// reloads, and invokes onReload with the freshly loaded Config.
type Watcher struct {
	mu            sync.Mutex
	path          string
	logger        *slog.Logger
	onReload      func(*Config)
	watcher       *fsnotify.Watcher
	debounceTimer *time.Timer
	closeChan     chan struct{}
}

// NewWatcher starts watching path for changes, invoking onReload each time
// a reload succeeds. A nil logger defaults to slog.Default().
func NewWatcher(path string, logger *slog.Logger, onReload func(*Config)) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}
	if err := fw.Add(path); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch config file %s: %w", path, err)
	}

	w := &Watcher{
		path:      path,
		logger:    logger,
		onReload:  onReload,
		watcher:   fw,
		closeChan: make(chan struct{}),
	}
	go w.watch()
	return w, nil
}

func (w *Watcher) watch() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) {
				w.logger.Info("config.file_changed", "path", event.Name)
				w.mu.Lock()
				if w.debounceTimer != nil {
					w.debounceTimer.Stop()
				}
				w.debounceTimer = time.AfterFunc(watchDebounceDelay, w.reload)
				w.mu.Unlock()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config.watcher_error", "error", err)
		case <-w.closeChan:
			return
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Error("config.reload_failed", "path", w.path, "error", err)
		return
	}
	w.logger.Info("config.reloaded", "path", w.path, "sources", len(cfg.Sources))
	w.onReload(cfg)
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.closeChan)
	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
