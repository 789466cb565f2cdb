package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 250 * time.Millisecond

// ConfigWatcher calls a reload function when one of the configuration files
// changes. Directories are watched rather than files so that editors that
// replace the file on save are seen too.
type ConfigWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	reload   func()
	log      *slog.Logger

	mu    sync.Mutex
	files map[string]bool
	dirs  map[string]bool
}

func NewConfigWatcher(reload func(), logger *slog.Logger) (*ConfigWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigWatcher{
		watcher:  w,
		debounce: defaultDebounce,
		reload:   reload,
		log:      logger,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
	}, nil
}

// SetFiles replaces the watched files, typically with LoadResult.Files
// plus the main config path.
func (cw *ConfigWatcher) SetFiles(files []string) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	wantDirs := make(map[string]bool)
	cw.files = make(map[string]bool, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		cw.files[abs] = true
		wantDirs[filepath.Dir(abs)] = true
	}
	for dir := range cw.dirs {
		if !wantDirs[dir] {
			cw.watcher.Remove(dir)
			delete(cw.dirs, dir)
		}
	}
	for dir := range wantDirs {
		if cw.dirs[dir] {
			continue
		}
		if err := cw.watcher.Add(dir); err != nil {
			// the directory may not exist until the user writes a config
			cw.log.Debug("not watching config directory", "dir", dir, "error", err)
			continue
		}
		cw.dirs[dir] = true
	}
	return nil
}

func (cw *ConfigWatcher) watched(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.files[abs]
}

// Run delivers reloads until ctx is cancelled. Bursts of events within the
// debounce window cause one reload.
func (cw *ConfigWatcher) Run(ctx context.Context) {
	defer cw.watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if !cw.watched(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			cw.log.Debug("config file changed", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(cw.debounce)
			} else {
				timer.Reset(cw.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			cw.reload()
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.log.Warn("config watcher error", "error", err)
		}
	}
}
