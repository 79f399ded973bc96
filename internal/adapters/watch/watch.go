// Package watch reloads the preview when the document file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/3-lines-studio/studio/internal/logx"
)

const DefaultDebounce = 100 * time.Millisecond

// FileWatcher calls OnChange once per burst of writes to a single file.
// The parent directory is watched so editors that save by rename are seen.
type FileWatcher struct {
	path     string
	debounce time.Duration
	onChange func(ctx context.Context) error
}

func NewFileWatcher(path string, onChange func(ctx context.Context) error) *FileWatcher {
	return &FileWatcher{path: filepath.Clean(path), debounce: DefaultDebounce, onChange: onChange}
}

func (w *FileWatcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

func isWatchEvent(op fsnotify.Op) bool {
	return op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0
}

// Run blocks until ctx is done or the watcher fails.
func (w *FileWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	log := logx.Ctx(ctx).With("path", w.path)
	log.Info("watching document")

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path || !isWatchEvent(event.Op) {
				continue
			}
			log.Debug("document event", "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := w.onChange(ctx); err != nil {
				log.Warn("reload failed", "err", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "err", err)
		}
	}
}
