package assets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/meshbridge/bridge/core"
)

// Watcher observes the exchange locations and reports when a geometry file
// has been written there and has settled for the debounce period.
type Watcher struct {
	ext      string
	debounce time.Duration

	mutex   sync.Mutex
	pending map[string]time.Time

	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewWatcher(ext string, debounce time.Duration) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		ext:      normalizeExt(ext),
		debounce: debounce,
		pending:  make(map[string]time.Time),
		fsnotify: fsWatch,
	}, nil
}

// Add starts watching the named directory (non-recursively). Missing
// directories are created so the external tool has somewhere to write.
func (w *Watcher) Add(dir string) error {
	if w.isClosed {
		return errors.New("watcher already closed")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return w.fsnotify.Add(dir)
}

// Run blocks until ctx is cancelled, calling onReady once for every burst of
// writes to a matching file. onReady runs on the watcher goroutine, so a
// slow handler delays the next notification rather than overlapping it.
func (w *Watcher) Run(ctx context.Context, onReady func(path string)) error {
	defer w.Close()

	tick := time.NewTicker(w.tickInterval())
	defer tick.Stop()

	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return nil
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 && w.matches(e.Name) {
				w.touch(e.Name)
			}
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.forget(e.Name)
			}

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return nil
			}
			core.LogError("%v", err)

		case now := <-tick.C:
			for _, path := range w.settled(now) {
				onReady(path)
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops watching. Run closes the watcher itself when it returns.
func (w *Watcher) Close() error {
	if w.isClosed {
		return nil
	}
	w.isClosed = true
	return w.fsnotify.Close()
}

func (w *Watcher) matches(path string) bool {
	return strings.EqualFold(filepath.Ext(path), w.ext)
}

func (w *Watcher) touch(path string) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.pending[path] = time.Now()
}

func (w *Watcher) forget(path string) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	delete(w.pending, path)
}

// settled removes and returns every pending path untouched for the debounce period.
func (w *Watcher) settled(now time.Time) []string {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	return ready
}

func (w *Watcher) tickInterval() time.Duration {
	if w.debounce <= 0 {
		return 50 * time.Millisecond
	}
	return max(w.debounce/4, 10*time.Millisecond)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
