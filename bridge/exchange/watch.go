package exchange

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/spaghettifunk/meshbridge/bridge/assets"
	"github.com/spaghettifunk/meshbridge/bridge/core"
)

// Watch runs Import whenever the primary file, or a geometry file in the
// fallback folder, stops being written for the configured debounce. Other
// files in the primary file's directory, such as exports, are ignored. Each summary goes to onNotice, or to the log when it is nil.
// Watch returns nil once ctx is cancelled.
func (c *Coordinator) Watch(ctx context.Context, onNotice func(Notice, BatchOutcome)) error {
	w, err := assets.NewWatcher(c.cfg.FileExtension, c.cfg.WatchDebounce)
	if err != nil {
		return err
	}

	dirs := map[string]struct{}{}
	if c.cfg.PrimaryPath != "" {
		dirs[filepath.Dir(c.cfg.PrimaryPath)] = struct{}{}
	}
	if c.cfg.FallbackFolder != "" {
		dirs[c.cfg.FallbackFolder] = struct{}{}
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return err
		}
		core.LogInfo("Watching %s for %s files", dir, c.cfg.FileExtension)
	}

	err = w.Run(ctx, func(path string) {
		if !c.isExchangeFile(path) {
			core.LogDebug("ignoring %s: not an exchange file", path)
			return
		}
		core.LogDebug("exchange file settled: %s", path)
		notice, outcome := c.Import()
		if onNotice != nil {
			onNotice(notice, outcome)
			return
		}
		notice.Log()
	})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// isExchangeFile reports whether path is the primary file or sits directly
// in the fallback folder.
func (c *Coordinator) isExchangeFile(path string) bool {
	path = absPath(path)
	if c.cfg.PrimaryPath != "" && path == absPath(c.cfg.PrimaryPath) {
		return true
	}
	return c.cfg.FallbackFolder != "" && filepath.Dir(path) == absPath(c.cfg.FallbackFolder)
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
