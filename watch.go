package pubsite

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits for a burst of file events
// to settle before rebuilding.
const DefaultDebounce = 500 * time.Millisecond

// WithWatchDebounce overrides DefaultDebounce.
func WithWatchDebounce(d time.Duration) Option {
	return func(s *Site) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithRebuildHook is called after every watch-triggered rebuild.
func WithRebuildHook(fn func(BuildReport, error)) Option {
	return func(s *Site) {
		s.onRebuild = fn
	}
}

func (s *Site) watchRoots() []string {
	return []string{s.Config.ContentDir, s.Config.DataDir, s.Config.StaticDir}
}

// Watch rebuilds the site whenever a file under the content, data or static
// directory changes. Bursts of events are coalesced. Build failures are
// logged and the watcher keeps running. Watch returns when ctx is done.
func (s *Site) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, root := range s.watchRoots() {
		if err := addTree(w, root); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	debounce := s.debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
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
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ignoreEvent(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := addTree(w, ev.Name); err != nil {
						s.log.Warn("watch directory", zap.String("path", ev.Name), zap.Error(err))
					}
				}
			}
			s.log.Debug("change detected", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("watcher error", zap.Error(err))
		case <-fire:
			fire = nil
			report, err := s.Build(ctx)
			if err != nil {
				s.log.Error("rebuild failed", zap.Error(err))
			}
			if s.onRebuild != nil {
				s.onRebuild(report, err)
			}
		}
	}
}

// addTree watches root and every directory below it.
func addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.Add(path)
	})
}

func ignoreEvent(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return true
	}
	base := filepath.Base(ev.Name)
	return strings.HasPrefix(base, ".#") ||
		strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".tmp")
}
