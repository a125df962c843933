package content

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay coalesces the burst of events an editor emits on save.
const reloadDelay = 100 * time.Millisecond

// Source owns the current Library and swaps it on reload.
type Source struct {
	fsys   fs.FS
	dir    string
	logger *slog.Logger

	mu  sync.RWMutex
	lib *Library
}

// NewSource loads the content tree in dir, or the embedded tree when dir
// is empty.
func NewSource(dir string, logger *slog.Logger) (*Source, error) {
	fsys := Embedded()
	if dir != "" {
		fsys = os.DirFS(dir)
	}
	lib, err := Load(fsys)
	if err != nil {
		return nil, err
	}
	return &Source{fsys: fsys, dir: dir, logger: logger, lib: lib}, nil
}

// Library returns the current snapshot.
func (s *Source) Library() *Library {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lib
}

// FS returns the content tree, for serving assets.
func (s *Source) FS() fs.FS {
	return s.fsys
}

// Reload re-reads the content tree. On failure the previous snapshot is
// kept.
func (s *Source) Reload() error {
	lib, err := Load(s.fsys)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.lib = lib
	s.mu.Unlock()
	return nil
}

// Watch reloads the content tree whenever a file in it changes, until ctx
// is cancelled. It needs an on-disk tree.
func (s *Source) Watch(ctx context.Context) error {
	if s.dir == "" {
		return fmt.Errorf("cannot watch the embedded content tree")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	for _, d := range []string{s.dir, filepath.Join(s.dir, "blog")} {
		if err := watcher.Add(d); err != nil && d == s.dir {
			return fmt.Errorf("failed to watch %s: %w", d, err)
		}
	}
	s.logger.Info("watching content", "dir", s.dir)

	timer := time.NewTimer(reloadDelay)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			s.logger.Debug("content changed", "path", event.Name, "op", event.Op.String())
			timer.Reset(reloadDelay)
		case <-timer.C:
			if err := s.Reload(); err != nil {
				s.logger.Warn("content reload failed", "error", err)
				continue
			}
			s.logger.Info("content reloaded", "posts", len(s.Library().posts))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watch error", "error", err)
		}
	}
}
