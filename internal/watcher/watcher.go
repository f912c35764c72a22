// Package watcher reports changes to a fixed set of files. It listens for
// fsnotify events on the files' directories and also polls modification
// times, so edits on filesystems without inotify support are still seen.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeFunc is called once per debounced batch with the changed paths.
type ChangeFunc func(ctx context.Context, changed []string) error

// fileState is what polling compares between ticks.
type fileState struct {
	modTime time.Time
	size    int64
	exists  bool
}

func (a fileState) same(b fileState) bool {
	return a.exists == b.exists && a.size == b.size && a.modTime.Equal(b.modTime)
}

// Service watches files and calls a ChangeFunc when any of them changes.
type Service struct {
	onChange     ChangeFunc
	logger       *slog.Logger
	debounce     time.Duration
	pollInterval time.Duration

	mu      sync.Mutex
	files   map[string]fileState // absolute path -> last seen state
	pending map[string]struct{}
}

// NewService creates a watcher for paths. Empty paths are ignored.
func NewService(onChange ChangeFunc, logger *slog.Logger, paths ...string) *Service {
	s := &Service{
		onChange:     onChange,
		logger:       logger.With("component", "file-watcher"),
		debounce:     500 * time.Millisecond,
		pollInterval: 2 * time.Second,
		files:        make(map[string]fileState),
		pending:      make(map[string]struct{}),
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = filepath.Clean(p)
		}
		s.files[abs] = stat(abs)
	}
	return s
}

// SetDebounce overrides the default debounce interval (for testing).
func (s *Service) SetDebounce(d time.Duration) {
	s.debounce = d
}

// SetPollInterval overrides the default poll interval (for testing).
func (s *Service) SetPollInterval(d time.Duration) {
	s.pollInterval = d
}

// Paths returns the watched files in sorted order.
func (s *Service) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// Start blocks until ctx is canceled. If fsnotify is unavailable the
// service still runs on polling alone.
func (s *Service) Start(ctx context.Context) {
	var eventCh <-chan fsnotify.Event
	var errCh <-chan error

	w, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Warn("fsnotify unavailable, running poll-only", "error", err)
	} else {
		defer w.Close() //nolint:errcheck
		for _, dir := range s.dirs() {
			if err := w.Add(dir); err != nil {
				s.logger.Warn("failed to watch directory", "path", dir, "error", err)
				continue
			}
			s.logger.Debug("watching directory", "path", dir)
		}
		eventCh = w.Events
		errCh = w.Errors
	}

	pollTicker := time.NewTicker(s.pollInterval)
	defer pollTicker.Stop()

	// Starts stopped; reset on each change.
	debounceTimer := time.NewTimer(0)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-eventCh:
			if !ok {
				eventCh = nil
				continue
			}
			if s.handleFSEvent(ev) {
				resetTimer(debounceTimer, s.debounce)
			}

		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			s.logger.Error("fsnotify error", "error", err)

		case <-pollTicker.C:
			if s.poll() {
				resetTimer(debounceTimer, s.debounce)
			}

		case <-debounceTimer.C:
			changed := s.takePending()
			if len(changed) == 0 {
				continue
			}
			s.logger.Info("watched files changed", "paths", changed)
			if err := s.onChange(ctx, changed); err != nil {
				s.logger.Error("change handler failed", "error", err)
			}
		}
	}
}

// handleFSEvent marks a watched file pending when the event concerns it.
// Editors often replace files by rename, so every op except chmod counts.
func (s *Service) handleFSEvent(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	name, err := filepath.Abs(ev.Name)
	if err != nil {
		name = filepath.Clean(ev.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[name]; !ok {
		return false
	}
	s.files[name] = stat(name)
	s.pending[name] = struct{}{}
	return true
}

// poll compares every watched file against its last seen state.
func (s *Service) poll() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for path, prev := range s.files {
		cur := stat(path)
		if cur.same(prev) {
			continue
		}
		s.files[path] = cur
		s.pending[path] = struct{}{}
		changed = true
	}
	return changed
}

func (s *Service) takePending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := make([]string, 0, len(s.pending))
	for p := range s.pending {
		changed = append(changed, p)
	}
	clear(s.pending)
	slices.Sort(changed)
	return changed
}

func (s *Service) dirs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var dirs []string
	for p := range s.files {
		d := filepath.Dir(p)
		if !slices.Contains(dirs, d) {
			dirs = append(dirs, d)
		}
	}
	slices.Sort(dirs)
	return dirs
}

func stat(path string) fileState {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}
	}
	return fileState{modTime: info.ModTime(), size: info.Size(), exists: true}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
