package app

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/wow/pkg/log"
)

// DefaultWatchDebounce coalesces bursts of events from one state flush.
const DefaultWatchDebounce = 100 * time.Millisecond

// StateWatcher signals when the state file is rewritten by another process.
// It watches the parent directory because flushes replace the file by rename.
type StateWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	logger   log.Logger
	changes  chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// NewStateWatcher starts watching the directory of path.
func NewStateWatcher(path string, debounce time.Duration, logger log.Logger) (*StateWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	return &StateWatcher{
		watcher:  w,
		path:     filepath.Clean(path),
		debounce: debounce,
		logger:   logger,
		changes:  make(chan struct{}, 1),
	}, nil
}

// Changes delivers at most one pending notification at a time.
func (s *StateWatcher) Changes() <-chan struct{} {
	return s.changes
}

// Run forwards debounced events until ctx is done or the watcher is closed.
func (s *StateWatcher) Run(ctx context.Context) {
	defer s.stopTimer()
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			s.schedule()

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("state watcher error", log.Err(err))
		}
	}
}

// Close releases the underlying watcher.
func (s *StateWatcher) Close() error {
	return s.watcher.Close()
}

func (s *StateWatcher) schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.notify)
}

func (s *StateWatcher) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

func (s *StateWatcher) stopTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
}
