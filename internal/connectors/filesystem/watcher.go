package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/knowbase/internal/core/domain"
	"github.com/custodia-labs/knowbase/internal/core/ports/driven"
	"github.com/custodia-labs/knowbase/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.DirectoryWatcher = (*Watcher)(nil)

// DefaultSettle is how long a file must be quiet before its event is emitted.
const DefaultSettle = 500 * time.Millisecond

// Watcher reports settled file changes using fsnotify.
// Bursts of events for one path are coalesced so a file that is still
// being written is reported once, after it goes quiet.
type Watcher struct {
	settle time.Duration
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithSettle sets the quiet period before an event is emitted.
func WithSettle(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// NewWatcher creates a new directory watcher.
func NewWatcher(opts ...WatcherOption) *Watcher {
	w := &Watcher{settle: DefaultSettle}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch starts watching dir (not its subdirectories).
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan domain.FileEvent, error) {
	root, err := checkDir(dir)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fw.Add(root); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	logger.Debug("Watching %s", root)

	events := make(chan domain.FileEvent, 100)
	settle := w.settle

	go func() {
		defer close(events)
		defer fw.Close()

		pending := newPendingSet(settle)
		ticker := time.NewTicker(max(settle/5, 10*time.Millisecond))
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if fe := handleFsEvent(event); fe != nil {
					pending.add(*fe, time.Now())
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				logger.Warn("Watcher error on %s: %v", root, err)
			case now := <-ticker.C:
				for _, fe := range pending.due(now) {
					select {
					case events <- fe:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return events, nil
}

// handleFsEvent maps an fsnotify event to a file event.
// Returns nil for events that should be ignored.
func handleFsEvent(event fsnotify.Event) *domain.FileEvent {
	if isHidden(filepath.Base(event.Name)) {
		return nil
	}

	var op domain.FileOp
	switch {
	case event.Has(fsnotify.Create):
		op = domain.FileCreated
	case event.Has(fsnotify.Write):
		op = domain.FileUpdated
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		op = domain.FileDeleted
	default:
		return nil
	}

	if op != domain.FileDeleted {
		info, err := os.Stat(event.Name)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
	}
	return &domain.FileEvent{Path: event.Name, Op: op}
}

// pendingSet holds the latest event per path until the path settles.
type pendingSet struct {
	settle time.Duration
	events map[string]pendingEvent
}

type pendingEvent struct {
	event    domain.FileEvent
	lastSeen time.Time
}

func newPendingSet(settle time.Duration) *pendingSet {
	return &pendingSet{
		settle: settle,
		events: make(map[string]pendingEvent),
	}
}

// add records an event and restarts the quiet period for its path.
func (s *pendingSet) add(fe domain.FileEvent, now time.Time) {
	if p, ok := s.events[fe.Path]; ok {
		fe.Op = merge(p.event.Op, fe.Op)
	}
	s.events[fe.Path] = pendingEvent{event: fe, lastSeen: now}
}

// due removes and returns the events quiet for at least the settle
// period, ordered by path.
func (s *pendingSet) due(now time.Time) []domain.FileEvent {
	var ready []domain.FileEvent
	for path, p := range s.events {
		if now.Sub(p.lastSeen) >= s.settle {
			ready = append(ready, p.event)
			delete(s.events, path)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i].Path < ready[j].Path })
	return ready
}

// merge folds a newer operation into a pending one. A file created and
// then written is still new; anything followed by a delete is gone.
func merge(pending, next domain.FileOp) domain.FileOp {
	switch {
	case next == domain.FileDeleted:
		return domain.FileDeleted
	case pending == domain.FileCreated:
		return domain.FileCreated
	case pending == domain.FileDeleted:
		// Deleted then recreated.
		return domain.FileCreated
	default:
		return next
	}
}
