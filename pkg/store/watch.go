package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType describes the nature of a persistence change notification.
type EventType int

const (
	// EventTaskChanged indicates the task with the given ID was added,
	// edited, or removed.
	EventTaskChanged EventType = iota

	// EventStateChanged indicates the settings or ordering documents changed.
	EventStateChanged

	// EventInvalidated signals that callers should reload everything.
	EventInvalidated
)

// Event is emitted by Persistence.Watch when underlying storage changes.
type Event struct {
	Type EventType
	ID   string
}

const watchDelay = 100 * time.Millisecond

// Watch streams change events for the owner's directory until ctx is
// cancelled. Callers should drain the returned channel; the channel is closed
// once ctx is done or the watcher fails.
func (p *persistence) Watch(ctx context.Context) (<-chan Event, error) {
	root := filepath.Join(p.basePath, p.owner)
	if err := os.MkdirAll(filepath.Join(root, tasksDir), 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure owner path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				slog.Warn("store: watcher close", "err", err)
			}
		})
	}

	dirs, err := collectDirs(root)
	if err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: enumerate directories: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("store: watch %s: %w", dir, err)
		}
	}

	events := make(chan Event, 64)

	go func() {
		// The throttle timer may still fire while the loop exits; closed
		// guards the channel against a late send.
		var mu sync.Mutex
		closed := false
		defer func() {
			mu.Lock()
			closed = true
			close(events)
			mu.Unlock()
		}()
		defer closeWatcher()

		send := func(ev Event) {
			mu.Lock()
			defer mu.Unlock()
			if closed {
				return
			}
			select {
			case events <- ev:
			default:
				// A slow consumer reloads on the next event anyway.
			}
		}

		throttle := newEventThrottle(watchDelay)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Debug("store: watcher error", "err", err)
				throttle.Enqueue(Event{Type: EventInvalidated}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&fsnotify.Create == fsnotify.Create {
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						if err := watcher.Add(evt.Name); err != nil {
							slog.Warn("store: watch", "dir", evt.Name, "err", err)
						}
						throttle.Enqueue(Event{Type: EventInvalidated}, send)
						continue
					}
				}
				throttle.Enqueue(p.eventForPath(root, evt.Name), send)
			}
		}
	}()

	return events, nil
}

// collectDirs walks base and returns all directories that should be watched.
func collectDirs(base string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

// eventForPath classifies a filesystem path below the owner directory.
func (p *persistence) eventForPath(root, path string) Event {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return Event{Type: EventInvalidated}
	}
	parts := strings.Split(rel, string(os.PathSeparator))
	switch {
	case len(parts) == 2 && parts[0] == tasksDir:
		return Event{Type: EventTaskChanged, ID: parts[1]}
	case len(parts) == 1 && (parts[0] == settingsKey || parts[0] == orderKey):
		return Event{Type: EventStateChanged}
	default:
		return Event{Type: EventInvalidated}
	}
}

// eventThrottle coalesces bursts of change notifications so subscribers
// refresh once per burst instead of once per write.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[Event]struct{}
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[Event]struct{}),
	}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[ev] = struct{}{}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[Event]struct{})
	t.timer = nil
	t.mu.Unlock()

	if _, ok := pending[Event{Type: EventInvalidated}]; ok {
		send(Event{Type: EventInvalidated})
		return
	}
	for ev := range pending {
		send(ev)
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
