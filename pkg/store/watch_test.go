package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"tableflip.dev/adhdo/pkg/task"
)

func TestPersistenceWatchEmitsTaskChanges(t *testing.T) {
	p, err := OpenDiskv(t.TempDir(), "local")
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// Allow watcher goroutine to subscribe to directories before storing.
	time.Sleep(50 * time.Millisecond)

	tk := task.New(task.Draft{Text: "hello world"}, time.Now())
	if err := p.Store(tk); err != nil {
		t.Fatalf("store task: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-ch:
			switch evt.Type {
			case EventInvalidated:
				return
			case EventTaskChanged:
				if evt.ID != tk.ID {
					t.Fatalf("expected id %q, got %q", tk.ID, evt.ID)
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for task change event")
		}
	}
}

func TestWatchClosesOnCancel(t *testing.T) {
	p, err := OpenDiskv(t.TempDir(), "local")
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	cancel()
	select {
	case _, ok := <-ch:
		for ok {
			_, ok = <-ch
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestEventForPath(t *testing.T) {
	p := &persistence{}
	root := "/base/owner"
	tests := []struct {
		path string
		want Event
	}{
		{"/base/owner/tasks/abc", Event{Type: EventTaskChanged, ID: "abc"}},
		{"/base/owner/settings", Event{Type: EventStateChanged}},
		{"/base/owner/order", Event{Type: EventStateChanged}},
		{"/base/owner/tasks", Event{Type: EventInvalidated}},
		{"/base/owner", Event{Type: EventInvalidated}},
	}
	for _, tt := range tests {
		if got := p.eventForPath(root, tt.path); got != tt.want {
			t.Fatalf("eventForPath(%q) = %+v, want %+v", tt.path, got, tt.want)
		}
	}
}

func TestSQLWatchInvalidatesOnWrite(t *testing.T) {
	saved := pollInterval
	pollInterval = 10 * time.Millisecond
	t.Cleanup(func() { pollInterval = saved })

	p, err := Load(testConfig{driver: DriverSQLite, dsn: filepath.Join(t.TempDir(), "tasks.db"), owner: "device-1"})
	if err != nil {
		t.Fatalf("load sqlite: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	tk := task.New(task.Draft{Text: "hello world"}, time.Now())
	if err := p.Store(tk); err != nil {
		t.Fatalf("store task: %v", err)
	}

	select {
	case evt, ok := <-ch:
		if !ok {
			t.Fatal("watch channel closed")
		}
		if evt.Type != EventInvalidated {
			t.Fatalf("expected invalidation, got %v", evt.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for invalidation")
	}
}
