package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tableflip.dev/adhdo/pkg/parse"
	"tableflip.dev/adhdo/pkg/store"
	"tableflip.dev/adhdo/pkg/suggest"
	"tableflip.dev/adhdo/pkg/task"
)

func withKey(mp *memoryPersistence) *memoryPersistence {
	mp.settings.APIKey = "sk-test"
	return mp
}

func TestSuggestWithoutTasksOrKeyMakesNoCall(t *testing.T) {
	fake := &fakeLLM{reply: `{"taskId":"a","headline":"go"}`}
	ctx := context.Background()

	s, err := newService(withKey(newMemoryPersistence()), fake).Suggest(ctx)
	if s != nil || err != nil {
		t.Fatalf("expected no suggestion, got %+v %v", s, err)
	}

	s, err = newService(newMemoryPersistence(mk("a", "a", "")), fake).Suggest(ctx)
	if s != nil || !errors.Is(err, ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %+v %v", s, err)
	}
	if fake.Calls() != 0 {
		t.Fatalf("expected no external call, got %d", fake.Calls())
	}
}

func TestSuggestUsesPriorityPool(t *testing.T) {
	later := mk("later", "later", "2024-01-30")
	today := mk("today", "today", "2024-01-05")
	overdue := mk("overdue", "overdue", "2024-01-01")
	fake := &fakeLLM{reply: `{"taskId":"later","headline":"nope"}`}
	svc := newService(withKey(newMemoryPersistence(later, today, overdue)), fake)

	s, err := svc.Suggest(context.Background())
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	// "later" is outside the today pool, so the reply is rejected.
	if !s.Fallback || s.Pool != "today" {
		t.Fatalf("expected today-pool fallback, got %+v", s)
	}
	if s.Task.ID != "overdue" && s.Task.ID != "today" {
		t.Fatalf("unexpected task %s", s.Task.ID)
	}
	if s.Headline != suggest.DefaultHeadline || s.Subtitle != suggest.DefaultSubtitle {
		t.Fatalf("unexpected copy %+v", s)
	}
	if fake.Calls() != 1 {
		t.Fatalf("expected one call, got %d", fake.Calls())
	}
}

func TestSuggestEveningExcludesOutTasks(t *testing.T) {
	out := mk("out", "return library books", "2024-01-05")
	out.Location = task.LocationOut
	out.Urgent = true
	home := mk("home", "fold laundry", "")
	evening := now.Add(6 * time.Hour) // 20:00
	svc := newService(withKey(newMemoryPersistence(out, home)), &fakeLLM{reply: "??"})
	svc.Now = func() time.Time { return evening }

	s, err := svc.Suggest(context.Background())
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if s.Task.ID != "home" || s.Pool != "void" {
		t.Fatalf("expected home task from void pool, got %s in %s", s.Task.ID, s.Pool)
	}

	svc.Now = func() time.Time { return now }
	s, _ = svc.Suggest(context.Background())
	if s.Task.ID != "out" || s.Headline != suggest.UrgentHeadline {
		t.Fatalf("daytime should offer urgent out task, got %+v", s)
	}
}

func TestSkip(t *testing.T) {
	a, b := mk("a", "a", "2024-01-05"), mk("b", "b", "2024-01-05")
	svc := newService(withKey(newMemoryPersistence(a, b)), &fakeLLM{err: errors.New("down")})

	s, err := svc.Skip(context.Background(), "a")
	if err != nil || s.Task.ID != "b" {
		t.Fatalf("expected b after skipping a, got %+v %v", s, err)
	}

	solo := newService(withKey(newMemoryPersistence(mk("only", "only", ""))), &fakeLLM{err: errors.New("down")})
	s, _ = solo.Skip(context.Background(), "only")
	if s == nil || s.Task.ID != "only" {
		t.Fatalf("sole pool task must still be offered, got %+v", s)
	}
}

func TestCaptureAndCommit(t *testing.T) {
	existing := mk("kitchen", "clean kitchen", "")
	reply := `{"tasks":[{"text":"wipe counters","doDate":"2024-01-06","category":"cleaning","location":"home"},{"text":"call mom","doDate":"2024-01-06","category":"phone","location":"either"}],"response":"On it!","merge":{"taskId":"kitchen","mode":"subtask","draft":0}}`
	ctx := context.Background()

	t.Run("accept subtask merge", func(t *testing.T) {
		mp := withKey(newMemoryPersistence(existing))
		svc := newService(mp, &fakeLLM{reply: reply})
		res, err := svc.Capture(ctx, "wipe counters and call mom tomorrow")
		if err != nil {
			t.Fatalf("capture: %v", err)
		}
		if res.Response != "On it!" || res.Merge == nil {
			t.Fatalf("unexpected result %+v", res)
		}
		created, err := svc.Commit(ctx, res, true)
		if err != nil {
			t.Fatalf("commit: %v", err)
		}
		if len(created) != 1 || created[0].Text != "call mom" || created[0].DoDate != "2024-01-06" {
			t.Fatalf("unexpected created %+v", created)
		}
		k, _ := svc.Get(ctx, "kitchen")
		if len(k.Subtasks) != 1 || k.Subtasks[0].Text != "wipe counters" {
			t.Fatalf("expected subtask appended, got %+v", k.Subtasks)
		}
	})

	t.Run("accept duplicate merge", func(t *testing.T) {
		mp := withKey(newMemoryPersistence(existing))
		svc := newService(mp, nil)
		res := &parse.Result{
			Drafts: []task.Draft{{Text: "clean the kitchen"}},
			Merge:  &parse.Merge{TaskID: "kitchen", Mode: parse.MergeDuplicate, Draft: 0},
		}
		created, err := svc.Commit(ctx, res, true)
		if err != nil || len(created) != 0 {
			t.Fatalf("expected nothing created, got %+v %v", created, err)
		}
		if len(mp.ListAll(ctx)) != 1 {
			t.Fatalf("duplicate must be discarded")
		}
	})

	t.Run("decline merge", func(t *testing.T) {
		mp := withKey(newMemoryPersistence(existing))
		svc := newService(mp, &fakeLLM{reply: reply})
		res, _ := svc.Capture(ctx, "x")
		created, err := svc.Commit(ctx, res, false)
		if err != nil {
			t.Fatalf("commit: %v", err)
		}
		if len(created) != 2 {
			t.Fatalf("expected both drafts, got %d", len(created))
		}
		for _, c := range created {
			if c.DoDate != "" {
				t.Fatalf("declined drafts land in the void, got %q", c.DoDate)
			}
		}
		k, _ := svc.Get(ctx, "kitchen")
		if len(k.Subtasks) != 0 {
			t.Fatalf("existing task must be untouched")
		}
	})

	t.Run("no key", func(t *testing.T) {
		svc := newService(newMemoryPersistence(), &fakeLLM{reply: reply})
		res, err := svc.Capture(ctx, "x")
		if !errors.Is(err, ErrNoCredential) || res.Response != parse.NoKeyResponse {
			t.Fatalf("unexpected %+v %v", res, err)
		}
	})
}

func TestCelebrateWithoutKeyIsStatic(t *testing.T) {
	var tasks []*task.Task
	for _, id := range []string{"1", "2", "3"} {
		tk := mk(id, id, "2024-01-05")
		tk.Complete(now.Add(-time.Hour))
		tasks = append(tasks, tk)
	}
	tasks = append(tasks, mk("next", "next", "2024-01-10"))
	fake := &fakeLLM{}
	svc := newService(newMemoryPersistence(tasks...), fake)

	c, err := svc.Celebrate(context.Background())
	if err != nil {
		t.Fatalf("celebrate: %v", err)
	}
	if c == nil || !c.Fallback || c.Done != 3 || c.Image != "" {
		t.Fatalf("unexpected celebration %+v", c)
	}
	if fake.Calls() != 0 {
		t.Fatalf("expected no call")
	}
}

func TestStepsFallback(t *testing.T) {
	svc := newService(withKey(newMemoryPersistence(mk("a", "a", ""))), &fakeLLM{reply: "no"})
	_, steps, fallback, err := svc.Steps(context.Background(), "a")
	if err != nil || !fallback || len(steps) != len(suggest.FallbackSteps) {
		t.Fatalf("unexpected %v %v %v", steps, fallback, err)
	}
	svc = newService(newMemoryPersistence(mk("a", "a", "")), &fakeLLM{})
	if _, _, _, err := svc.Steps(context.Background(), "a"); !errors.Is(err, ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
}

func TestRefresherDebounces(t *testing.T) {
	mp := withKey(newMemoryPersistence(mk("a", "a", "2024-01-05")))
	fake := &fakeLLM{reply: `{"taskId":"a","headline":"Go go go"}`}
	svc := newService(mp, fake)

	var mu sync.Mutex
	var got []*suggest.Suggestion
	delivered := make(chan struct{}, 4)
	r := &Refresher{
		Service: svc,
		Delay:   20 * time.Millisecond,
		Deliver: func(s *suggest.Suggestion, err error) {
			mu.Lock()
			got = append(got, s)
			mu.Unlock()
			delivered <- struct{}{}
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	for i := 0; i < 3; i++ {
		mp.events <- store.Event{Type: store.EventTaskChanged, ID: "a"}
	}
	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for refresh")
	}
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0].Headline != "Go go go" {
		t.Fatalf("expected one coalesced refresh, got %d", len(got))
	}
	if fake.Calls() != 1 {
		t.Fatalf("expected one call, got %d", fake.Calls())
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
}
