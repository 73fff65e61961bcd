package suggest

import (
	"context"
	"errors"
	"testing"

	"tableflip.dev/adhdo/pkg/task"
)

type fakeImages struct {
	url  string
	err  error
	term string
}

func (f *fakeImages) Search(_ context.Context, q string) (string, error) {
	f.term = q
	return f.url, f.err
}

func doneTask(id string) *task.Task {
	tk := mk(id, "done "+id, "2024-01-05", false)
	tk.Complete(now)
	return tk
}

func TestShouldCelebrate(t *testing.T) {
	done := []*task.Task{doneTask("1"), doneTask("2"), doneTask("3")}
	later := mk("l", "later thing", "2024-01-20", false)
	today := mk("t", "today thing", "2024-01-05", false)

	if !ShouldCelebrate(append(append([]*task.Task{}, done...), later), now) {
		t.Fatalf("expected celebration")
	}
	if ShouldCelebrate(append(append([]*task.Task{}, done...), later, today), now) {
		t.Fatalf("today task still open")
	}
	if ShouldCelebrate(done, now) {
		t.Fatalf("no remaining tasks")
	}
	if ShouldCelebrate([]*task.Task{done[0], done[1], later}, now) {
		t.Fatalf("only two done")
	}
	yesterday := doneTask("y")
	yesterday.CompletedAt.Time = now.AddDate(0, 0, -1)
	if ShouldCelebrate([]*task.Task{done[0], done[1], yesterday, later}, now) {
		t.Fatalf("yesterday's completion must not count")
	}
}

func TestCelebrate(t *testing.T) {
	done := []*task.Task{doneTask("1"), doneTask("2"), doneTask("3")}
	images := &fakeImages{url: "https://x/party.gif"}
	c := &Celebrator{
		Requester: &Requester{LLM: &fakeLLM{reply: `{"headline":"Day conquered","subtitle":"Legend.","searchTerm":"victory dance"}`}},
		Images:    images,
	}
	got := c.Celebrate(context.Background(), done)
	if got.Fallback || got.Headline != "Day conquered" || got.Image != "https://x/party.gif" || got.Done != 3 {
		t.Fatalf("unexpected celebration %+v", got)
	}
	if images.term != "victory dance" {
		t.Fatalf("unexpected search term %q", images.term)
	}

	images.err = errors.New("down")
	got = c.Celebrate(context.Background(), done)
	if got.Image != "" || got.Headline != "Day conquered" {
		t.Fatalf("expected copy without image, got %+v", got)
	}

	c.Requester = &Requester{LLM: &fakeLLM{err: errors.New("down")}}
	got = c.Celebrate(context.Background(), done)
	if !got.Fallback || got.Image != "" || got.Done != 3 {
		t.Fatalf("expected static celebration, got %+v", got)
	}
}

func TestPick(t *testing.T) {
	if Pick(nil) != "" {
		t.Fatalf("expected empty pick")
	}
	got := Pick(Cheers)
	found := false
	for _, c := range Cheers {
		if c == got {
			found = true
		}
	}
	if !found {
		t.Fatalf("unexpected pick %q", got)
	}
}
