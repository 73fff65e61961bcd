package parse

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tableflip.dev/adhdo/pkg/llm"
	"tableflip.dev/adhdo/pkg/task"
)

// Friday.
var now = time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)

type fakeLLM struct {
	reply string
	err   error
	last  llm.Request
}

func (f *fakeLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	f.last = req
	return f.reply, f.err
}

func TestAnchorsAt(t *testing.T) {
	a := AnchorsAt(now)
	want := Anchors{Today: "2024-01-05", Tomorrow: "2024-01-06", Weekend: "2024-01-06", NextWeek: "2024-01-08", Later: "2024-01-19"}
	if a != want {
		t.Fatalf("got %+v, want %+v", a, want)
	}
	sat := AnchorsAt(now.AddDate(0, 0, 1))
	if sat.Weekend != "2024-01-06" || sat.NextWeek != "2024-01-08" {
		t.Fatalf("unexpected saturday anchors %+v", sat)
	}
}

func TestParseDrafts(t *testing.T) {
	existing := []*task.Task{{ID: "t1", Text: "clean kitchen"}}
	fake := &fakeLLM{reply: "```json\n" + `{"tasks":[
		{"text":"call the vet","doDate":"2024-01-06","category":"phone","location":"home"},
		{"text":"  ","doDate":null},
		{"text":"wipe counters","doDate":null,"category":"Cleaning","location":"kitchen"},
		{"text":"learn piano","doDate":"someday","category":"hobby"}
	],"response":"Got it!","merge":{"taskId":"t1","mode":"subtask","draft":2}}` + "\n```"}
	p := &Parser{LLM: fake}

	res, err := p.Parse(context.Background(), "call vet tomorrow, wipe counters, piano someday", existing, now)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.Fallback || res.Response != "Got it!" || len(res.Drafts) != 3 {
		t.Fatalf("unexpected result %+v", res)
	}
	vet, wipe, piano := res.Drafts[0], res.Drafts[1], res.Drafts[2]
	if vet.DoDate != "2024-01-06" || vet.Category != "phone" || vet.Location != "home" {
		t.Fatalf("unexpected draft %+v", vet)
	}
	if wipe.DoDate != "" || wipe.Category != "cleaning" || wipe.Location != task.LocationEither {
		t.Fatalf("unexpected draft %+v", wipe)
	}
	if piano.DoDate != "" || piano.Category != task.DefaultCategory {
		t.Fatalf("unexpected draft %+v", piano)
	}
	if res.Merge == nil || res.Merge.TaskID != "t1" || res.Merge.Draft != 1 || res.Merge.Text != "wipe counters" || res.Merge.Mode != MergeSubtask {
		t.Fatalf("unexpected merge %+v", res.Merge)
	}

	if fake.last.Model != DefaultModel {
		t.Fatalf("unexpected model %q", fake.last.Model)
	}
	for _, want := range []string{"Today: 2024-01-05", "Next week: 2024-01-08", "ID: t1", "call vet tomorrow"} {
		if !strings.Contains(fake.last.Prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, fake.last.Prompt)
		}
	}
}

func TestParseDropsInvalidMerge(t *testing.T) {
	existing := []*task.Task{{ID: "t1", Text: "x"}}
	tests := []string{
		`{"tasks":[{"text":"a"}],"merge":{"taskId":"nope","mode":"duplicate","draft":0}}`,
		`{"tasks":[{"text":"a"}],"merge":{"taskId":"t1","mode":"replace","draft":0}}`,
		`{"tasks":[{"text":"a"}],"merge":{"taskId":"t1","mode":"duplicate","draft":3}}`,
	}
	for _, reply := range tests {
		res, err := (&Parser{LLM: &fakeLLM{reply: reply}}).Parse(context.Background(), "a", existing, now)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if res.Merge != nil || len(res.Drafts) != 1 {
			t.Fatalf("expected merge dropped for %s, got %+v", reply, res)
		}
	}
}

func TestParseFallbacks(t *testing.T) {
	for name, fake := range map[string]*fakeLLM{
		"not json":    {reply: "sounds like a busy day!"},
		"wrong shape": {reply: `{"tasks":"call mom"}`},
		"error":       {err: errors.New("timeout")},
	} {
		t.Run(name, func(t *testing.T) {
			res, err := (&Parser{LLM: fake}).Parse(context.Background(), "call mom", nil, now)
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if !res.Fallback || res.Response != FailureResponse || len(res.Drafts) != 0 {
				t.Fatalf("unexpected result %+v", res)
			}
		})
	}
}

func TestParseWithoutCredential(t *testing.T) {
	res, err := (&Parser{}).Parse(context.Background(), "call mom", nil, now)
	if !errors.Is(err, llm.ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
	if res.Response != NoKeyResponse {
		t.Fatalf("unexpected response %q", res.Response)
	}
}
