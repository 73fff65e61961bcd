package task

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

var now = time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC)

func TestNewDefaults(t *testing.T) {
	tk := New(Draft{Text: "  call the dentist ", Subtasks: []string{"find number", " "}}, now)
	if tk.Text != "call the dentist" {
		t.Fatalf("unexpected text %q", tk.Text)
	}
	if tk.Category != DefaultCategory || tk.Location != LocationEither {
		t.Fatalf("unexpected defaults %q/%q", tk.Category, tk.Location)
	}
	if tk.Completed || tk.CompletedAt != nil || tk.Urgent {
		t.Fatalf("new task must be open and not urgent")
	}
	if len(tk.Subtasks) != 1 || tk.Subtasks[0].Text != "find number" {
		t.Fatalf("unexpected subtasks %+v", tk.Subtasks)
	}
	if !strings.HasPrefix(tk.ID, "1704450600000-") {
		t.Fatalf("expected timestamp prefixed id, got %s", tk.ID)
	}
	if other := New(Draft{Text: "x"}, now); other.ID == tk.ID {
		t.Fatalf("expected distinct ids")
	}
}

func TestCompleteUncompleteKeepsCompletedAtInvariant(t *testing.T) {
	tk := New(Draft{Text: "laundry"}, now)
	tk.Complete(now.Add(time.Hour))
	if !tk.Completed || tk.CompletedAt == nil {
		t.Fatalf("expected completion stamp")
	}
	first := tk.CompletedAt.Time
	tk.Complete(now.Add(2 * time.Hour))
	if !tk.CompletedAt.Time.Equal(first) {
		t.Fatalf("completing twice must not move the stamp")
	}
	tk.Uncomplete(now)
	if tk.Completed || tk.CompletedAt != nil {
		t.Fatalf("expected completion cleared")
	}
}

func TestTogglesAreIdempotentInPairs(t *testing.T) {
	tk := New(Draft{Text: "taxes", Subtasks: []string{"find forms"}}, now)
	before := tk.Clone()

	tk.ToggleUrgent(now)
	tk.ToggleUrgent(now)
	if tk.Urgent != before.Urgent {
		t.Fatalf("urgent toggle pair changed state")
	}
	for i := 0; i < 2; i++ {
		if err := tk.ToggleSubtask(0, now); err != nil {
			t.Fatalf("toggle subtask: %v", err)
		}
	}
	if tk.Subtasks[0].Completed != before.Subtasks[0].Completed {
		t.Fatalf("subtask toggle pair changed state")
	}
	if err := tk.ToggleSubtask(3, now); !errors.Is(err, ErrNoSubtask) {
		t.Fatalf("expected ErrNoSubtask, got %v", err)
	}
}

func TestOverdueAndHomeFriendly(t *testing.T) {
	tk := New(Draft{Text: "renew passport"}, now)
	tk.DueDate = "2024-01-04"
	if !tk.Overdue(now) {
		t.Fatalf("expected overdue")
	}
	tk.DueDate = "2024-01-05"
	if tk.Overdue(now) {
		t.Fatalf("due today is not overdue")
	}
	for loc, want := range map[string]bool{"": true, "home": true, "Either": true, "out": false} {
		tk.Location = loc
		if got := tk.HomeFriendly(); got != want {
			t.Fatalf("HomeFriendly(%q) = %v", loc, got)
		}
	}
}

func TestJSONRoundTripToleratesNullCompletion(t *testing.T) {
	raw := `{"id":"1-a","text":"water plants","completed":false,"completedAt":null,"doDate":"2024-01-05","createdAt":"2024-01-05T10:30:00Z","updatedAt":""}`
	var tk Task
	if err := json.Unmarshal([]byte(raw), &tk); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if tk.CompletedAt != nil && !tk.CompletedAt.IsZero() {
		t.Fatalf("expected empty completion")
	}
	if !tk.Created.Equal(now) {
		t.Fatalf("unexpected created %v", tk.Created)
	}
	tk.Complete(now)
	b, err := json.Marshal(&tk)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Task
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal back: %v", err)
	}
	if back.CompletedAt == nil || !back.CompletedAt.Equal(now) || back.DoDate != "2024-01-05" {
		t.Fatalf("unexpected round trip %+v", back)
	}
}
