package bucket

import (
	"testing"
	"time"

	"tableflip.dev/adhdo/pkg/task"
)

var now = time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)

func mk(id, doDate string, urgent bool) *task.Task {
	return &task.Task{ID: id, Text: id, DoDate: doDate, Urgent: urgent}
}

func TestDatesAt(t *testing.T) {
	d := DatesAt(now)
	if d.Today != "2024-01-05" || d.Tomorrow != "2024-01-06" || d.WeekEnd != "2024-01-12" {
		t.Fatalf("unexpected anchors %+v", d)
	}
}

func TestOf(t *testing.T) {
	d := DatesAt(now)
	tests := []struct {
		doDate string
		want   Name
	}{
		{"", Void},
		{"1999-12-31", Today},
		{"2024-01-01", Today},
		{"2024-01-05", Today},
		{"2024-01-06", Tomorrow},
		{"2024-01-07", Week},
		{"2024-01-10", Week},
		{"2024-01-12", Week},
		{"2024-01-13", Later},
		{"2025-06-01", Later},
	}
	for _, tt := range tests {
		if got := d.Of(mk("x", tt.doDate, false)); got != tt.want {
			t.Fatalf("Of(%q) = %s, want %s", tt.doDate, got, tt.want)
		}
	}
}

func TestPartitionOverdueScenario(t *testing.T) {
	a := mk("a", "2024-01-01", false)
	b := mk("b", "2024-01-10", false)
	done := mk("done", "2024-01-05", false)
	done.Completed = true

	got := Partition(now, []*task.Task{a, b, done, nil})
	if len(got[Today]) != 1 || got[Today][0] != a {
		t.Fatalf("expected overdue task in today, got %+v", got[Today])
	}
	if len(got[Week]) != 1 || got[Week][0] != b {
		t.Fatalf("expected b in week, got %+v", got[Week])
	}
	if got.Len() != 2 {
		t.Fatalf("completed tasks must not be bucketed, got %d", got.Len())
	}

	// B falls outside the seven day window when today moves back.
	earlier := Partition(time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC), []*task.Task{b})
	if len(earlier[Later]) != 1 {
		t.Fatalf("expected b in later, got %+v", earlier)
	}
}

func TestPartitionFollowsWallClock(t *testing.T) {
	tk := mk("t", "2024-01-06", false)
	if n := DatesAt(now).Of(tk); n != Tomorrow {
		t.Fatalf("expected tomorrow, got %s", n)
	}
	if n := DatesAt(now.Add(24 * time.Hour)).Of(tk); n != Today {
		t.Fatalf("expected today after midnight, got %s", n)
	}
}

func TestParseName(t *testing.T) {
	if n, err := ParseName(" Week "); err != nil || n != Week {
		t.Fatalf("ParseName: %v %v", n, err)
	}
	if _, err := ParseName("someday"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDoDateFor(t *testing.T) {
	want := map[Name]string{
		Void:     "",
		Today:    "2024-01-05",
		Tomorrow: "2024-01-06",
		Week:     "2024-01-08",
		Later:    "2024-01-19",
	}
	for n, date := range want {
		if got := DoDateFor(n, now); got != date {
			t.Fatalf("DoDateFor(%s) = %q, want %q", n, got, date)
		}
		if got := DatesAt(now).Of(mk("x", DoDateFor(n, now), false)); got != n {
			t.Fatalf("dropping into %s lands in %s", n, got)
		}
	}
}
