package timeutil

import (
	"testing"
	"time"
)

func TestParseWindowDefault(t *testing.T) {
	dur, label, err := ParseWindow("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dur != 7*24*time.Hour {
		t.Fatalf("expected one week, got %v", dur)
	}
	if label != "1w" {
		t.Fatalf("expected label 1w, got %s", label)
	}
}

func TestParseWindowComposite(t *testing.T) {
	dur, label, err := ParseWindow("1w 2d 6h")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := (7*24 + 2*24 + 6) * time.Hour
	if dur != want {
		t.Fatalf("expected %v, got %v", want, dur)
	}
	if label != "1w2d6h" {
		t.Fatalf("unexpected label: %s", label)
	}
}

func TestParseWindowInvalid(t *testing.T) {
	for _, in := range []string{"noop", "3y", "0d"} {
		if _, _, err := ParseWindow(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestNextWeekday(t *testing.T) {
	// 2024-01-06 is a Saturday.
	sat := time.Date(2024, 1, 6, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		from time.Time
		wd   time.Weekday
		want string
	}{
		{sat, time.Saturday, "2024-01-13"},
		{sat, time.Monday, "2024-01-08"},
		{sat.AddDate(0, 0, -2), time.Saturday, "2024-01-06"},
		{sat.AddDate(0, 0, 2), time.Monday, "2024-01-15"},
	}
	for _, tt := range tests {
		if got := NextWeekday(tt.from, tt.wd); got != tt.want {
			t.Fatalf("NextWeekday(%s, %s) = %s, want %s", Date(tt.from), tt.wd, got, tt.want)
		}
	}
}

func TestSameDayUsesFirstLocation(t *testing.T) {
	loc := time.FixedZone("minus5", -5*3600)
	local := time.Date(2024, 1, 5, 22, 0, 0, 0, loc)
	utc := time.Date(2024, 1, 6, 2, 0, 0, 0, time.UTC)
	if !SameDay(local, utc) {
		t.Fatalf("expected same local day")
	}
	if SameDay(local, utc.Add(4*time.Hour)) {
		t.Fatalf("expected different day")
	}
}

func TestAddDaysCrossesMonth(t *testing.T) {
	now := time.Date(2024, 1, 30, 12, 0, 0, 0, time.UTC)
	if got := AddDays(now, 7); got != "2024-02-06" {
		t.Fatalf("unexpected date %s", got)
	}
	if !ValidDate("2024-02-29") || ValidDate("2024-13-01") || ValidDate("soon") {
		t.Fatalf("ValidDate mismatch")
	}
}
