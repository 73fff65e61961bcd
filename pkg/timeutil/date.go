// Package timeutil holds the calendar-date and window helpers shared by the
// bucketing, scheduling, and retention logic.
package timeutil

import (
	"fmt"
	"time"
)

// LayoutISO is the calendar-date layout used for doDate and dueDate values.
const LayoutISO = "2006-01-02"

// Date formats t as a calendar date in t's own location.
func Date(t time.Time) string {
	return t.Format(LayoutISO)
}

// AddDays returns the calendar date n days after t.
func AddDays(t time.Time, n int) string {
	return t.AddDate(0, 0, n).Format(LayoutISO)
}

// ParseDate parses a calendar date in the supplied location.
func ParseDate(v string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(LayoutISO, v, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", v, err)
	}
	return t, nil
}

// ValidDate reports whether v is a well formed calendar date.
func ValidDate(v string) bool {
	_, err := time.Parse(LayoutISO, v)
	return err == nil
}

// SameDay reports whether a and b fall on the same calendar day in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// NextWeekday returns the first date strictly after t that falls on wd.
func NextWeekday(t time.Time, wd time.Weekday) string {
	days := (int(wd) - int(t.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return AddDays(t, days)
}
