// Package bucket partitions tasks into temporal buckets and selects the
// priority pool offered to the suggestion step.
package bucket

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tableflip.dev/adhdo/pkg/task"
	"tableflip.dev/adhdo/pkg/timeutil"
)

// Name identifies one of the five temporal buckets.
type Name string

const (
	Void     Name = "void"
	Today    Name = "today"
	Tomorrow Name = "tomorrow"
	Week     Name = "week"
	Later    Name = "later"
)

// Names lists the buckets in display order.
var Names = []Name{Void, Today, Tomorrow, Week, Later}

// ErrUnknownName is returned by ParseName.
var ErrUnknownName = errors.New("unknown section")

// ParseName resolves a bucket name, case-insensitively.
func ParseName(v string) (Name, error) {
	n := Name(strings.ToLower(strings.TrimSpace(v)))
	for _, known := range Names {
		if n == known {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w %q (expected void, today, tomorrow, week or later)", ErrUnknownName, v)
}

// Dates are the calendar anchors derived from a single instant.
type Dates struct {
	Today    string
	Tomorrow string
	WeekEnd  string
}

// DatesAt derives the anchors for now. They are recomputed per call so that
// membership follows the wall clock.
func DatesAt(now time.Time) Dates {
	return Dates{
		Today:    timeutil.Date(now),
		Tomorrow: timeutil.AddDays(now, 1),
		WeekEnd:  timeutil.AddDays(now, 7),
	}
}

// Of returns the single bucket a task belongs to. Past-due dates land in Today.
func (d Dates) Of(t *task.Task) Name {
	switch {
	case t.DoDate == "":
		return Void
	case t.DoDate <= d.Today:
		return Today
	case t.DoDate == d.Tomorrow:
		return Tomorrow
	case t.DoDate <= d.WeekEnd:
		return Week
	default:
		return Later
	}
}

// Buckets holds the incomplete tasks of each bucket in input order.
type Buckets map[Name][]*task.Task

// Partition assigns every incomplete task to exactly one bucket.
func Partition(now time.Time, tasks []*task.Task) Buckets {
	d := DatesAt(now)
	b := make(Buckets, len(Names))
	for _, n := range Names {
		b[n] = []*task.Task{}
	}
	for _, t := range tasks {
		if t == nil || t.Completed {
			continue
		}
		n := d.Of(t)
		b[n] = append(b[n], t)
	}
	return b
}

// Len returns the number of tasks across all buckets.
func (b Buckets) Len() int {
	total := 0
	for _, ts := range b {
		total += len(ts)
	}
	return total
}

// DoDateFor returns the doDate a task receives when it is dropped into the
// named section. Void clears the date.
func DoDateFor(n Name, now time.Time) string {
	switch n {
	case Today:
		return timeutil.Date(now)
	case Tomorrow:
		return timeutil.AddDays(now, 1)
	case Week:
		return timeutil.AddDays(now, 3)
	case Later:
		return timeutil.AddDays(now, 14)
	default:
		return ""
	}
}
