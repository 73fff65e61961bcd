package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tableflip.dev/adhdo/pkg/bucket"
	"tableflip.dev/adhdo/pkg/task"
	"tableflip.dev/adhdo/pkg/timeutil"
)

// When is a scheduling shortcut.
type When string

const (
	WhenToday    When = "today"
	WhenTomorrow When = "tomorrow"
	WhenWeekend  When = "weekend"
	WhenNextWeek When = "nextweek"
	WhenLater    When = "later"
	WhenVoid     When = "void"
)

// Whens lists the shortcuts in menu order.
var Whens = []When{WhenToday, WhenTomorrow, WhenWeekend, WhenNextWeek, WhenLater, WhenVoid}

// ErrUnknownWhen is returned by ParseWhen.
var ErrUnknownWhen = errors.New("app: unknown schedule")

// ParseWhen accepts a shortcut name, a few aliases, or an explicit date.
func ParseWhen(v string) (When, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "next-week", "next_week", "next week", "monday":
		return WhenNextWeek, nil
	case "none", "someday", "":
		return WhenVoid, nil
	case "saturday":
		return WhenWeekend, nil
	}
	for _, w := range Whens {
		if string(w) == v {
			return w, nil
		}
	}
	if timeutil.ValidDate(v) {
		return When(v), nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownWhen, v)
}

// ParseExplicitWhen is ParseWhen without the empty alias, for callers where
// a missing value is a mistake rather than a request to unschedule.
func ParseExplicitWhen(v string) (When, error) {
	if strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%w: when is required", ErrUnknownWhen)
	}
	return ParseWhen(v)
}

// DoDate resolves w at now. Weekend and next week never land on today.
func (w When) DoDate(now time.Time) string {
	switch w {
	case WhenToday:
		return timeutil.Date(now)
	case WhenTomorrow:
		return timeutil.AddDays(now, 1)
	case WhenWeekend:
		return timeutil.NextWeekday(now, time.Saturday)
	case WhenNextWeek:
		return timeutil.NextWeekday(now, time.Monday)
	case WhenLater:
		return timeutil.AddDays(now, 14)
	case WhenVoid:
		return ""
	}
	return string(w)
}

// Schedule sets the task's doDate from a shortcut.
func (s *Service) Schedule(ctx context.Context, id string, w When) (*task.Task, error) {
	return s.mutate(ctx, id, func(t *task.Task, now time.Time) error {
		t.DoDate = w.DoDate(now)
		t.Updated = task.Timestamp{Time: now}
		return nil
	})
}

// Move drops the task into section at index: its doDate follows the section
// and the manual order records the position.
func (s *Service) Move(ctx context.Context, id string, section bucket.Name, index int) (*task.Task, error) {
	t, err := s.mutate(ctx, id, func(t *task.Task, now time.Time) error {
		t.DoDate = bucket.DoDateFor(section, now)
		t.Updated = task.Timestamp{Time: now}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sections, err := s.Sections(ctx)
	if err != nil {
		return t, err
	}
	if err := s.updateOrder(func(o bucket.Order) {
		o.Remove(id)
		o.Place(section, sections[section], id, index)
	}); err != nil {
		return t, err
	}
	return t, nil
}

// Reorder moves id to index within its current section without touching
// its doDate. The index counts the section as displayed, id excluded.
func (s *Service) Reorder(ctx context.Context, id string, index int) error {
	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	section := bucket.DatesAt(s.now()).Of(t)
	sections, err := s.Sections(ctx)
	if err != nil {
		return err
	}
	return s.updateOrder(func(o bucket.Order) {
		o.Place(section, sections[section], id, index)
	})
}

// Buckets partitions the open tasks at the current time.
func (s *Service) Buckets(ctx context.Context) (bucket.Buckets, error) {
	all, err := s.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	return bucket.Partition(s.now(), all), nil
}

// Sections returns the buckets in display order: urgent first, then manual
// order, then stored order.
func (s *Service) Sections(ctx context.Context) (bucket.Buckets, error) {
	b, err := s.Buckets(ctx)
	if err != nil {
		return nil, err
	}
	return bucket.Sections(b, s.order()), nil
}

func (s *Service) order() bucket.Order {
	o, err := s.Persistence.Order()
	if err != nil {
		s.logger().Warn("app: read order", "err", err)
	}
	if o == nil {
		o = bucket.Order{}
	}
	return o
}

func (s *Service) updateOrder(fn func(bucket.Order)) error {
	o := s.order()
	fn(o)
	if err := s.Persistence.StoreOrder(o); err != nil {
		s.logger().Error("app: store order", "err", err)
		return err
	}
	return nil
}
