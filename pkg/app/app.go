package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tableflip.dev/adhdo/pkg/bucket"
	"tableflip.dev/adhdo/pkg/gif"
	"tableflip.dev/adhdo/pkg/llm"
	"tableflip.dev/adhdo/pkg/store"
	"tableflip.dev/adhdo/pkg/task"
	"tableflip.dev/adhdo/pkg/timeutil"
	"tableflip.dev/adhdo/pkg/weather"
)

// DefaultRetention hides completed tasks older than a week.
const DefaultRetention = 7 * 24 * time.Hour

var (
	ErrNotFound      = errors.New("app: task not found")
	ErrNoCredential  = errors.New("app: no API key configured")
	ErrEmptyText     = errors.New("app: task text is empty")
	ErrInvalidDate   = errors.New("app: dates must be YYYY-MM-DD")
	errNoPersistence = errors.New("app: no persistence configured")
)

// Connector builds a completion client for the stored API key. It returns
// llm.ErrNoCredential when no credential is available at all.
type Connector func(apiKey string) (llm.Completer, error)

// WeatherSource reports current conditions.
type WeatherSource interface {
	Current(ctx context.Context) (*weather.Reading, error)
}

// Service provides high-level task operations. It wraps persistence and the
// suggestion pipeline so the CLI, HTTP API, MCP server and terminal view share
// one implementation.
type Service struct {
	Persistence store.Persistence
	Connect     Connector
	Weather     WeatherSource
	Images      gif.Searcher

	// Owner is stamped on new tasks.
	Owner string
	// Model and ParseModel select the suggestion and parsing models.
	Model      string
	ParseModel string
	// Retention hides older completed tasks from Tasks. Zero means a week.
	Retention time.Duration
	// Now is the clock; nil means time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Service) retention() time.Duration {
	if s.Retention > 0 {
		return s.Retention
	}
	return DefaultRetention
}

// Tasks lists every stored task except completions older than the retention
// window. Nothing is deleted.
func (s *Service) Tasks(ctx context.Context) ([]*task.Task, error) {
	if s.Persistence == nil {
		return nil, errNoPersistence
	}
	cutoff := s.now().Add(-s.retention())
	all := s.Persistence.ListAll(ctx)
	out := make([]*task.Task, 0, len(all))
	for _, t := range all {
		if t.Completed && t.CompletedAt != nil && t.CompletedAt.Before(cutoff) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// Open lists the incomplete tasks.
func (s *Service) Open(ctx context.Context) ([]*task.Task, error) {
	all, err := s.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*task.Task, 0, len(all))
	for _, t := range all {
		if !t.Completed {
			out = append(out, t)
		}
	}
	return out, nil
}

// Get returns the task with id.
func (s *Service) Get(ctx context.Context, id string) (*task.Task, error) {
	if s.Persistence == nil {
		return nil, errNoPersistence
	}
	t, err := s.Persistence.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return t, err
}

// Watch subscribes to persistence change events.
func (s *Service) Watch(ctx context.Context) (<-chan store.Event, error) {
	if s.Persistence == nil {
		return nil, errNoPersistence
	}
	return s.Persistence.Watch(ctx)
}

// Add creates and stores a new task.
func (s *Service) Add(ctx context.Context, d task.Draft) (*task.Task, error) {
	if s.Persistence == nil {
		return nil, errNoPersistence
	}
	if strings.TrimSpace(d.Text) == "" {
		return nil, ErrEmptyText
	}
	if d.DoDate != "" && !timeutil.ValidDate(d.DoDate) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, d.DoDate)
	}
	t := task.New(d, s.now())
	t.Owner = s.Owner
	if err := s.store(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Patch holds optional field edits. Nil fields are left alone; an empty
// string clears the field.
type Patch struct {
	Text     *string `json:"text,omitempty"`
	DoDate   *string `json:"doDate,omitempty"`
	DueDate  *string `json:"dueDate,omitempty"`
	Category *string `json:"category,omitempty"`
	Location *string `json:"location,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	URL      *string `json:"url,omitempty"`
	Address  *string `json:"address,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}

func (p Patch) validate() error {
	if p.Text != nil && strings.TrimSpace(*p.Text) == "" {
		return ErrEmptyText
	}
	for _, d := range []*string{p.DoDate, p.DueDate} {
		if d != nil && *d != "" && !timeutil.ValidDate(*d) {
			return fmt.Errorf("%w: %q", ErrInvalidDate, *d)
		}
	}
	return nil
}

func (p Patch) apply(t *task.Task) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&t.Text, p.Text)
	set(&t.DoDate, p.DoDate)
	set(&t.DueDate, p.DueDate)
	set(&t.Category, p.Category)
	set(&t.Location, p.Location)
	set(&t.Phone, p.Phone)
	set(&t.URL, p.URL)
	set(&t.Address, p.Address)
	set(&t.Notes, p.Notes)
}

// Update applies p to the task with id.
func (s *Service) Update(ctx context.Context, id string, p Patch) (*task.Task, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(t *task.Task, now time.Time) error {
		p.apply(t)
		t.Updated = task.Timestamp{Time: now}
		return nil
	})
}

// Delete removes the task and its manual order position.
func (s *Service) Delete(ctx context.Context, id string) error {
	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Persistence.Delete(t); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		s.logger().Error("app: delete task", "id", id, "err", err)
		return err
	}
	return s.updateOrder(func(o bucket.Order) { o.Remove(id) })
}

// Complete marks the task done.
func (s *Service) Complete(ctx context.Context, id string) (*task.Task, error) {
	return s.mutate(ctx, id, func(t *task.Task, now time.Time) error {
		t.Complete(now)
		return nil
	})
}

// Uncomplete reopens the task.
func (s *Service) Uncomplete(ctx context.Context, id string) (*task.Task, error) {
	return s.mutate(ctx, id, func(t *task.Task, now time.Time) error {
		t.Uncomplete(now)
		return nil
	})
}

// ToggleUrgent flips the urgent flag.
func (s *Service) ToggleUrgent(ctx context.Context, id string) (*task.Task, error) {
	return s.mutate(ctx, id, func(t *task.Task, now time.Time) error {
		t.ToggleUrgent(now)
		return nil
	})
}

// AddSubtask appends a subtask.
func (s *Service) AddSubtask(ctx context.Context, id, text string) (*task.Task, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	return s.mutate(ctx, id, func(t *task.Task, now time.Time) error {
		t.AddSubtask(text, now)
		return nil
	})
}

// ToggleSubtask flips the i-th subtask.
func (s *Service) ToggleSubtask(ctx context.Context, id string, i int) (*task.Task, error) {
	return s.mutate(ctx, id, func(t *task.Task, now time.Time) error {
		return t.ToggleSubtask(i, now)
	})
}

func (s *Service) mutate(ctx context.Context, id string, fn func(*task.Task, time.Time) error) (*task.Task, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(t, s.now()); err != nil {
		return nil, err
	}
	if err := s.store(t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) store(t *task.Task) error {
	if err := s.Persistence.Store(t); err != nil {
		s.logger().Error("app: store task", "id", t.ID, "err", err)
		return err
	}
	return nil
}

// Settings returns the stored settings.
func (s *Service) Settings(_ context.Context) (store.Settings, error) {
	if s.Persistence == nil {
		return store.Settings{}, errNoPersistence
	}
	return s.Persistence.Settings()
}

// SaveSettings replaces the stored settings.
func (s *Service) SaveSettings(_ context.Context, st store.Settings) (store.Settings, error) {
	if s.Persistence == nil {
		return store.Settings{}, errNoPersistence
	}
	if err := s.Persistence.StoreSettings(st); err != nil {
		s.logger().Error("app: store settings", "err", err)
		return store.Settings{}, err
	}
	return s.Persistence.Settings()
}
