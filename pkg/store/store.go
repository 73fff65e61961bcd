package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"tableflip.dev/adhdo/pkg/bucket"
	"tableflip.dev/adhdo/pkg/task"
)

// ErrNotFound is returned when a task document does not exist.
var ErrNotFound = errors.New("store: task not found")

// DefaultEveningHour is the hour at which evening mode starts.
const DefaultEveningHour = 19

// Persistence defines the persistence contract for one owner's task documents,
// settings object, and manual ordering map.
type Persistence interface {
	ListAll(ctx context.Context) []*task.Task
	Get(ctx context.Context, id string) (*task.Task, error)
	Store(t *task.Task) error
	Delete(t *task.Task) error
	Settings() (Settings, error)
	StoreSettings(s Settings) error
	Order() (bucket.Order, error)
	StoreOrder(o bucket.Order) error
	Watch(ctx context.Context) (<-chan Event, error)
}

// Config selects and locates a persistence backend.
type Config interface {
	BasePath() string
	Driver() string
	DSN() string
	Owner() string
}

// Settings is the user settings object kept alongside the tasks.
type Settings struct {
	APIKey      string `json:"apiKey,omitempty"`
	EveningHour int    `json:"eveningHour"`
}

// DefaultSettings returns the settings used before anything is saved.
func DefaultSettings() Settings {
	return Settings{EveningHour: DefaultEveningHour}
}

// Load opens the backend named by cfg for cfg's owner.
func Load(cfg Config) (Persistence, error) {
	if cfg == nil {
		return nil, errors.New("store: no config")
	}
	return LoadFor(cfg, cfg.Owner())
}

// LoadFor opens the backend named by cfg scoped to owner.
func LoadFor(cfg Config, owner string) (Persistence, error) {
	if owner == "" {
		return nil, errors.New("store: owner required")
	}
	switch d := cfg.Driver(); d {
	case "", DriverDiskv:
		return OpenDiskv(cfg.BasePath(), owner)
	case DriverSQLite, DriverPostgres:
		return OpenSQL(d, cfg.DSN(), owner)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", d)
	}
}

func sortTasks(tasks []*task.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		lt, rt := tasks[i].Created.Time, tasks[j].Created.Time
		if lt.Equal(rt) {
			return tasks[i].ID < tasks[j].ID
		}
		return lt.Before(rt)
	})
}

func normalizeSettings(s Settings) Settings {
	if s.EveningHour <= 0 || s.EveningHour > 23 {
		s.EveningHour = DefaultEveningHour
	}
	return s
}
