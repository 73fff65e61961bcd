// Package task defines the task record and the mutations applied to it.
package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tableflip.dev/adhdo/pkg/timeutil"
)

// Locations understood by evening mode.
const (
	LocationHome   = "home"
	LocationOut    = "out"
	LocationEither = "either"
)

// DefaultCategory is assigned when a task is created without a category.
const DefaultCategory = "general"

// Categories lists the categories the parser is allowed to assign.
var Categories = []string{"phone", "errand", "cleaning", "medical", "financial", "work", "shopping", "home"}

// ErrNoSubtask is returned when a subtask index is out of range.
var ErrNoSubtask = errors.New("task: no such subtask")

// Subtask is a single checklist item under a task.
type Subtask struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Task is the sole persisted entity.
type Task struct {
	ID          string     `json:"id"`
	Owner       string     `json:"deviceId,omitempty"`
	Text        string     `json:"text"`
	Completed   bool       `json:"completed"`
	CompletedAt *Timestamp `json:"completedAt,omitempty"`
	Urgent      bool       `json:"urgent"`
	DoDate      string     `json:"doDate,omitempty"`
	DueDate     string     `json:"dueDate,omitempty"`
	Category    string     `json:"category,omitempty"`
	Location    string     `json:"location,omitempty"`
	Subtasks    []Subtask  `json:"subtasks,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	URL         string     `json:"url,omitempty"`
	Address     string     `json:"address,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Created     Timestamp  `json:"createdAt"`
	Updated     Timestamp  `json:"updatedAt"`
}

// Draft carries the caller supplied fields for a new task.
type Draft struct {
	Text     string   `json:"text"`
	DoDate   string   `json:"doDate,omitempty"`
	Category string   `json:"category,omitempty"`
	Location string   `json:"location,omitempty"`
	Subtasks []string `json:"subtasks,omitempty"`
}

// NewID returns a creation-time identifier: millisecond timestamp plus a
// random suffix.
func NewID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%d-%s", now.UnixMilli(), suffix[:10])
}

// New builds an incomplete task from d.
func New(d Draft, now time.Time) *Task {
	t := &Task{
		ID:       NewID(now),
		Text:     strings.TrimSpace(d.Text),
		DoDate:   d.DoDate,
		Category: d.Category,
		Location: d.Location,
		Created:  Timestamp{Time: now},
		Updated:  Timestamp{Time: now},
	}
	if t.Category == "" {
		t.Category = DefaultCategory
	}
	if t.Location == "" {
		t.Location = LocationEither
	}
	for _, s := range d.Subtasks {
		if s = strings.TrimSpace(s); s != "" {
			t.Subtasks = append(t.Subtasks, Subtask{Text: s})
		}
	}
	return t
}

// Complete marks the task done and stamps the completion time.
func (t *Task) Complete(now time.Time) {
	if t.Completed {
		return
	}
	t.Completed = true
	t.CompletedAt = &Timestamp{Time: now}
	t.touch(now)
}

// Uncomplete reverts Complete and clears the completion time.
func (t *Task) Uncomplete(now time.Time) {
	t.Completed = false
	t.CompletedAt = nil
	t.touch(now)
}

// ToggleUrgent flips the urgent flag.
func (t *Task) ToggleUrgent(now time.Time) {
	t.Urgent = !t.Urgent
	t.touch(now)
}

// AddSubtask appends an incomplete subtask.
func (t *Task) AddSubtask(text string, now time.Time) {
	t.Subtasks = append(t.Subtasks, Subtask{Text: strings.TrimSpace(text)})
	t.touch(now)
}

// ToggleSubtask flips the completed flag of the i-th subtask.
func (t *Task) ToggleSubtask(i int, now time.Time) error {
	if i < 0 || i >= len(t.Subtasks) {
		return fmt.Errorf("%w: %d", ErrNoSubtask, i)
	}
	t.Subtasks[i].Completed = !t.Subtasks[i].Completed
	t.touch(now)
	return nil
}

// Overdue reports whether the hard deadline is before today.
func (t *Task) Overdue(now time.Time) bool {
	return t.DueDate != "" && t.DueDate < timeutil.Date(now)
}

// CompletedOn reports whether the task was completed on now's calendar day.
func (t *Task) CompletedOn(now time.Time) bool {
	return t.Completed && t.CompletedAt != nil && timeutil.SameDay(now, t.CompletedAt.Time)
}

// HomeFriendly reports whether the task can be done without leaving home.
func (t *Task) HomeFriendly() bool {
	switch strings.ToLower(strings.TrimSpace(t.Location)) {
	case "", LocationHome, LocationEither:
		return true
	}
	return false
}

// Clone returns a deep copy of t.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	cp := *t
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		cp.CompletedAt = &at
	}
	if t.Subtasks != nil {
		cp.Subtasks = append([]Subtask(nil), t.Subtasks...)
	}
	return &cp
}

func (t *Task) touch(now time.Time) {
	t.Updated = Timestamp{Time: now}
}
