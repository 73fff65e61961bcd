package bucket

import (
	"time"

	"tableflip.dev/adhdo/pkg/task"
)

// Tier is one row of the priority table.
type Tier struct {
	Label  string
	Bucket Name
	match  func(*task.Task) bool
}

func urgent(t *task.Task) bool  { return t.Urgent }
func normal(t *task.Task) bool  { return !t.Urgent }
func anyTask(t *task.Task) bool { return true }

// Tiers is the fixed precedence used to pick a pool. Void has no urgent split.
var Tiers = []Tier{
	{Label: "urgent today", Bucket: Today, match: urgent},
	{Label: "today", Bucket: Today, match: normal},
	{Label: "urgent tomorrow", Bucket: Tomorrow, match: urgent},
	{Label: "tomorrow", Bucket: Tomorrow, match: normal},
	{Label: "urgent this week", Bucket: Week, match: urgent},
	{Label: "this week", Bucket: Week, match: normal},
	{Label: "urgent later", Bucket: Later, match: urgent},
	{Label: "later", Bucket: Later, match: normal},
	{Label: "void", Bucket: Void, match: anyTask},
}

// Pool is the tier selected for the suggestion step.
type Pool struct {
	Tier  Tier
	Tasks []*task.Task
}

// Name is the human label of the selected tier.
func (p Pool) Name() string {
	return p.Tier.Label
}

// Members returns the tasks of bucket b that satisfy the tier.
func (t Tier) Members(b Buckets) []*task.Task {
	var out []*task.Task
	for _, tk := range b[t.Bucket] {
		if t.match(tk) {
			out = append(out, tk)
		}
	}
	return out
}

// SelectPool walks Tiers in order and returns the first non-empty one. The
// boolean is false when every tier is empty.
func SelectPool(b Buckets) (Pool, bool) {
	for _, tier := range Tiers {
		if members := tier.Members(b); len(members) > 0 {
			return Pool{Tier: tier, Tasks: members}, true
		}
	}
	return Pool{}, false
}

// IsEvening reports whether now is at or past the evening threshold hour.
func IsEvening(now time.Time, eveningHour int) bool {
	return now.Hour() >= eveningHour
}

// EveningCandidates keeps the tasks that can be done from home. It runs
// before bucketing so evening mode changes the candidate set, not the order.
func EveningCandidates(tasks []*task.Task) []*task.Task {
	out := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.HomeFriendly() {
			out = append(out, t)
		}
	}
	return out
}

// Candidates returns the incomplete tasks eligible for suggestion at now.
func Candidates(tasks []*task.Task, now time.Time, eveningHour int) []*task.Task {
	open := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if t != nil && !t.Completed {
			open = append(open, t)
		}
	}
	if IsEvening(now, eveningHour) {
		return EveningCandidates(open)
	}
	return open
}
