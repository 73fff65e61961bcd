package app

import (
	"context"
	"sort"
	"time"

	"tableflip.dev/adhdo/pkg/task"
)

// ReportItem captures a completed task and when it was completed.
type ReportItem struct {
	Task        *task.Task `json:"task"`
	CompletedAt time.Time  `json:"completedAt"`
}

// ReportSection groups completed tasks by category.
type ReportSection struct {
	Category string       `json:"category"`
	Tasks    []ReportItem `json:"tasks"`
}

// ReportResult is a completed-task report for a time window.
type ReportResult struct {
	Since    time.Time       `json:"since"`
	Until    time.Time       `json:"until"`
	Sections []ReportSection `json:"sections,omitempty"`
	Total    int             `json:"total"`
}

// Report returns the tasks completed between since and until grouped by
// category. It reads past the retention window, since nothing is deleted.
func (s *Service) Report(ctx context.Context, since, until time.Time) (ReportResult, error) {
	if since.After(until) {
		since, until = until, since
	}
	if s.Persistence == nil {
		return ReportResult{}, errNoPersistence
	}

	grouped := make(map[string][]ReportItem)
	total := 0
	for _, t := range s.Persistence.ListAll(ctx) {
		if t == nil || !t.Completed || t.CompletedAt == nil {
			continue
		}
		at := t.CompletedAt.Time
		if at.Before(since) || at.After(until) {
			continue
		}
		category := t.Category
		if category == "" {
			category = task.DefaultCategory
		}
		grouped[category] = append(grouped[category], ReportItem{Task: t, CompletedAt: at})
		total++
	}

	result := ReportResult{Since: since, Until: until, Total: total}
	if total == 0 {
		return result, nil
	}

	categories := make([]string, 0, len(grouped))
	for c := range grouped {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		items := grouped[c]
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CompletedAt.Before(items[j].CompletedAt)
		})
		result.Sections = append(result.Sections, ReportSection{Category: c, Tasks: items})
	}
	return result, nil
}
