package printers

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/adhdo/pkg/app"
	"tableflip.dev/adhdo/pkg/bucket"
	"tableflip.dev/adhdo/pkg/suggest"
	"tableflip.dev/adhdo/pkg/task"
)

func init() {
	color.NoColor = true
}

var now = time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)

func TestSectionsListsEveryBucket(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf, Now: now, ShowID: true}
	overdue := &task.Task{ID: "a", Text: "renew passport", DoDate: "2024-01-05", DueDate: "2024-01-02", Urgent: true}
	pp.Sections(bucket.Buckets{bucket.Today: {overdue}})

	out := buf.String()
	for _, want := range []string{"Today - 1 task", "The Void - 0 tasks", "renew passport", "overdue", "a"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Today") > strings.Index(out, "Tomorrow") {
		t.Fatalf("sections out of order:\n%s", out)
	}
}

func TestSuggestionCard(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf, Now: now}
	main := &task.Task{ID: "a", Text: "call dentist"}
	extra := &task.Task{ID: "b", Text: "call mom"}
	pp.Suggestion(&suggest.Suggestion{Task: main, Headline: "Dial it in", Subtitle: "Two calls, one sitting", Batch: []*task.Task{extra}, BatchReason: "phone calls", Pool: "today"}, nil)

	out := buf.String()
	for _, want := range []string{"from today", "Dial it in", "call dentist", "While you're at it: phone calls", "call mom"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	pp.Suggestion(nil, nil)
	if !strings.Contains(buf.String(), "Nothing to suggest") {
		t.Fatalf("unexpected empty card %q", buf.String())
	}
}

func TestReportGroupsByCategory(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf, Now: now}
	done := &task.Task{ID: "a", Text: "pay rent", Category: "financial", Completed: true}
	pp.Report(app.ReportResult{
		Since:    now.Add(-24 * time.Hour),
		Until:    now,
		Total:    1,
		Sections: []app.ReportSection{{Category: "financial", Tasks: []app.ReportItem{{Task: done, CompletedAt: now}}}},
	}, "1d")

	out := buf.String()
	for _, want := range []string{"Report · last 1d", "financial - 1 task", "pay rent", "1 completed"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	pp.Report(app.ReportResult{Since: now, Until: now}, "1d")
	if !strings.Contains(buf.String(), "Nothing completed") {
		t.Fatalf("unexpected empty report %q", buf.String())
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, map[string]int{"total": 2}); err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "{\n  \"total\": 2\n}" {
		t.Fatalf("unexpected JSON %q", got)
	}
}
