// Package printers renders tasks, suggestions and reports for the terminal.
package printers

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/mattn/go-isatty"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/adhdo/pkg/bucket"
	"tableflip.dev/adhdo/pkg/parse"
	"tableflip.dev/adhdo/pkg/suggest"
	"tableflip.dev/adhdo/pkg/task"
	"tableflip.dev/adhdo/pkg/weather"
)

// Width is the wrap width for prose.
const Width = 72

// SectionTitles are the display names of each bucket.
var SectionTitles = map[bucket.Name]string{
	bucket.Today:    "Today",
	bucket.Tomorrow: "Tomorrow",
	bucket.Week:     "This Week",
	bucket.Later:    "Later",
	bucket.Void:     "The Void",
}

// SectionOrder is the order sections are printed in.
var SectionOrder = []bucket.Name{bucket.Today, bucket.Tomorrow, bucket.Week, bucket.Later, bucket.Void}

type PrettyPrint struct {
	ShowID bool
	Now    time.Time
	Out    io.Writer
}

// Interactive reports whether stdin and stdout are both terminals.
func Interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out != nil {
		return pp.Out
	}
	return color.Output
}

func (pp *PrettyPrint) now() time.Time {
	if pp.Now.IsZero() {
		return time.Now()
	}
	return pp.Now
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " task")
	default:
		_, _ = c.Fprintln(pp.out(), " tasks")
	}
}

// Sections prints every bucket in display order.
func (pp *PrettyPrint) Sections(b bucket.Buckets) {
	for _, n := range SectionOrder {
		pp.TitleWithCount(SectionTitles[n], len(b[n]))
		pp.Tasks(b[n]...)
	}
}

// Tasks prints one line per task plus its subtasks.
func (pp *PrettyPrint) Tasks(tasks ...*task.Task) {
	w := pp.out()
	if len(tasks) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(w, " none\n\n")
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = Width
	tbl.Wrap = true
	for _, t := range tasks {
		tbl.AddRow(pp.row(t)...)
		for _, st := range t.Subtasks {
			tbl.AddRow(pp.subRow(st)...)
		}
	}
	_, _ = fmt.Fprintln(w, tbl)
	_, _ = fmt.Fprintln(w, "")
}

func (pp *PrettyPrint) row(t *task.Task) []interface{} {
	y := color.New(color.FgHiYellow, color.Faint)
	box := "[ ]"
	text := t.Text
	if t.Completed {
		box = color.GreenString("[✓]")
		text = color.New(color.Faint, color.CrossedOut).Sprint(text)
	}
	if t.Urgent {
		text = color.New(color.FgRed, color.Bold).Sprint("🔥 ") + text
	}

	var tags []string
	if t.DoDate != "" {
		tags = append(tags, t.DoDate)
	}
	if t.Category != "" && t.Category != task.DefaultCategory {
		tags = append(tags, t.Category)
	}
	if t.Location == task.LocationOut || t.Location == task.LocationHome {
		tags = append(tags, "@"+t.Location)
	}
	meta := color.New(color.Faint).Sprint(strings.Join(tags, " · "))
	if t.DueDate != "" {
		due := "due " + t.DueDate
		if t.Overdue(pp.now()) {
			due = color.New(color.FgRed).Sprint(due + " (overdue)")
		}
		meta = strings.TrimSpace(meta + " " + due)
	}

	row := []interface{}{box, text, meta}
	if pp.ShowID {
		row = append([]interface{}{y.Sprint(t.ID)}, row...)
	}
	return row
}

func (pp *PrettyPrint) subRow(st task.Subtask) []interface{} {
	box := "  ◦"
	text := st.Text
	if st.Completed {
		box = color.GreenString("  ✓")
		text = color.New(color.Faint).Sprint(text)
	}
	row := []interface{}{box, text, ""}
	if pp.ShowID {
		row = append([]interface{}{""}, row...)
	}
	return row
}

// Detail prints every field of one task.
func (pp *PrettyPrint) Detail(t *task.Task) {
	w := pp.out()
	bold := color.New(color.Bold)
	_, _ = bold.Fprintln(w, t.Text)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = Width
	tbl.Wrap = true
	add := func(k, v string) {
		if v != "" {
			tbl.AddRow(color.New(color.Faint).Sprint(k), v)
		}
	}
	add("id", t.ID)
	add("bucket", string(bucket.DatesAt(pp.now()).Of(t)))
	add("do", t.DoDate)
	if t.DueDate != "" {
		due := t.DueDate
		if t.Overdue(pp.now()) {
			due = color.RedString(due + " (overdue)")
		}
		add("due", due)
	}
	add("category", t.Category)
	add("location", t.Location)
	if t.Urgent {
		add("urgent", "yes")
	}
	add("phone", t.Phone)
	add("url", t.URL)
	add("address", t.Address)
	add("notes", t.Notes)
	if t.CompletedAt != nil {
		add("completed", t.CompletedAt.Local().Format("2006-01-02 15:04"))
	}
	for i, st := range t.Subtasks {
		mark := "[ ]"
		if st.Completed {
			mark = "[✓]"
		}
		add(fmt.Sprintf("step %d", i), mark+" "+st.Text)
	}
	_, _ = fmt.Fprintln(w, tbl)
}

// Suggestion prints the "do this now" card.
func (pp *PrettyPrint) Suggestion(s *suggest.Suggestion, r *weather.Reading) {
	w := pp.out()
	if s == nil {
		_, _ = color.New(color.Faint, color.Italic).Fprintln(w, "Nothing to suggest. Add a task or enjoy the quiet.")
		return
	}
	faint := color.New(color.Faint)
	if r != nil {
		_, _ = faint.Fprintf(w, "%s · ", r)
	}
	_, _ = faint.Fprintf(w, "from %s\n\n", s.Pool)
	_, _ = color.New(color.Bold, color.FgHiMagenta).Fprintln(w, wordwrap.String(s.Headline, Width))
	_, _ = fmt.Fprintln(w, wordwrap.String(s.Subtitle, Width))
	_, _ = fmt.Fprintln(w, "")
	pp.Tasks(s.Task)
	if len(s.Batch) > 0 {
		title := "While you're at it"
		if s.BatchReason != "" {
			title += ": " + s.BatchReason
		}
		_, _ = color.New(color.Bold).Fprintln(w, wordwrap.String(title, Width))
		pp.Tasks(s.Batch...)
	}
}

// Celebration prints the "all caught up" card.
func (pp *PrettyPrint) Celebration(c *suggest.Celebration) {
	if c == nil {
		return
	}
	w := pp.out()
	_, _ = color.New(color.Bold, color.FgHiGreen).Fprintln(w, wordwrap.String(c.Headline, Width))
	if c.Subtitle != "" {
		_, _ = fmt.Fprintln(w, wordwrap.String(c.Subtitle, Width))
	}
	if c.Image != "" {
		_, _ = color.New(color.Faint).Fprintln(w, c.Image)
	}
	_, _ = fmt.Fprintln(w, "")
}

// Cheer prints a completion message for t.
func (pp *PrettyPrint) Cheer(t *task.Task, msg string) {
	w := pp.out()
	_, _ = color.New(color.Bold, color.FgHiGreen).Fprintln(w, msg)
	_, _ = color.New(color.Faint, color.CrossedOut).Fprintln(w, t.Text)
	_, _ = fmt.Fprintln(w, "")
}

// Steps prints a numbered micro-step list.
func (pp *PrettyPrint) Steps(t *task.Task, steps []string) {
	w := pp.out()
	_, _ = color.New(color.Bold).Fprintln(w, wordwrap.String(t.Text, Width))
	for i, s := range steps {
		_, _ = fmt.Fprintf(w, "  %s %s\n", color.New(color.FgHiCyan).Sprintf("%d.", i+1), s)
	}
	_, _ = fmt.Fprintln(w, "")
}

// Parsed prints the drafts of a brain dump before they are committed.
func (pp *PrettyPrint) Parsed(res *parse.Result) {
	w := pp.out()
	if res.Response != "" {
		_, _ = color.New(color.Italic).Fprintln(w, wordwrap.String(res.Response, Width))
		_, _ = fmt.Fprintln(w, "")
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	for i, d := range res.Drafts {
		date := d.DoDate
		if date == "" {
			date = "void"
		}
		tbl.AddRow(color.New(color.Faint).Sprintf("%d.", i+1), d.Text, color.New(color.Faint).Sprintf("%s · %s · %s", date, d.Category, d.Location))
	}
	if len(res.Drafts) > 0 {
		_, _ = fmt.Fprintln(w, tbl)
	}
}
