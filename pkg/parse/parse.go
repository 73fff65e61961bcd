// Package parse turns a free-text brain dump into task drafts, with an
// optional proposal to merge one draft into an existing task.
package parse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"tableflip.dev/adhdo/pkg/llm"
	"tableflip.dev/adhdo/pkg/task"
	"tableflip.dev/adhdo/pkg/timeutil"
)

// Canned responses.
const (
	NoKeyResponse    = "Add your API key in settings first!"
	FailureResponse  = "Hmm, something went wrong. Try again?"
	DefaultModel     = "claude-haiku-4-5-20251001"
	maxExistingTasks = 200
)

// MergeMode says what accepting a merge does with the draft.
type MergeMode string

const (
	// MergeDuplicate drops the draft because the existing task covers it.
	MergeDuplicate MergeMode = "duplicate"
	// MergeSubtask appends the draft text as a subtask of the existing task.
	MergeSubtask MergeMode = "subtask"
)

// Merge proposes folding Drafts[Draft] into the existing task TaskID.
type Merge struct {
	TaskID string    `json:"taskId"`
	Mode   MergeMode `json:"mode"`
	Draft  int       `json:"draft"`
	Text   string    `json:"text"`
}

// Result is the parser output.
type Result struct {
	Drafts   []task.Draft `json:"tasks"`
	Response string       `json:"response"`
	Merge    *Merge       `json:"merge,omitempty"`
	Fallback bool         `json:"fallback,omitempty"`
}

// Failed is the result used when the model cannot be reached or understood.
func Failed() *Result {
	return &Result{Drafts: []task.Draft{}, Response: FailureResponse, Fallback: true}
}

// Anchors are the resolved relative dates handed to the model.
type Anchors struct {
	Today    string
	Tomorrow string
	Weekend  string
	NextWeek string
	Later    string
}

// AnchorsAt resolves the relative date phrases at now. Weekend is today when
// now already falls on a weekend.
func AnchorsAt(now time.Time) Anchors {
	weekend := timeutil.NextWeekday(now, time.Saturday)
	if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
		weekend = timeutil.Date(now)
	}
	return Anchors{
		Today:    timeutil.Date(now),
		Tomorrow: timeutil.AddDays(now, 1),
		Weekend:  weekend,
		NextWeek: timeutil.NextWeekday(now, time.Monday),
		Later:    timeutil.AddDays(now, 14),
	}
}

// Parser sends brain dumps to the completion service.
type Parser struct {
	LLM    llm.Completer
	Model  string
	Logger *slog.Logger
}

func (p *Parser) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// Parse converts input into drafts. open is the current incomplete task list
// used for duplicate detection. Without a completer it returns a result
// carrying NoKeyResponse together with llm.ErrNoCredential; every other
// failure yields Failed() and a nil error.
func (p *Parser) Parse(ctx context.Context, input string, open []*task.Task, now time.Time) (*Result, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return &Result{Drafts: []task.Draft{}}, nil
	}
	if p.LLM == nil {
		return &Result{Drafts: []task.Draft{}, Response: NoKeyResponse}, llm.ErrNoCredential
	}
	model := p.Model
	if model == "" {
		model = DefaultModel
	}
	raw, err := p.LLM.Complete(ctx, llm.Request{
		Model:  model,
		System: system,
		Prompt: prompt(input, open, AnchorsAt(now)),
	})
	if err != nil {
		if errors.Is(err, llm.ErrNoCredential) {
			return &Result{Drafts: []task.Draft{}, Response: NoKeyResponse}, err
		}
		p.logger().Warn("parse: completion failed", "err", err)
		return Failed(), nil
	}
	res, err := decode(raw, open)
	if err != nil {
		p.logger().Warn("parse: unusable reply", "err", err)
		return Failed(), nil
	}
	return res, nil
}

var system = `Parse tasks from natural language. Be a supportive friend with ADHD - funny, warm, real.

Categories: ` + strings.Join(task.Categories, ", ") + `
Locations: home, out, either

Resolve relative dates ONLY with the anchors given. "someday", "eventually" and undated tasks get null.
If one new task repeats or belongs inside an existing task, propose a merge: "duplicate" when it is the same task, "subtask" when it is a step of it. Propose at most one merge.`

func prompt(input string, open []*task.Task, a Anchors) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Today: %s\n", a.Today)
	fmt.Fprintf(&b, "Tomorrow: %s\n", a.Tomorrow)
	fmt.Fprintf(&b, "This weekend: %s\n", a.Weekend)
	fmt.Fprintf(&b, "Next week: %s\n", a.NextWeek)
	fmt.Fprintf(&b, "Later: %s\n", a.Later)
	if len(open) > 0 {
		b.WriteString("\nExisting tasks:\n")
		for i, t := range open {
			if i == maxExistingTasks {
				break
			}
			fmt.Fprintf(&b, "- ID: %s | %q\n", t.ID, t.Text)
		}
	}
	fmt.Fprintf(&b, "\nUser said: %q\n", input)
	b.WriteString(`
Return ONLY JSON:
{"tasks":[{"text":"...","doDate":"YYYY-MM-DD or null","category":"...","location":"...","subtasks":[]}],"response":"friendly ADHD-supportive acknowledgment","merge":null or {"taskId":"existing id","mode":"duplicate or subtask","draft":index into tasks}}`)
	return b.String()
}

type replyDraft struct {
	Text     string   `json:"text"`
	DoDate   *string  `json:"doDate"`
	Category string   `json:"category"`
	Location string   `json:"location"`
	Subtasks []string `json:"subtasks"`
}

type reply struct {
	Tasks    []replyDraft `json:"tasks"`
	Response string       `json:"response"`
	Merge    *Merge       `json:"merge"`
}

func decode(raw string, open []*task.Task) (*Result, error) {
	obj, err := llm.ExtractObject(raw)
	if err != nil {
		return nil, err
	}
	var rep reply
	if err := json.Unmarshal([]byte(obj), &rep); err != nil {
		return nil, fmt.Errorf("parse: reply shape: %w", err)
	}

	res := &Result{Drafts: make([]task.Draft, 0, len(rep.Tasks)), Response: strings.TrimSpace(rep.Response)}
	// index maps reply positions onto kept drafts so the merge index follows.
	index := make(map[int]int, len(rep.Tasks))
	for i, d := range rep.Tasks {
		text := strings.TrimSpace(d.Text)
		if text == "" {
			continue
		}
		draft := task.Draft{
			Text:     text,
			Category: normalizeCategory(d.Category),
			Location: normalizeLocation(d.Location),
			Subtasks: d.Subtasks,
		}
		if d.DoDate != nil && timeutil.ValidDate(*d.DoDate) {
			draft.DoDate = *d.DoDate
		}
		index[i] = len(res.Drafts)
		res.Drafts = append(res.Drafts, draft)
	}

	if m := rep.Merge; m != nil {
		pos, ok := index[m.Draft]
		known := slices.ContainsFunc(open, func(t *task.Task) bool { return t.ID == m.TaskID })
		if ok && known && (m.Mode == MergeDuplicate || m.Mode == MergeSubtask) {
			res.Merge = &Merge{TaskID: m.TaskID, Mode: m.Mode, Draft: pos, Text: res.Drafts[pos].Text}
		}
	}
	return res, nil
}

func normalizeCategory(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if slices.Contains(task.Categories, c) {
		return c
	}
	return task.DefaultCategory
}

func normalizeLocation(l string) string {
	switch l = strings.ToLower(strings.TrimSpace(l)); l {
	case task.LocationHome, task.LocationOut, task.LocationEither:
		return l
	}
	return task.LocationEither
}
