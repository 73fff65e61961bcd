// Package suggest asks a language model to pick the next task from a priority
// pool, and falls back to a deterministic pick whenever the model cannot help.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tableflip.dev/adhdo/pkg/bucket"
	"tableflip.dev/adhdo/pkg/llm"
	"tableflip.dev/adhdo/pkg/task"
	"tableflip.dev/adhdo/pkg/weather"
)

// Fallback copy.
const (
	UrgentHeadline  = "🔥 This one's urgent!"
	DefaultHeadline = "Let's knock this out"
	DefaultSubtitle = "You've got this!"
)

var errInvalidReply = errors.New("suggest: invalid reply")

// Context carries the signals mentioned in the prompt.
type Context struct {
	Now     time.Time
	Evening bool
	Weather *weather.Reading
}

// Suggestion is the single task to work on now, plus optional batched tasks
// that share an action or context with it.
type Suggestion struct {
	Task        *task.Task   `json:"task"`
	Headline    string       `json:"headline"`
	Subtitle    string       `json:"subtitle"`
	Batch       []*task.Task `json:"batch,omitempty"`
	BatchReason string       `json:"batchReason,omitempty"`
	Pool        string       `json:"pool"`
	Fallback    bool         `json:"fallback,omitempty"`
}

// Fallback picks the first task of the pool with urgency based copy.
func Fallback(pool bucket.Pool) *Suggestion {
	if len(pool.Tasks) == 0 {
		return nil
	}
	first := pool.Tasks[0]
	headline := DefaultHeadline
	if first.Urgent {
		headline = UrgentHeadline
	}
	return &Suggestion{
		Task:     first,
		Headline: headline,
		Subtitle: DefaultSubtitle,
		Pool:     pool.Name(),
		Fallback: true,
	}
}

// Requester talks to the completion service.
type Requester struct {
	LLM    llm.Completer
	Model  string
	Logger *slog.Logger
}

func (r *Requester) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Requester) complete(ctx context.Context, system, prompt string) (string, error) {
	if r.LLM == nil {
		return "", llm.ErrNoCredential
	}
	return r.LLM.Complete(ctx, llm.Request{Model: r.Model, System: system, Prompt: prompt})
}

// Suggest picks one task from pool. others is the wider candidate set that
// batched tasks may be drawn from; it may include the pool itself. Any
// failure yields Fallback(pool).
func (r *Requester) Suggest(ctx context.Context, pool bucket.Pool, others []*task.Task, sc Context) *Suggestion {
	if len(pool.Tasks) == 0 {
		return nil
	}
	reply, err := r.complete(ctx, suggestSystem, suggestPrompt(pool, others, sc))
	if err != nil {
		r.logger().Warn("suggest: completion failed", "err", err)
		return Fallback(pool)
	}
	s, err := resolve(reply, pool, others)
	if err != nil {
		r.logger().Warn("suggest: unusable reply", "err", err)
		return Fallback(pool)
	}
	return s
}

const suggestSystem = `You are an ADHD-friendly task assistant. Pick ONE task from the provided priority pool. These are already filtered by priority - just pick the best one to do right now. Be supportive, never judgmental.

Rules:
- If evening mode is on, prefer home/computer tasks if available
- Look for batching opportunities: other open tasks with the same action (calls, emails, errands), the same place, or the same category
- Only batch when it genuinely saves effort; an empty batch is fine
- Quick wins build momentum`

func suggestPrompt(pool bucket.Pool, others []*task.Task, sc Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Time: %s\n", sc.Now.Format("3:04 PM"))
	fmt.Fprintf(&b, "Day: %s\n", sc.Now.Weekday())
	fmt.Fprintf(&b, "Evening mode: %t\n", sc.Evening)
	if sc.Weather != nil {
		fmt.Fprintf(&b, "Weather: %s\n", sc.Weather)
	} else {
		b.WriteString("Weather: unknown\n")
	}
	fmt.Fprintf(&b, "Pool: %s\n\n", pool.Name())

	dates := bucket.DatesAt(sc.Now)
	b.WriteString("Tasks to choose from:\n")
	inPool := make(map[string]bool, len(pool.Tasks))
	for _, t := range pool.Tasks {
		inPool[t.ID] = true
		writeTaskLine(&b, t, dates)
	}

	var rest []*task.Task
	for _, t := range others {
		if t != nil && !inPool[t.ID] {
			rest = append(rest, t)
		}
	}
	if len(rest) > 0 {
		b.WriteString("\nOther open tasks (batch candidates only):\n")
		for _, t := range rest {
			writeTaskLine(&b, t, dates)
		}
	}

	b.WriteString(`
Return ONLY JSON:
{"taskId":"...","headline":"motivating 5-10 words","subtitle":"supportive message","batchTaskIds":[],"batchReason":"why these belong together"}`)
	return b.String()
}

func writeTaskLine(b *strings.Builder, t *task.Task, dates bucket.Dates) {
	fmt.Fprintf(b, "- ID: %s | %q | urgent: %t | bucket: %s", t.ID, t.Text, t.Urgent, dates.Of(t))
	if t.Category != "" {
		fmt.Fprintf(b, " | category: %s", t.Category)
	}
	if t.Location != "" {
		fmt.Fprintf(b, " | location: %s", t.Location)
	}
	b.WriteString("\n")
}

// reply is the expected model answer. bonusTaskId is the older single-batch
// shape and is still accepted.
type reply struct {
	TaskID       string   `json:"taskId"`
	Headline     string   `json:"headline"`
	Subtitle     string   `json:"subtitle"`
	BatchTaskIDs []string `json:"batchTaskIds"`
	BatchReason  string   `json:"batchReason"`
	BonusTaskID  *string  `json:"bonusTaskId"`
	BonusReason  string   `json:"bonusReason"`
}

func resolve(raw string, pool bucket.Pool, others []*task.Task) (*Suggestion, error) {
	obj, err := llm.ExtractObject(raw)
	if err != nil {
		return nil, err
	}
	var rep reply
	if err := json.Unmarshal([]byte(obj), &rep); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidReply, err)
	}
	rep.Headline = strings.TrimSpace(rep.Headline)
	if rep.TaskID == "" || rep.Headline == "" {
		return nil, fmt.Errorf("%w: taskId and headline are required", errInvalidReply)
	}

	var primary *task.Task
	for _, t := range pool.Tasks {
		if t.ID == rep.TaskID {
			primary = t
			break
		}
	}
	if primary == nil {
		return nil, fmt.Errorf("%w: task %q is not in the pool", errInvalidReply, rep.TaskID)
	}

	s := &Suggestion{
		Task:     primary,
		Headline: rep.Headline,
		Subtitle: strings.TrimSpace(rep.Subtitle),
		Pool:     pool.Name(),
	}
	if s.Subtitle == "" {
		s.Subtitle = DefaultSubtitle
	}

	ids := rep.BatchTaskIDs
	reason := rep.BatchReason
	if len(ids) == 0 && rep.BonusTaskID != nil {
		ids = []string{*rep.BonusTaskID}
		reason = rep.BonusReason
	}

	byID := make(map[string]*task.Task, len(pool.Tasks)+len(others))
	for _, t := range pool.Tasks {
		byID[t.ID] = t
	}
	for _, t := range others {
		if t != nil {
			byID[t.ID] = t
		}
	}
	seen := map[string]bool{primary.ID: true}
	for _, id := range ids {
		t, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		s.Batch = append(s.Batch, t)
	}
	if len(s.Batch) > 0 {
		s.BatchReason = strings.TrimSpace(reason)
	}
	return s, nil
}
