package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tableflip.dev/adhdo/pkg/bucket"
	"tableflip.dev/adhdo/pkg/gif"
	"tableflip.dev/adhdo/pkg/llm"
	"tableflip.dev/adhdo/pkg/task"
)

// MinCompletedToCelebrate is how many same-day completions earn a celebration.
const MinCompletedToCelebrate = 3

// Celebration is the end-of-day "all caught up" card.
type Celebration struct {
	Headline string `json:"headline"`
	Subtitle string `json:"subtitle"`
	Image    string `json:"image,omitempty"`
	Done     int    `json:"done"`
	Fallback bool   `json:"fallback,omitempty"`
}

// DoneToday returns the tasks completed on now's calendar day.
func DoneToday(tasks []*task.Task, now time.Time) []*task.Task {
	var out []*task.Task
	for _, t := range tasks {
		if t != nil && t.CompletedOn(now) {
			out = append(out, t)
		}
	}
	return out
}

// ShouldCelebrate reports whether both today tiers are empty while other open
// tasks remain and enough tasks were finished today.
func ShouldCelebrate(tasks []*task.Task, now time.Time) bool {
	b := bucket.Partition(now, tasks)
	if len(b[bucket.Today]) > 0 || b.Len() == 0 {
		return false
	}
	return len(DoneToday(tasks, now)) >= MinCompletedToCelebrate
}

// StaticCelebration is shown when the model or image search is unavailable.
func StaticCelebration(done int) *Celebration {
	return &Celebration{
		Headline: "All caught up for today! 🎉",
		Subtitle: fmt.Sprintf("You finished %d tasks today. Go enjoy it.", done),
		Done:     done,
		Fallback: true,
	}
}

// Celebrator writes celebration copy and finds an image for it.
type Celebrator struct {
	*Requester
	Images gif.Searcher
}

const celebrateSystem = `You celebrate wins for people with ADHD. Be loud, warm, and a little silly. Never mention what is left to do.`

// Celebrate builds a card for the tasks in done.
func (c *Celebrator) Celebrate(ctx context.Context, done []*task.Task) *Celebration {
	var b strings.Builder
	fmt.Fprintf(&b, "Cleared today's list. Finished %d tasks:\n", len(done))
	for _, t := range done {
		fmt.Fprintf(&b, "- %q\n", t.Text)
	}
	b.WriteString(`
Return ONLY JSON:
{"headline":"3-8 words","subtitle":"one short sentence","searchTerm":"2-3 word gif search"}`)

	raw, err := c.complete(ctx, celebrateSystem, b.String())
	if err != nil {
		c.logger().Warn("suggest: celebration failed", "err", err)
		return StaticCelebration(len(done))
	}
	var rep struct {
		Headline   string `json:"headline"`
		Subtitle   string `json:"subtitle"`
		SearchTerm string `json:"searchTerm"`
	}
	obj, err := llm.ExtractObject(raw)
	if err == nil {
		err = json.Unmarshal([]byte(obj), &rep)
	}
	if err != nil || strings.TrimSpace(rep.Headline) == "" {
		c.logger().Warn("suggest: unusable celebration", "err", err)
		return StaticCelebration(len(done))
	}

	out := &Celebration{
		Headline: strings.TrimSpace(rep.Headline),
		Subtitle: strings.TrimSpace(rep.Subtitle),
		Done:     len(done),
	}
	if term := strings.TrimSpace(rep.SearchTerm); term != "" && c.Images != nil {
		img, err := c.Images.Search(ctx, term)
		if err != nil {
			c.logger().Debug("suggest: image search", "term", term, "err", err)
		} else {
			out.Image = img
		}
	}
	return out
}
