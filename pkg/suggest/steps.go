package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"tableflip.dev/adhdo/pkg/llm"
	"tableflip.dev/adhdo/pkg/task"
)

// FallbackSteps is used when the model cannot break a task down.
var FallbackSteps = []string{
	"Take a deep breath",
	"Gather what you need",
	"Do the smallest part first",
	"Keep going!",
	"You did it! 🎉",
}

// MaxSteps caps a breakdown.
const MaxSteps = 6

const stepsSystem = `Break tasks into TINY 2-5 minute steps for ADHD brains. First step should be SO small it's impossible not to do.`

// Steps asks for 4-6 micro-steps for t. The boolean is true when the fixed
// fallback list was returned. A missing credential is returned as an error.
func (r *Requester) Steps(ctx context.Context, t *task.Task) ([]string, bool, error) {
	if r.LLM == nil {
		return nil, false, llm.ErrNoCredential
	}
	prompt := fmt.Sprintf("Task: %q\nReturn ONLY a JSON array of 4-6 steps: [\"step1\", \"step2\", ...]", t.Text)
	raw, err := r.complete(ctx, stepsSystem, prompt)
	if err != nil {
		r.logger().Warn("suggest: steps failed", "task", t.ID, "err", err)
		return fallbackSteps(), true, nil
	}
	steps, err := parseSteps(raw)
	if err != nil {
		r.logger().Warn("suggest: unusable steps", "task", t.ID, "err", err)
		return fallbackSteps(), true, nil
	}
	return steps, false, nil
}

func fallbackSteps() []string {
	return append([]string(nil), FallbackSteps...)
}

func parseSteps(raw string) ([]string, error) {
	arr, err := llm.ExtractArray(raw)
	if err != nil {
		return nil, err
	}
	var steps []string
	if err := json.Unmarshal([]byte(arr), &steps); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidReply, err)
	}
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no steps", errInvalidReply)
	}
	if len(out) > MaxSteps {
		out = out[:MaxSteps]
	}
	return out, nil
}
