// Package steps provides the runner that breaks a task into micro-steps.
package steps

import (
	"context"
	"errors"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/adhdo/pkg/app"
	"tableflip.dev/adhdo/pkg/printers"
	"tableflip.dev/adhdo/pkg/suggest"
	"tableflip.dev/adhdo/pkg/task"
)

// Steps prints four to six tiny steps for a task.
type Steps struct {
	ID   string
	JSON bool

	App *app.Service
	Out io.Writer
}

type result struct {
	Task     *task.Task `json:"task"`
	Steps    []string   `json:"steps"`
	Fallback bool       `json:"fallback,omitempty"`
}

// Do executes the breakdown. Without a key the generic steps are shown.
func (n *Steps) Do(ctx context.Context) error {
	if n.App == nil {
		return errors.New("can not break down, no service")
	}
	t, steps, fallback, err := n.App.Steps(ctx, n.ID)
	if errors.Is(err, app.ErrNoCredential) {
		steps, fallback, err = append([]string(nil), suggest.FallbackSteps...), true, nil
	}
	if err != nil {
		return err
	}
	if n.JSON {
		return printers.JSON(n.Out, result{Task: t, Steps: steps, Fallback: fallback})
	}
	pp := printers.PrettyPrint{Out: n.Out}
	pp.NewLine()
	pp.Steps(t, steps)
	if fallback {
		out := n.Out
		if out == nil {
			out = color.Output
		}
		_, _ = color.New(color.Faint, color.Italic).Fprintln(out, "(generic steps, the assistant was unavailable)")
	}
	return nil
}
