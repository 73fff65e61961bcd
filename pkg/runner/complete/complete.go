// Package complete provides the runner logic for marking tasks complete.
package complete

import (
	"context"
	"errors"
	"io"
	"time"

	"tableflip.dev/adhdo/pkg/app"
	"tableflip.dev/adhdo/pkg/printers"
	"tableflip.dev/adhdo/pkg/suggest"
	"tableflip.dev/adhdo/pkg/task"
)

// Complete marks a task as completed, or reopens it with Undo.
type Complete struct {
	ID   string
	Undo bool
	JSON bool

	App *app.Service
	Out io.Writer
}

type result struct {
	Task        *task.Task           `json:"task"`
	Cheer       string               `json:"cheer,omitempty"`
	Celebration *suggest.Celebration `json:"celebration,omitempty"`
}

// Do executes the completion for the configured task ID. Finishing the last
// task of the day can earn a celebration card.
func (n *Complete) Do(ctx context.Context) error {
	if n.App == nil {
		return errors.New("can not complete, no service")
	}

	if n.Undo {
		t, err := n.App.Uncomplete(ctx, n.ID)
		if err != nil {
			return err
		}
		if n.JSON {
			return printers.JSON(n.Out, result{Task: t})
		}
		pp := printers.PrettyPrint{ShowID: true, Out: n.Out}
		pp.NewLine()
		pp.Tasks(t)
		return nil
	}

	t, err := n.App.Complete(ctx, n.ID)
	if err != nil {
		return err
	}
	res := result{Task: t, Cheer: suggest.Pick(suggest.Cheers)}

	c, err := n.App.Celebrate(ctx)
	if err != nil && !errors.Is(err, app.ErrNoCredential) {
		return err
	}
	res.Celebration = c

	if n.JSON {
		return printers.JSON(n.Out, res)
	}
	now := time.Now()
	if n.App.Now != nil {
		now = n.App.Now()
	}
	pp := printers.PrettyPrint{Now: now, Out: n.Out}
	pp.NewLine()
	pp.Cheer(t, res.Cheer)
	pp.Celebration(res.Celebration)
	return nil
}
