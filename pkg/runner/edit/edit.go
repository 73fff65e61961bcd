// Package edit provides runners for single-task mutations.
package edit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/adhdo/pkg/app"
	"tableflip.dev/adhdo/pkg/printers"
	"tableflip.dev/adhdo/pkg/task"
)

// Mutation changes one task and returns its new state.
type Mutation func(ctx context.Context, id string) (*task.Task, error)

// Edit applies a Mutation and prints the task in detail.
type Edit struct {
	ID     string
	Apply  Mutation
	ShowID bool
	JSON   bool

	App *app.Service
	Out io.Writer
}

// Do executes the mutation.
func (n *Edit) Do(ctx context.Context) error {
	if n.App == nil {
		return errors.New("can not edit, no service")
	}
	id := strings.TrimSpace(n.ID)
	if id == "" {
		return errors.New("requires a task id")
	}
	if n.Apply == nil {
		return errors.New("nothing to change")
	}
	t, err := n.Apply(ctx, id)
	if err != nil {
		return err
	}
	if n.JSON {
		return printers.JSON(n.Out, t)
	}
	now := time.Now()
	if n.App.Now != nil {
		now = n.App.Now()
	}
	pp := printers.PrettyPrint{ShowID: n.ShowID, Now: now, Out: n.Out}
	pp.NewLine()
	pp.Detail(t)
	return nil
}

// Delete removes a task.
type Delete struct {
	ID   string
	JSON bool

	App *app.Service
	Out io.Writer
}

// Do executes the delete.
func (n *Delete) Do(ctx context.Context) error {
	if n.App == nil {
		return errors.New("can not delete, no service")
	}
	id := strings.TrimSpace(n.ID)
	if err := n.App.Delete(ctx, id); err != nil {
		return err
	}
	if n.JSON {
		return printers.JSON(n.Out, map[string]string{"deleted": id})
	}
	out := n.Out
	if out == nil {
		out = color.Output
	}
	_, err := fmt.Fprintf(out, "deleted %s\n", color.New(color.Faint).Sprint(id))
	return err
}
