// Package add provides the runner for creating a single task.
package add

import (
	"context"
	"errors"
	"io"
	"time"

	"tableflip.dev/adhdo/pkg/app"
	"tableflip.dev/adhdo/pkg/bucket"
	"tableflip.dev/adhdo/pkg/printers"
	"tableflip.dev/adhdo/pkg/task"
)

// Add stores a new task and prints the section it landed in.
type Add struct {
	Draft  task.Draft
	Urgent bool
	ShowID bool
	JSON   bool

	App *app.Service
	Out io.Writer
}

// Do executes the add.
func (n *Add) Do(ctx context.Context) error {
	if n.App == nil {
		return errors.New("can not add, no service")
	}

	t, err := n.App.Add(ctx, n.Draft)
	if err != nil {
		return err
	}
	if n.Urgent {
		if t, err = n.App.ToggleUrgent(ctx, t.ID); err != nil {
			return err
		}
	}

	if n.JSON {
		return printers.JSON(n.Out, t)
	}

	now := time.Now()
	if n.App.Now != nil {
		now = n.App.Now()
	}
	sections, err := n.App.Sections(ctx)
	if err != nil {
		return err
	}
	name := bucket.DatesAt(now).Of(t)

	pp := printers.PrettyPrint{ShowID: n.ShowID, Now: now, Out: n.Out}
	pp.NewLine()
	pp.TitleWithCount(printers.SectionTitles[name], len(sections[name]))
	pp.Tasks(sections[name]...)
	return nil
}
