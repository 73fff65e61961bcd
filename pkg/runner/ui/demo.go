package ui

import (
	"context"
	"errors"
	"io"
	"time"

	"tableflip.dev/adhdo/pkg/app"
	"tableflip.dev/adhdo/pkg/printers"
	"tableflip.dev/adhdo/pkg/task"
	"tableflip.dev/adhdo/pkg/timeutil"
)

// StaticDemo returns a spread of sample tasks across every section.
func StaticDemo(now time.Time) []task.Draft {
	today := timeutil.Date(now)
	return []task.Draft{
		{Text: "Call the dentist about the cleaning", DoDate: today, Category: "phone", Location: task.LocationHome},
		{Text: "Pay the electric bill", DoDate: today, Category: "financial", Location: task.LocationHome},
		{Text: "Pick up the prescription", DoDate: today, Category: "errand", Location: task.LocationOut},
		{Text: "Clean out the fridge", DoDate: timeutil.AddDays(now, 1), Category: "cleaning", Location: task.LocationHome,
			Subtasks: []string{"Toss expired food", "Wipe the shelves", "Make a grocery list"}},
		{Text: "Return the library books", DoDate: timeutil.AddDays(now, 3), Category: "errand", Location: task.LocationOut},
		{Text: "Book the car service", DoDate: timeutil.AddDays(now, 14), Category: "phone", Location: task.LocationEither},
		{Text: "Sort the photo backlog", Category: "home", Location: task.LocationHome},
		{Text: "Look into a standing desk", Category: "shopping", Location: task.LocationEither},
	}
}

// Demo seeds the sample tasks and prints the resulting sections.
type Demo struct {
	App *app.Service
	Out io.Writer
}

// Do executes the seed.
func (d *Demo) Do(ctx context.Context) error {
	if d.App == nil {
		return errors.New("can not seed, no service")
	}
	now := time.Now()
	if d.App.Now != nil {
		now = d.App.Now()
	}
	first, err := d.App.Add(ctx, StaticDemo(now)[0])
	if err != nil {
		return err
	}
	if _, err := d.App.ToggleUrgent(ctx, first.ID); err != nil {
		return err
	}
	for _, draft := range StaticDemo(now)[1:] {
		if _, err := d.App.Add(ctx, draft); err != nil {
			return err
		}
	}
	sections, err := d.App.Sections(ctx)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{Now: now, Out: d.Out}
	pp.NewLine()
	pp.Sections(sections)
	return nil
}
