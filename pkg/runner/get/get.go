// Package get provides the runner for listing tasks.
package get

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"tableflip.dev/adhdo/pkg/app"
	"tableflip.dev/adhdo/pkg/bucket"
	"tableflip.dev/adhdo/pkg/printers"
)

// Get prints sections, one section, or a single task in detail.
type Get struct {
	ShowID  bool
	JSON    bool
	Section string
	ID      string

	App *app.Service
	Out io.Writer
}

// Do executes the listing.
func (n *Get) Do(ctx context.Context) error {
	if n.App == nil {
		return errors.New("can not get, no service")
	}
	now := time.Now()
	if n.App.Now != nil {
		now = n.App.Now()
	}
	pp := printers.PrettyPrint{ShowID: n.ShowID, Now: now, Out: n.Out}

	if id := strings.TrimSpace(n.ID); id != "" {
		t, err := n.App.Get(ctx, id)
		if err != nil {
			return err
		}
		if n.JSON {
			return printers.JSON(n.Out, t)
		}
		pp.NewLine()
		pp.Detail(t)
		return nil
	}

	sections, err := n.App.Sections(ctx)
	if err != nil {
		return err
	}

	if n.Section != "" {
		name, err := bucket.ParseName(n.Section)
		if err != nil {
			return err
		}
		if n.JSON {
			return printers.JSON(n.Out, sections[name])
		}
		pp.NewLine()
		pp.TitleWithCount(printers.SectionTitles[name], len(sections[name]))
		pp.Tasks(sections[name]...)
		return nil
	}

	if n.JSON {
		return printers.JSON(n.Out, sections)
	}
	pp.NewLine()
	pp.Sections(sections)
	return nil
}
