// Package dump provides the brain dump runner: free text in, tasks out.
package dump

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"

	"tableflip.dev/adhdo/pkg/app"
	"tableflip.dev/adhdo/pkg/parse"
	"tableflip.dev/adhdo/pkg/printers"
	"tableflip.dev/adhdo/pkg/task"
)

// Dump parses free text into drafts and stores them.
type Dump struct {
	Input string
	// Interactive asks before merging into an existing task.
	Interactive bool
	// AcceptMerge resolves a merge proposal when not interactive.
	AcceptMerge bool
	DryRun      bool
	ShowID      bool
	JSON        bool

	App *app.Service
	In  io.Reader
	Out io.Writer
}

type result struct {
	*parse.Result
	Created []*task.Task `json:"created,omitempty"`
}

// Do executes the capture.
func (n *Dump) Do(ctx context.Context) error {
	if n.App == nil {
		return errors.New("can not capture, no service")
	}
	if strings.TrimSpace(n.Input) == "" {
		return errors.New("nothing to capture")
	}

	res, err := n.App.Capture(ctx, n.Input)
	if err != nil {
		if errors.Is(err, app.ErrNoCredential) && !n.JSON && res != nil {
			_, _ = color.New(color.FgYellow).Fprintln(n.out(), res.Response)
			return nil
		}
		return err
	}

	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	if !n.JSON {
		pp.NewLine()
		pp.Parsed(res)
	}
	if n.DryRun || len(res.Drafts) == 0 {
		if n.JSON {
			return printers.JSON(n.Out, result{Result: res})
		}
		return nil
	}

	accept := n.AcceptMerge
	if res.Merge != nil && n.Interactive && !n.JSON {
		if accept, err = n.confirmMerge(ctx, res); err != nil {
			return err
		}
	}

	created, err := n.App.Commit(ctx, res, accept)
	if err != nil {
		return err
	}
	if n.JSON {
		return printers.JSON(n.Out, result{Result: res, Created: created})
	}
	_, _ = color.New(color.Bold).Fprintf(n.out(), "Added %d %s\n", len(created), plural(len(created)))
	pp.Tasks(created...)
	return nil
}

func (n *Dump) confirmMerge(ctx context.Context, res *parse.Result) (bool, error) {
	m := res.Merge
	existing, err := n.App.Get(ctx, m.TaskID)
	if err != nil {
		return false, err
	}
	draft := res.Drafts[m.Draft]

	label := fmt.Sprintf("%q looks like %q. Skip the duplicate", draft.Text, existing.Text)
	if m.Mode == parse.MergeSubtask {
		label = fmt.Sprintf("Add %q as a step of %q", draft.Text, existing.Text)
	}
	in := n.In
	if in == nil {
		in = os.Stdin
	}
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Default:   "y",
		Stdin:     io.NopCloser(in),
		Stdout:    nopWriteCloser{n.out()},
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (n *Dump) out() io.Writer {
	if n.Out != nil {
		return n.Out
	}
	return color.Output
}

func plural(n int) string {
	if n == 1 {
		return "task"
	}
	return "tasks"
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
