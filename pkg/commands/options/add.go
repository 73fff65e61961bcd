package options

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/adhdo/pkg/task"
	"tableflip.dev/adhdo/pkg/timeutil"
)

// DraftOptions
type DraftOptions struct {
	Text     string
	On       string
	Category string
	Location string
	Subtasks []string
	Urgent   bool
}

func AddDraftArgs(cmd *cobra.Command, o *DraftOptions) {
	cmd.Flags().StringVar(&o.On, "on", "",
		`Day to do it, example: --on="2025-02-28". Empty leaves it in the void.`)
	cmd.Flags().StringVarP(&o.Category, "category", "c", "",
		fmt.Sprintf("Category, one of %s.", strings.Join(task.Categories, ", ")))
	cmd.Flags().StringVarP(&o.Location, "location", "l", "",
		"Where it can be done: home, out or either.")
	cmd.Flags().StringArrayVarP(&o.Subtasks, "step", "s", nil,
		"Add a subtask, repeatable.")
	cmd.Flags().BoolVarP(&o.Urgent, "urgent", "u", false,
		"Mark the task urgent.")

	_ = cmd.RegisterFlagCompletionFunc("category", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return task.Categories, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("location", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{task.LocationHome, task.LocationOut, task.LocationEither}, cobra.ShellCompDirectiveNoFileComp
	})
}

// Draft validates the flags into a task draft.
func (o *DraftOptions) Draft() (task.Draft, error) {
	if o.On != "" && !timeutil.ValidDate(o.On) {
		return task.Draft{}, fmt.Errorf("--on %q is not a YYYY-MM-DD date", o.On)
	}
	switch o.Location {
	case "", task.LocationHome, task.LocationOut, task.LocationEither:
	default:
		return task.Draft{}, fmt.Errorf("--location %q must be home, out or either", o.Location)
	}
	return task.Draft{
		Text:     o.Text,
		DoDate:   o.On,
		Category: strings.ToLower(o.Category),
		Location: o.Location,
		Subtasks: o.Subtasks,
	}, nil
}
