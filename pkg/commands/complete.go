package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/adhdo/pkg/commands/options"
	"tableflip.dev/adhdo/pkg/runner/complete"
)

func addComplete(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "complete <task id>",
		Aliases: []string{"done"},
		Short:   "Mark a task done",
		Example: `
adhdo complete <task id>
`,
		Args: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if len(args) != 1 {
				return errors.New("requires a task id")
			}
			io.ID = args[0]
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, svc, err := loadService()
			if err != nil {
				return output.HandleError(err)
			}
			s := complete.Complete{ID: io.ID, JSON: output.JSON, App: svc}
			return output.HandleError(s.Do(cmd.Context()))
		},
		ValidArgsFunction: taskCompletions,
	}

	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

func addUncomplete(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "uncomplete <task id>",
		Aliases: []string{"undo", "reopen"},
		Short:   "Reopen a completed task",
		Example: `
adhdo uncomplete <task id>
`,
		Args: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if len(args) != 1 {
				return errors.New("requires a task id")
			}
			io.ID = args[0]
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, svc, err := loadService()
			if err != nil {
				return output.HandleError(err)
			}
			s := complete.Complete{ID: io.ID, Undo: true, JSON: output.JSON, App: svc}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
