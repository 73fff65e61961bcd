package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/adhdo/pkg/commands/options"
	"tableflip.dev/adhdo/pkg/runner/now"
)

func addNow(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "now",
		Short: "Show the one task to do right now",
		Example: `
adhdo now
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			_, svc, err := loadService()
			if err != nil {
				return output.HandleError(err)
			}
			n := now.Now{ShowID: io.ShowID, JSON: output.JSON, App: svc}
			return output.HandleError(n.Do(cmd.Context()))
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

func addSkip(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "skip <task id>",
		Short: "Ask for a different suggestion than the given task",
		Example: `
adhdo skip 1718000000000-4f2a9c
`,
		Args: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if len(args) != 1 {
				return errors.New("requires the id of the suggestion to skip")
			}
			io.ID = args[0]
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, svc, err := loadService()
			if err != nil {
				return output.HandleError(err)
			}
			n := now.Now{Skip: io.ID, ShowID: io.ShowID, JSON: output.JSON, App: svc}
			return output.HandleError(n.Do(cmd.Context()))
		},
		ValidArgsFunction: taskCompletions,
	}

	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
