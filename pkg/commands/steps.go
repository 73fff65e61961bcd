package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/adhdo/pkg/commands/options"
	"tableflip.dev/adhdo/pkg/runner/steps"
)

func addSteps(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "steps <task id>",
		Aliases: []string{"breakdown"},
		Short:   "Break a task into tiny steps",
		Example: `
adhdo steps <task id>
`,
		Args: requireID(io, 1, "requires a task id"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, svc, err := loadService()
			if err != nil {
				return output.HandleError(err)
			}
			s := steps.Steps{ID: io.ID, JSON: output.JSON, App: svc}
			return output.HandleError(s.Do(cmd.Context()))
		},
		ValidArgsFunction: taskCompletions,
	}

	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
