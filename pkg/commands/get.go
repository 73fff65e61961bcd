package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/adhdo/pkg/commands/options"
	"tableflip.dev/adhdo/pkg/runner/get"
)

func addGet(topLevel *cobra.Command) {
	so := &options.SectionOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "get [task id]",
		Aliases: []string{"list", "ls"},
		Short:   "List tasks by section, or show one task",
		Example: `
adhdo get
adhdo get --section today
adhdo get 1718000000000-4f2a9c
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			_, svc, err := loadService()
			if err != nil {
				return output.HandleError(err)
			}
			g := get.Get{
				ShowID:  io.ShowID,
				JSON:    output.JSON,
				Section: so.Section,
				App:     svc,
			}
			if len(args) == 1 {
				g.ID = args[0]
			}
			return output.HandleError(g.Do(cmd.Context()))
		},
		ValidArgsFunction: taskCompletions,
	}

	options.AddSectionArgs(cmd, so)
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
