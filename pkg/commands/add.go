package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/adhdo/pkg/commands/options"
	"tableflip.dev/adhdo/pkg/runner/add"
)

func addAdd(topLevel *cobra.Command) {
	do := &options.DraftOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task",
		Example: `
adhdo add call the dentist
adhdo add pay rent --on 2025-07-01 --category financial --urgent
adhdo add clean the garage -s "clear a path" -s "donate boxes"
`,
		Args: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if len(args) < 1 {
				return errors.New("requires a task")
			}
			do.Text = strings.Join(args, " ")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			draft, err := do.Draft()
			if err != nil {
				return output.HandleError(err)
			}
			_, svc, err := loadService()
			if err != nil {
				return output.HandleError(err)
			}
			s := add.Add{
				Draft:  draft,
				Urgent: do.Urgent,
				ShowID: io.ShowID,
				JSON:   output.JSON,
				App:    svc,
			}
			return output.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddDraftArgs(cmd, do)
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
