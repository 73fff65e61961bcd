package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/adhdo/pkg/commands/options"
	"tableflip.dev/adhdo/pkg/printers"
	"tableflip.dev/adhdo/pkg/timeutil"
)

func addReport(topLevel *cobra.Command) {
	var last string
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Display recently completed tasks grouped by category",
		Long: `Report lists completed tasks grouped by category within the specified time window.

Examples:
  adhdo report
  adhdo report --last 3d
  adhdo report --last 1w2d`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			duration, label, err := timeutil.ParseWindow(last)
			if err != nil {
				return output.HandleError(err)
			}
			_, svc, err := loadService()
			if err != nil {
				return output.HandleError(err)
			}
			until := time.Now()
			result, err := svc.Report(cmd.Context(), until.Add(-duration), until)
			if err != nil {
				return output.HandleError(err)
			}
			if output.JSON {
				return printers.JSON(cmd.OutOrStdout(), result)
			}
			pp := printers.PrettyPrint{ShowID: io.ShowID}
			pp.Report(result, label)
			return nil
		},
	}

	cmd.Flags().StringVar(&last, "last", timeutil.DefaultRetention, "time window to include (for example 3d, 1w)")
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
