package commands

import (
	"log/slog"
	"os"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/adhdo/pkg/commands/options"
)

var (
	output  = &options.OutputOptions{}
	verbose bool
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:           "adhdo",
		SilenceErrors: true,
		Short:         base.Wrap80("One task at a time. Dump everything, do the next thing."),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr.")

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addNow(topLevel)
	addSkip(topLevel)
	addAdd(topLevel)
	addDump(topLevel)
	addGet(topLevel)
	addComplete(topLevel)
	addUncomplete(topLevel)
	addUrgent(topLevel)
	addSchedule(topLevel)
	addMove(topLevel)
	addReorder(topLevel)
	addEdit(topLevel)
	addSubtask(topLevel)
	addDelete(topLevel)
	addSteps(topLevel)
	addReport(topLevel)
	addInfo(topLevel)
	addSettings(topLevel)
	addUI(topLevel)
	addDemo(topLevel)
	addServe(topLevel)
	addMCP(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
	addUpgrade(topLevel)
}
