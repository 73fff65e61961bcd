package commands

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates bash completion scripts",
		Long: `To load completion run

. <(adhdo completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(adhdo completion)
`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = topLevel.GenBashCompletion(os.Stdout)
		},
	}

	topLevel.AddCommand(cmd)
}

// taskCompletions offers open task ids with their text as the description.
func taskCompletions(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	_, svc, err := loadService()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	open, err := svc.Open(context.Background())
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	out := make([]string, 0, len(open))
	for _, t := range open {
		if strings.HasPrefix(t.ID, toComplete) {
			out = append(out, t.ID+"\t"+t.Text)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
