package commands

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"
)

const installPath = "tableflip.dev/adhdo/cmd/adhdo@latest"

func addUpgrade(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade adhdo cli.",
		Example: `
adhdo upgrade
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			ex := exec.CommandContext(cmd.Context(), "go", "install", installPath)
			ex.Stdout = cmd.OutOrStdout()
			ex.Stderr = cmd.ErrOrStderr()
			if err := ex.Run(); err != nil {
				return output.HandleError(fmt.Errorf("go install %s: %w", installPath, err))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "installed %s\n", installPath)
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
