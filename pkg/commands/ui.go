package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/adhdo/pkg/runner/ui"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the full-screen do-this-now view",
		Example: `
adhdo ui
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			cfg, svc, err := loadService()
			if err != nil {
				return err
			}
			i := ui.UI{App: svc, RefreshDelay: cfg.RefreshDelay}
			return i.Do(cmd.Context())
		},
	}

	topLevel.AddCommand(cmd)
}

func addDemo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:    "demo",
		Short:  "seed a spread of sample tasks",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			_, svc, err := loadService()
			if err != nil {
				return err
			}
			d := ui.Demo{App: svc}
			return d.Do(cmd.Context())
		},
	}

	topLevel.AddCommand(cmd)
}
