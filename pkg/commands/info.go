package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/adhdo/pkg/commands/options"
	"tableflip.dev/adhdo/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show where adhdo keeps its data and how it is configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			cfg, svc, err := loadService()
			if err != nil {
				return output.HandleError(err)
			}
			i := info.Info{Config: cfg, App: svc, JSON: output.JSON}
			return output.HandleError(i.Do(cmd.Context()))
		},
	}

	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

func addSettings(topLevel *cobra.Command) {
	var (
		apiKey      string
		eveningHour int
	)

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Store the API key and evening hour",
		Example: `
adhdo settings --api-key sk-ant-...
adhdo settings --evening-hour 20
adhdo settings --api-key ""
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			cfg, svc, err := loadService()
			if err != nil {
				return output.HandleError(err)
			}
			i := info.Info{Config: cfg, App: svc, JSON: output.JSON}
			if cmd.Flags().Changed("api-key") {
				i.APIKey = &apiKey
			}
			if cmd.Flags().Changed("evening-hour") {
				i.EveningHour = &eveningHour
			}
			return output.HandleError(i.Do(cmd.Context()))
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "Anthropic API key used for suggestions. Empty clears it.")
	cmd.Flags().IntVar(&eveningHour, "evening-hour", 19, "Hour (1-23) when evening mode starts hiding errands.")
	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
