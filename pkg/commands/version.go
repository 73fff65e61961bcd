package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	goversion "go.hein.dev/go-version"
)

// Set with -ldflags "-X tableflip.dev/adhdo/pkg/commands.version=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func addVersion(topLevel *cobra.Command) {
	shortened := false
	format := "json"
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Get adhdo version.",
		Example: `
adhdo version
`,
		Run: func(_ *cobra.Command, _ []string) {
			resp := goversion.FuncWithOutput(shortened, version, commit, date, format)
			fmt.Print(resp)
		},
	}

	cmd.Flags().BoolVarP(&shortened, "short", "s", false, "Print just the version number.")
	cmd.Flags().StringVarP(&format, "output", "o", "json", "Output format. One of 'yaml' or 'json'.")

	topLevel.AddCommand(cmd)
}
