package options

import (
	"github.com/spf13/cobra"

	"tableflip.dev/adhdo/pkg/printers"
)

// InteractiveOptions
type InteractiveOptions struct {
	Interactive bool
}

func InteractiveArgs(cmd *cobra.Command, o *InteractiveOptions) {
	cmd.Flags().BoolVarP(&o.Interactive, "interactive", "i", printers.Interactive(),
		`Ask before merging into an existing task. Defaults to on in a terminal.`)
}
