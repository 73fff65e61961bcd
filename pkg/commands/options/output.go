package options

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ErrReported is returned once an error has been written as JSON, so callers
// exit non-zero without printing it again.
var ErrReported = errors.New("error already reported")

// OutputOptions
type OutputOptions struct {
	JSON bool
	// Out defaults to color.Output.
	Out io.Writer
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.Flags().BoolVar(&po.JSON, "json", false,
		"Output as JSON.")
}

func (o *OutputOptions) HandleError(err error) error {
	if o.JSON && err != nil {
		out := map[string]string{
			"error": err.Error(),
		}
		b, merr := json.Marshal(out)
		if merr != nil {
			return err
		}
		w := o.Out
		if w == nil {
			w = color.Output
		}
		_, _ = fmt.Fprintln(w, string(b))
		return ErrReported
	}
	return err
}
