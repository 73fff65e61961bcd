package commands

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/adhdo/pkg/commands/options"
	"tableflip.dev/adhdo/pkg/runner/dump"
)

func addDump(topLevel *cobra.Command) {
	ido := &options.IDOptions{}
	in := &options.InteractiveOptions{}
	var (
		merge  bool
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:     "dump [text]",
		Aliases: []string{"capture"},
		Short:   "Turn a brain dump into tasks",
		Long: `Dump everything on your mind in plain words. The assistant splits it into
tasks, guesses days, categories and locations, and spots tasks you already have.
With no arguments the text is read from stdin.`,
		Example: `
adhdo dump call mom tomorrow, buy stamps, the sink is leaking again
pbpaste | adhdo dump --merge
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			text := strings.Join(args, " ")
			if strings.TrimSpace(text) == "" {
				b, err := readAll(cmd.InOrStdin())
				if err != nil {
					return output.HandleError(err)
				}
				text = string(b)
				// Stdin is spent; prompts can not read from it.
				in.Interactive = false
			}
			if strings.TrimSpace(text) == "" {
				return output.HandleError(errors.New("nothing to capture"))
			}
			_, svc, err := loadService()
			if err != nil {
				return output.HandleError(err)
			}
			d := dump.Dump{
				Input:       text,
				Interactive: in.Interactive,
				AcceptMerge: merge,
				DryRun:      dryRun,
				ShowID:      ido.ShowID,
				JSON:        output.JSON,
				App:         svc,
				In:          cmd.InOrStdin(),
			}
			return output.HandleError(d.Do(cmd.Context()))
		},
	}

	cmd.Flags().BoolVar(&merge, "merge", false, "Accept a proposed merge into an existing task without asking.")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the parsed tasks without saving them.")
	options.InteractiveArgs(cmd, in)
	options.AddShowIDArgs(cmd, ido)
	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

func readAll(r io.Reader) ([]byte, error) {
	if f, ok := r.(*os.File); ok {
		if st, err := f.Stat(); err == nil && st.Mode()&os.ModeCharDevice != 0 {
			return nil, errors.New("requires text, as arguments or on stdin")
		}
	}
	return io.ReadAll(r)
}
