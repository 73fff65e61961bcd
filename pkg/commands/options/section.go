package options

import (
	"github.com/spf13/cobra"

	"tableflip.dev/adhdo/pkg/bucket"
)

// SectionOptions
type SectionOptions struct {
	Section string
	Index   int
}

func AddSectionArgs(cmd *cobra.Command, o *SectionOptions) {
	cmd.Flags().StringVar(&o.Section, "section", "",
		"Limit to one section: today, tomorrow, week, later or void.")
	_ = cmd.RegisterFlagCompletionFunc("section", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return SectionNames(), cobra.ShellCompDirectiveNoFileComp
	})
}

func AddIndexArgs(cmd *cobra.Command, o *SectionOptions) {
	cmd.Flags().IntVar(&o.Index, "index", -1,
		"Position inside the section, starting at 0. Defaults to the end.")
}

// SectionNames lists the section names for completion.
func SectionNames() []string {
	out := make([]string, 0, len(bucket.Names))
	for _, n := range bucket.Names {
		out = append(out, string(n))
	}
	return out
}
