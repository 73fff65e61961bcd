package printers

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/adhdo/pkg/app"
)

// Report prints completed tasks grouped by category.
func (pp *PrettyPrint) Report(r app.ReportResult, label string) {
	w := pp.out()
	since := r.Since.Local().Format("2006-01-02 15:04")
	until := r.Until.Local().Format("2006-01-02 15:04")
	_, _ = color.New(color.Bold).Fprintf(w, "Report · last %s ", label)
	_, _ = color.New(color.Faint).Fprintf(w, "(%s → %s)\n", since, until)

	if r.Total == 0 {
		_, _ = color.New(color.Faint, color.Italic).Fprint(w, "  Nothing completed in this window.\n\n")
		return
	}

	for _, section := range r.Sections {
		_, _ = fmt.Fprintln(w, "")
		pp.TitleWithCount(section.Category, len(section.Tasks))
		tbl := uitable.New()
		tbl.Separator = "  "
		for _, item := range section.Tasks {
			row := []interface{}{}
			if pp.ShowID {
				row = append(row, color.New(color.Faint).Sprint(item.Task.ID))
			}
			row = append(row,
				color.New(color.Faint).Sprint(item.CompletedAt.Local().Format("Mon Jan 2 15:04")),
				item.Task.Text,
			)
			tbl.AddRow(row...)
		}
		_, _ = fmt.Fprintln(w, tbl)
	}
	_, _ = color.New(color.Faint).Fprintf(w, "\n%d completed\n\n", r.Total)
}
