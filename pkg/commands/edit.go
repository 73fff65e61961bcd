package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/adhdo/pkg/app"
	"tableflip.dev/adhdo/pkg/bucket"
	"tableflip.dev/adhdo/pkg/commands/options"
	"tableflip.dev/adhdo/pkg/runner/edit"
	"tableflip.dev/adhdo/pkg/task"
)

func requireID(io *options.IDOptions, n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		if len(args) < n {
			return errors.New(usage)
		}
		io.ID = args[0]
		return nil
	}
}

// runEdit loads the service and applies the mutation built by mutation.
func runEdit(cmd *cobra.Command, io *options.IDOptions, mutation func(*app.Service) edit.Mutation) error {
	_, svc, err := loadService()
	if err != nil {
		return output.HandleError(err)
	}
	e := edit.Edit{
		ID:     io.ID,
		Apply:  mutation(svc),
		ShowID: io.ShowID,
		JSON:   output.JSON,
		App:    svc,
	}
	return output.HandleError(e.Do(cmd.Context()))
}

func addUrgent(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "urgent <task id>",
		Short: "Toggle the urgent flag of a task",
		Args:  requireID(io, 1, "requires a task id"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEdit(cmd, io, func(svc *app.Service) edit.Mutation { return svc.ToggleUrgent })
		},
		ValidArgsFunction: taskCompletions,
	}

	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

func addSchedule(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	whens := make([]string, 0, len(app.Whens))
	for _, w := range app.Whens {
		whens = append(whens, string(w))
	}

	cmd := &cobra.Command{
		Use:   "schedule <task id> <when>",
		Short: "Reschedule a task: " + strings.Join(whens, ", ") + " or a YYYY-MM-DD date",
		Example: `
adhdo schedule <task id> tomorrow
adhdo schedule <task id> weekend
adhdo schedule <task id> 2025-07-04
`,
		Args: requireID(io, 2, "requires a task id and when"),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := app.ParseWhen(args[1])
			if err != nil {
				return output.HandleError(err)
			}
			return runEdit(cmd, io, func(svc *app.Service) edit.Mutation {
				return func(ctx context.Context, id string) (*task.Task, error) {
					return svc.Schedule(ctx, id, w)
				}
			})
		},
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 1 {
				return whens, cobra.ShellCompDirectiveNoFileComp
			}
			return taskCompletions(cmd, args, toComplete)
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

func addMove(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	so := &options.SectionOptions{}

	cmd := &cobra.Command{
		Use:   "move <task id> <section>",
		Short: "Move a task into a section, optionally at a position",
		Example: `
adhdo move <task id> today
adhdo move <task id> week --index 0
`,
		Args: requireID(io, 2, "requires a task id and section"),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, err := bucket.ParseName(args[1])
			if err != nil {
				return output.HandleError(err)
			}
			return runEdit(cmd, io, func(svc *app.Service) edit.Mutation {
				return func(ctx context.Context, id string) (*task.Task, error) {
					return svc.Move(ctx, id, section, so.Index)
				}
			})
		},
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 1 {
				return options.SectionNames(), cobra.ShellCompDirectiveNoFileComp
			}
			return taskCompletions(cmd, args, toComplete)
		},
	}

	options.AddIndexArgs(cmd, so)
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

func addReorder(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "reorder <task id> <index>",
		Short: "Move a task to a position inside its current section",
		Example: `
adhdo reorder <task id> 0
`,
		Args: requireID(io, 2, "requires a task id and index"),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil || index < 0 {
				return output.HandleError(fmt.Errorf("index %q must be a number from 0", args[1]))
			}
			return runEdit(cmd, io, func(svc *app.Service) edit.Mutation {
				return func(ctx context.Context, id string) (*task.Task, error) {
					if err := svc.Reorder(ctx, id, index); err != nil {
						return nil, err
					}
					return svc.Get(ctx, id)
				}
			})
		},
		ValidArgsFunction: taskCompletions,
	}

	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

var patchFields = []string{"text", "due", "category", "location", "phone", "url", "address", "notes"}

func addEdit(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	values := make(map[string]*string, len(patchFields))
	var on string

	cmd := &cobra.Command{
		Use:   "edit <task id>",
		Short: "Edit task fields; an empty value clears a field",
		Example: `
adhdo edit <task id> --phone 555-0100 --notes "ask about the bill"
adhdo edit <task id> --due 2025-07-01
adhdo edit <task id> --url ""
`,
		Args: requireID(io, 1, "requires a task id"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			var p app.Patch
			set := func(flag string, dst **string) {
				if cmd.Flags().Changed(flag) {
					v := *values[flag]
					*dst = &v
				}
			}
			set("text", &p.Text)
			set("due", &p.DueDate)
			set("category", &p.Category)
			set("location", &p.Location)
			set("phone", &p.Phone)
			set("url", &p.URL)
			set("address", &p.Address)
			set("notes", &p.Notes)
			if cmd.Flags().Changed("on") {
				p.DoDate = &on
			}
			if p.Empty() {
				return output.HandleError(fmt.Errorf("nothing to change, set one of --%s or --on", strings.Join(patchFields, ", --")))
			}
			return runEdit(cmd, io, func(svc *app.Service) edit.Mutation {
				return func(ctx context.Context, id string) (*task.Task, error) {
					return svc.Update(ctx, id, p)
				}
			})
		},
		ValidArgsFunction: taskCompletions,
	}

	for _, f := range patchFields {
		values[f] = cmd.Flags().String(f, "", "New "+f+".")
	}
	cmd.Flags().StringVar(&on, "on", "", "New do date, YYYY-MM-DD.")
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

func addSubtask(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	var toggle int

	cmd := &cobra.Command{
		Use:     "subtask <task id> [text]",
		Aliases: []string{"step"},
		Short:   "Add a subtask, or toggle one with --toggle",
		Example: `
adhdo subtask <task id> find the form
adhdo subtask <task id> --toggle 0
`,
		Args: requireID(io, 1, "requires a task id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("toggle") {
				return runEdit(cmd, io, func(svc *app.Service) edit.Mutation {
					return func(ctx context.Context, id string) (*task.Task, error) {
						return svc.ToggleSubtask(ctx, id, toggle)
					}
				})
			}
			text := strings.TrimSpace(strings.Join(args[1:], " "))
			if text == "" {
				return output.HandleError(errors.New("requires subtask text or --toggle"))
			}
			return runEdit(cmd, io, func(svc *app.Service) edit.Mutation {
				return func(ctx context.Context, id string) (*task.Task, error) {
					return svc.AddSubtask(ctx, id, text)
				}
			})
		},
		ValidArgsFunction: taskCompletions,
	}

	cmd.Flags().IntVar(&toggle, "toggle", 0, "Index of the subtask to toggle, starting at 0.")
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

func addDelete(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "delete <task id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    requireID(io, 1, "requires a task id"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, svc, err := loadService()
			if err != nil {
				return output.HandleError(err)
			}
			d := edit.Delete{ID: io.ID, JSON: output.JSON, App: svc}
			return output.HandleError(d.Do(cmd.Context()))
		},
		ValidArgsFunction: taskCompletions,
	}

	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
