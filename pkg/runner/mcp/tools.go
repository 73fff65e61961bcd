package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/adhdo/pkg/app"
	"tableflip.dev/adhdo/pkg/bucket"
	"tableflip.dev/adhdo/pkg/task"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerCreateTaskTool(srv, svc)
	registerIDTool(srv, svc, "complete_task", "Mark a task as completed.", svc.App.Complete)
	registerIDTool(srv, svc, "uncomplete_task", "Reopen a completed task.", svc.App.Uncomplete)
	registerIDTool(srv, svc, "toggle_urgent", "Flip the urgent flag of a task.", svc.App.ToggleUrgent)
	registerScheduleTool(srv, svc)
	registerMoveTool(srv, svc)
	registerReorderTool(srv, svc)
	registerUpdateTaskTool(srv, svc)
	registerSubtaskTools(srv, svc)
	registerDeleteTaskTool(srv, svc)
	registerListTasksTool(srv, svc)
	registerGetTaskTool(srv, svc)
	registerSuggestTool(srv, svc)
	registerStepsTool(srv, svc)
	registerCaptureTool(srv, svc)
}

func sectionNames() []string {
	out := make([]string, 0, len(bucket.Names))
	for _, n := range bucket.Names {
		out = append(out, string(n))
	}
	return out
}

func registerCreateTaskTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"create_task",
		mcp.WithDescription("Create a new task."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("What needs doing."),
		),
		mcp.WithString("doDate",
			mcp.Description("Optional YYYY-MM-DD day to do it. Leave empty for the void."),
		),
		mcp.WithString("category",
			mcp.Description("Task category."),
			mcp.Enum(append([]string{task.DefaultCategory}, task.Categories...)...),
		),
		mcp.WithString("location",
			mcp.Description("Where the task can be done."),
			mcp.Enum(task.LocationHome, task.LocationOut, task.LocationEither),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args task.Draft
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		dto, err := svc.AddTask(ctx, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerIDTool(srv *server.MCPServer, svc *Service, name, description string, fn func(context.Context, string) (*task.Task, error)) {
	tool := mcp.NewTool(
		name,
		mcp.WithDescription(description),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Task identifier."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.Apply(ctx, id, fn)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerScheduleTool(srv *server.MCPServer, svc *Service) {
	whens := make([]string, 0, len(app.Whens))
	for _, w := range app.Whens {
		whens = append(whens, string(w))
	}
	tool := mcp.NewTool(
		"schedule_task",
		mcp.WithDescription("Reschedule a task with a shortcut. weekend is the next Saturday and nextweek the next Monday, never today."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Task identifier."),
		),
		mcp.WithString("when",
			mcp.Required(),
			mcp.Description("Shortcut or an explicit YYYY-MM-DD date."),
			mcp.Enum(whens...),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		when, err := request.RequireString("when")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.Schedule(ctx, id, when)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerMoveTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"move_task",
		mcp.WithDescription("Drop a task into a section at a position. The task's do date follows the section."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Task identifier."),
		),
		mcp.WithString("section",
			mcp.Required(),
			mcp.Description("Target section."),
			mcp.Enum(sectionNames()...),
		),
		mcp.WithNumber("index",
			mcp.Description("Zero-based position inside the section. Defaults to the end."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			ID      string `json:"id"`
			Section string `json:"section"`
			Index   *int   `json:"index"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		index := -1
		if args.Index != nil {
			index = *args.Index
		}
		dto, err := svc.Move(ctx, args.ID, args.Section, index)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerReorderTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"reorder_task",
		mcp.WithDescription("Move a task to a position inside its current section. The do date is unchanged; urgent tasks still list first."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Task identifier."),
		),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("Zero-based position inside the section as listed."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			ID    string `json:"id"`
			Index int    `json:"index"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		dto, err := svc.Reorder(ctx, args.ID, args.Index)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerUpdateTaskTool(srv *server.MCPServer, svc *Service) {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Edit task fields. Omitted fields are unchanged; an empty string clears a field."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Task identifier."),
		),
	}
	for _, f := range []string{"text", "doDate", "dueDate", "category", "location", "phone", "url", "address", "notes"} {
		opts = append(opts, mcp.WithString(f, mcp.Description("New "+f+" value.")))
	}
	tool := mcp.NewTool("update_task", opts...)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			ID string `json:"id"`
			app.Patch
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.Patch.Empty() {
			return mcp.NewToolResultError("no fields to update"), nil
		}
		dto, err := svc.Apply(ctx, args.ID, func(ctx context.Context, id string) (*task.Task, error) {
			return svc.App.Update(ctx, id, args.Patch)
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerSubtaskTools(srv *server.MCPServer, svc *Service) {
	add := mcp.NewTool(
		"add_subtask",
		mcp.WithDescription("Append a subtask to a task."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task identifier.")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Subtask text.")),
	)
	srv.AddTool(add, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		text, err := request.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.Apply(ctx, id, func(ctx context.Context, id string) (*task.Task, error) {
			return svc.App.AddSubtask(ctx, id, text)
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})

	toggle := mcp.NewTool(
		"toggle_subtask",
		mcp.WithDescription("Flip the completed flag of a subtask."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task identifier.")),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based subtask index.")),
	)
	srv.AddTool(toggle, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			ID    string `json:"id"`
			Index int    `json:"index"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		dto, err := svc.Apply(ctx, args.ID, func(ctx context.Context, id string) (*task.Task, error) {
			return svc.App.ToggleSubtask(ctx, id, args.Index)
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerDeleteTaskTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"delete_task",
		mcp.WithDescription("Delete a task permanently."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task identifier.")),
	)
	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := svc.Delete(ctx, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{"deleted": id})
	})
}

func registerListTasksTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_tasks",
		mcp.WithDescription("List tasks grouped into sections in display order."),
		mcp.WithString("section",
			mcp.Description("Optional section to restrict to."),
			mcp.Enum(sectionNames()...),
		),
	)
	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sections, err := svc.Sections(ctx, request.GetString("section", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{"sections": sections})
	})
}

func registerGetTaskTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_task",
		mcp.WithDescription("Fetch a single task by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task identifier.")),
	)
	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.TaskByID(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerSuggestTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"suggest_task",
		mcp.WithDescription("Pick the one task to do right now from the highest priority pool."),
		mcp.WithString("skip",
			mcp.Description("Optional id of the current suggestion to skip."),
		),
	)
	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sg, err := svc.Suggest(ctx, request.GetString("skip", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if sg == nil {
			return mcp.NewToolResultText("No open tasks."), nil
		}
		return toJSONResult(sg)
	})
}

func registerStepsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"micro_steps",
		mcp.WithDescription("Break a task into 4-6 tiny steps."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task identifier.")),
	)
	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		res, err := svc.Steps(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(res)
	})
}

func registerCaptureTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"brain_dump",
		mcp.WithDescription("Turn free text into task drafts. Set commit to store them."),
		mcp.WithString("input", mcp.Required(), mcp.Description("Free text brain dump.")),
		mcp.WithBoolean("commit", mcp.Description("Store the drafts.")),
		mcp.WithBoolean("acceptMerge", mcp.Description("Accept the proposed merge into an existing task when committing.")),
	)
	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Input       string `json:"input"`
			Commit      bool   `json:"commit"`
			AcceptMerge bool   `json:"acceptMerge"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if strings.TrimSpace(args.Input) == "" {
			return mcp.NewToolResultError("input is required"), nil
		}
		res, err := svc.Capture(ctx, args.Input, args.Commit, args.AcceptMerge)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(res)
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}
