package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"tableflip.dev/adhdo/pkg/app"
	"tableflip.dev/adhdo/pkg/llm"
	"tableflip.dev/adhdo/pkg/store"
	"tableflip.dev/adhdo/pkg/task"
)

var wednesday = time.Date(2025, time.June, 11, 10, 0, 0, 0, time.Local)

type brokenLLM struct{}

func (brokenLLM) Complete(context.Context, llm.Request) (string, error) {
	return "", errors.New("offline")
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	p, err := store.OpenDiskv(t.TempDir(), "local")
	if err != nil {
		t.Fatalf("OpenDiskv failed: %v", err)
	}
	return NewService(&app.Service{
		Persistence: p,
		Connect: func(string) (llm.Completer, error) {
			return brokenLLM{}, nil
		},
		Owner: "local",
		Now:   func() time.Time { return wednesday },
	})
}

func TestServiceAddTaskDefaults(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	dto, err := svc.AddTask(ctx, task.Draft{Text: "  call the dentist "})
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if dto.ID == "" {
		t.Fatalf("expected generated id")
	}
	if dto.Text != "call the dentist" {
		t.Fatalf("expected trimmed text, got %q", dto.Text)
	}
	if dto.Bucket != "void" {
		t.Fatalf("expected void bucket, got %s", dto.Bucket)
	}
	if dto.Category != task.DefaultCategory {
		t.Fatalf("expected default category, got %s", dto.Category)
	}
}

func TestServiceCompleteTask(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	dto, err := svc.AddTask(ctx, task.Draft{Text: "water plants", DoDate: "2025-06-11"})
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if dto.Bucket != "today" {
		t.Fatalf("expected today bucket, got %s", dto.Bucket)
	}

	completed, err := svc.Apply(ctx, dto.ID, svc.App.Complete)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if !completed.Completed {
		t.Fatalf("expected task to be completed")
	}

	open, err := svc.ListTasks(ctx, false)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("expected no open tasks, got %d", len(open))
	}
}

func TestServiceApplyRequiresID(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Apply(context.Background(), "  ", svc.App.Complete); err == nil {
		t.Fatalf("expected error for empty id")
	}
}

func TestServiceScheduleAndSections(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	dto, err := svc.AddTask(ctx, task.Draft{Text: "mow the lawn"})
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	scheduled, err := svc.Schedule(ctx, dto.ID, "tomorrow")
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if scheduled.DoDate != "2025-06-12" {
		t.Fatalf("expected tomorrow's date, got %s", scheduled.DoDate)
	}
	if _, err := svc.Schedule(ctx, dto.ID, "whenever"); err == nil {
		t.Fatalf("expected error for unknown shortcut")
	}
	if _, err := svc.Schedule(ctx, dto.ID, ""); !errors.Is(err, app.ErrUnknownWhen) {
		t.Fatalf("expected ErrUnknownWhen for a missing shortcut, got %v", err)
	}
	kept, err := svc.TaskByID(ctx, dto.ID)
	if err != nil || kept.DoDate != "2025-06-12" {
		t.Fatalf("missing shortcut changed the task: %+v %v", kept, err)
	}

	sections, err := svc.Sections(ctx, "tomorrow")
	if err != nil {
		t.Fatalf("Sections failed: %v", err)
	}
	if len(sections) != 1 || sections[0].Count != 1 {
		t.Fatalf("expected one task in tomorrow, got %+v", sections)
	}
	if sections[0].Tasks[0].ID != dto.ID {
		t.Fatalf("expected %s in tomorrow, got %s", dto.ID, sections[0].Tasks[0].ID)
	}

	all, err := svc.Sections(ctx, "")
	if err != nil {
		t.Fatalf("Sections failed: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 sections, got %d", len(all))
	}
	if _, err := svc.Sections(ctx, "whenever"); err == nil {
		t.Fatalf("expected error for unknown section")
	}
}

func TestServiceMoveSetsDoDate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	dto, err := svc.AddTask(ctx, task.Draft{Text: "file taxes", DoDate: "2025-06-11"})
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	moved, err := svc.Move(ctx, dto.ID, "void", -1)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if moved.DoDate != "" || moved.Bucket != "void" {
		t.Fatalf("expected task in void with no date, got %q in %s", moved.DoDate, moved.Bucket)
	}
}

func TestServiceReorderWithinSection(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	for _, text := range []string{"water plants", "sort mail", "book flights"} {
		if _, err := svc.AddTask(ctx, task.Draft{Text: text}); err != nil {
			t.Fatalf("AddTask failed: %v", err)
		}
	}
	voidIDs := func() []string {
		sections, err := svc.Sections(ctx, "void")
		if err != nil {
			t.Fatalf("Sections failed: %v", err)
		}
		var ids []string
		for _, dto := range sections[0].Tasks {
			ids = append(ids, dto.ID)
		}
		return ids
	}

	before := voidIDs()
	if len(before) != 3 {
		t.Fatalf("expected 3 void tasks, got %v", before)
	}
	if _, err := svc.Reorder(ctx, before[0], 2); err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}
	after := voidIDs()
	if want := []string{before[1], before[2], before[0]}; fmt.Sprint(after) != fmt.Sprint(want) {
		t.Fatalf("got %v, want %v", after, want)
	}
}

func TestServiceSuggestFallsBack(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	none, err := svc.Suggest(ctx, "")
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if none != nil {
		t.Fatalf("expected no suggestion without tasks, got %+v", none)
	}

	dto, err := svc.AddTask(ctx, task.Draft{Text: "pay rent", DoDate: "2025-06-11"})
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	sg, err := svc.Suggest(ctx, "")
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if sg == nil || sg.Task.ID != dto.ID {
		t.Fatalf("expected suggestion for %s, got %+v", dto.ID, sg)
	}
	if !sg.Fallback {
		t.Fatalf("expected fallback suggestion when the model is unreachable")
	}
}

func TestServiceDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	dto, err := svc.AddTask(ctx, task.Draft{Text: "return library books"})
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if err := svc.Delete(ctx, dto.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.TaskByID(ctx, dto.ID); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
