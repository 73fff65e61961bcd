// Package mcp provides the Model Context Protocol server integration for adhdo.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tableflip.dev/adhdo/pkg/app"
	"tableflip.dev/adhdo/pkg/bucket"
	"tableflip.dev/adhdo/pkg/parse"
	"tableflip.dev/adhdo/pkg/suggest"
	"tableflip.dev/adhdo/pkg/task"
)

// Service adapts app.Service into transport-friendly shapes for the MCP server.
type Service struct {
	App *app.Service
}

// NewService builds a service wrapper around the app service.
func NewService(a *app.Service) *Service {
	return &Service{App: a}
}

// TaskDTO is a transport-friendly projection of a task.
type TaskDTO struct {
	*task.Task
	Bucket  string `json:"bucket"`
	Overdue bool   `json:"overdue,omitempty"`
}

// SectionDTO is one bucket in display order.
type SectionDTO struct {
	Name  string    `json:"name"`
	Count int       `json:"count"`
	Tasks []TaskDTO `json:"tasks"`
}

// SuggestionDTO is a suggestion with tasks projected.
type SuggestionDTO struct {
	Task        TaskDTO   `json:"task"`
	Headline    string    `json:"headline"`
	Subtitle    string    `json:"subtitle"`
	Batch       []TaskDTO `json:"batch,omitempty"`
	BatchReason string    `json:"batchReason,omitempty"`
	Pool        string    `json:"pool"`
	Fallback    bool      `json:"fallback,omitempty"`
}

func (s *Service) now() time.Time {
	if s.App != nil && s.App.Now != nil {
		return s.App.Now()
	}
	return time.Now()
}

func (s *Service) ready() error {
	if s.App == nil {
		return errors.New("service is not configured")
	}
	return nil
}

func (s *Service) toDTO(t *task.Task) TaskDTO {
	now := s.now()
	return TaskDTO{
		Task:    t,
		Bucket:  string(bucket.DatesAt(now).Of(t)),
		Overdue: t.Overdue(now),
	}
}

func (s *Service) toDTOs(tasks []*task.Task) []TaskDTO {
	out := make([]TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, s.toDTO(t))
	}
	return out
}

func (s *Service) toSuggestionDTO(sg *suggest.Suggestion) *SuggestionDTO {
	if sg == nil {
		return nil
	}
	return &SuggestionDTO{
		Task:        s.toDTO(sg.Task),
		Headline:    sg.Headline,
		Subtitle:    sg.Subtitle,
		Batch:       s.toDTOs(sg.Batch),
		BatchReason: sg.BatchReason,
		Pool:        sg.Pool,
		Fallback:    sg.Fallback,
	}
}

// Sections returns every bucket in display order. An empty name returns all
// of them.
func (s *Service) Sections(ctx context.Context, name string) ([]SectionDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	names := bucket.Names
	if strings.TrimSpace(name) != "" {
		n, err := bucket.ParseName(name)
		if err != nil {
			return nil, err
		}
		names = []bucket.Name{n}
	}
	b, err := s.App.Sections(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SectionDTO, 0, len(names))
	for _, n := range names {
		out = append(out, SectionDTO{Name: string(n), Count: len(b[n]), Tasks: s.toDTOs(b[n])})
	}
	return out, nil
}

// ListTasks returns stored tasks, optionally including completed ones.
func (s *Service) ListTasks(ctx context.Context, includeCompleted bool) ([]TaskDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	var (
		all []*task.Task
		err error
	)
	if includeCompleted {
		all, err = s.App.Tasks(ctx)
	} else {
		all, err = s.App.Open(ctx)
	}
	if err != nil {
		return nil, err
	}
	return s.toDTOs(all), nil
}

// TaskByID returns one task.
func (s *Service) TaskByID(ctx context.Context, id string) (*TaskDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	t, err := s.App.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	dto := s.toDTO(t)
	return &dto, nil
}

// AddTask creates a task.
func (s *Service) AddTask(ctx context.Context, d task.Draft) (*TaskDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	t, err := s.App.Add(ctx, d)
	if err != nil {
		return nil, err
	}
	dto := s.toDTO(t)
	return &dto, nil
}

// Apply runs a single-task mutation and projects the result.
func (s *Service) Apply(ctx context.Context, id string, fn func(context.Context, string) (*task.Task, error)) (*TaskDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("task id is required")
	}
	t, err := fn(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := s.toDTO(t)
	return &dto, nil
}

// Schedule applies a scheduling shortcut.
func (s *Service) Schedule(ctx context.Context, id, when string) (*TaskDTO, error) {
	w, err := app.ParseExplicitWhen(when)
	if err != nil {
		return nil, err
	}
	return s.Apply(ctx, id, func(ctx context.Context, id string) (*task.Task, error) {
		return s.App.Schedule(ctx, id, w)
	})
}

// Move drops a task into a section at index.
func (s *Service) Move(ctx context.Context, id, section string, index int) (*TaskDTO, error) {
	n, err := bucket.ParseName(section)
	if err != nil {
		return nil, err
	}
	return s.Apply(ctx, id, func(ctx context.Context, id string) (*task.Task, error) {
		return s.App.Move(ctx, id, n, index)
	})
}

// Reorder moves a task to index inside its current section.
func (s *Service) Reorder(ctx context.Context, id string, index int) (*TaskDTO, error) {
	return s.Apply(ctx, id, func(ctx context.Context, id string) (*task.Task, error) {
		if err := s.App.Reorder(ctx, id, index); err != nil {
			return nil, err
		}
		return s.App.Get(ctx, id)
	})
}

// Delete removes a task.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.App.Delete(ctx, strings.TrimSpace(id))
}

// Suggest returns the current suggestion, skipping skipID when set.
func (s *Service) Suggest(ctx context.Context, skipID string) (*SuggestionDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	var (
		sg  *suggest.Suggestion
		err error
	)
	if skipID = strings.TrimSpace(skipID); skipID != "" {
		sg, err = s.App.Skip(ctx, skipID)
	} else {
		sg, err = s.App.Suggest(ctx)
	}
	if err != nil {
		return nil, err
	}
	return s.toSuggestionDTO(sg), nil
}

// StepsResult carries micro-steps for a task.
type StepsResult struct {
	Task     TaskDTO  `json:"task"`
	Steps    []string `json:"steps"`
	Fallback bool     `json:"fallback,omitempty"`
}

// Steps breaks a task into micro-steps.
func (s *Service) Steps(ctx context.Context, id string) (*StepsResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	t, steps, fallback, err := s.App.Steps(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	return &StepsResult{Task: s.toDTO(t), Steps: steps, Fallback: fallback}, nil
}

// CaptureResult is the parse result and, when committed, the created tasks.
type CaptureResult struct {
	*parse.Result
	Created []TaskDTO `json:"created,omitempty"`
}

// Capture parses input. With commit set the drafts are stored, resolving any
// merge proposal with acceptMerge.
func (s *Service) Capture(ctx context.Context, input string, commit, acceptMerge bool) (*CaptureResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	res, err := s.App.Capture(ctx, input)
	if err != nil {
		return nil, err
	}
	out := &CaptureResult{Result: res}
	if !commit {
		return out, nil
	}
	created, err := s.App.Commit(ctx, res, acceptMerge)
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	out.Created = s.toDTOs(created)
	return out, nil
}
