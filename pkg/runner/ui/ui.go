// Package ui runs the full-screen "do this now" view.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"

	"tableflip.dev/adhdo/pkg/app"
	"tableflip.dev/adhdo/pkg/parse"
	"tableflip.dev/adhdo/pkg/suggest"
	"tableflip.dev/adhdo/pkg/task"
	"tableflip.dev/adhdo/pkg/weather"
)

type mode int

const (
	modeNow mode = iota
	modeDump
	modeReview
	modeSteps
)

const helpNow = "enter done · s skip · b break it down · u urgent · a brain dump · r refresh · q quit"

// UI is the terminal view runner.
type UI struct {
	App *app.Service
	// RefreshDelay debounces automatic refreshes after task changes.
	RefreshDelay time.Duration
}

// Do runs the view until the user quits.
func (u *UI) Do(ctx context.Context) error {
	if u.App == nil {
		return errors.New("can not start ui, no service")
	}
	if termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := New(ctx, u.App)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	r := &app.Refresher{
		Service: u.App,
		Delay:   u.RefreshDelay,
		Deliver: func(s *suggest.Suggestion, err error) {
			p.Send(suggestionMsg{suggestion: s, err: err, auto: true})
		},
	}
	go func() {
		if err := r.Run(ctx); err != nil {
			p.Send(statusMsg(fmt.Sprintf("live refresh off: %v", err)))
		}
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

type suggestionMsg struct {
	suggestion  *suggest.Suggestion
	celebration *suggest.Celebration
	weather     *weather.Reading
	evening     bool
	err         error
	// auto marks deliveries from the background refresher, which carry only
	// the suggestion.
	auto bool
}

type completedMsg struct {
	task *task.Task
	err  error
}

type stepsMsg struct {
	task     *task.Task
	steps    []string
	fallback bool
	err      error
}

type parsedMsg struct {
	result *parse.Result
	err    error
}

type committedMsg struct {
	created []*task.Task
	err     error
}

type statusMsg string

// Model is the bubbletea model of the view.
type Model struct {
	svc *app.Service
	ctx context.Context

	mode    mode
	spinner spinner.Model
	input   textinput.Model
	loading bool
	mantra  string

	suggestion  *suggest.Suggestion
	celebration *suggest.Celebration
	weather     *weather.Reading
	evening     bool
	noKey       bool

	steps     []string
	stepsTask *task.Task
	parsed    *parse.Result

	status string
	width  int
}

// New creates the model backed by svc.
func New(ctx context.Context, svc *app.Service) Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(accentStyle))

	ti := textinput.New()
	ti.Placeholder = "Everything on your mind, one line"
	ti.CharLimit = 2000
	ti.Width = 60
	ti.Prompt = "› "

	return Model{
		svc:     svc,
		ctx:     ctx,
		mode:    modeNow,
		spinner: sp,
		input:   ti,
		loading: true,
		mantra:  suggest.Pick(suggest.Mantras),
		status:  helpNow,
		width:   80,
	}
}

// Init requests the first suggestion.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch(""))
}

func (m Model) fetch(skip string) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		var (
			msg suggestionMsg
			err error
		)
		if skip != "" {
			msg.suggestion, err = svc.Skip(ctx, skip)
		} else {
			msg.suggestion, err = svc.Suggest(ctx)
		}
		if err != nil {
			msg.err = err
			return msg
		}
		if msg.celebration, err = svc.Celebrate(ctx); err != nil {
			msg.err = err
			return msg
		}
		msg.evening, _ = svc.Evening(ctx)
		msg.weather = svc.CurrentWeather(ctx)
		return msg
	}
}

func (m Model) startLoading(cmd tea.Cmd) (Model, tea.Cmd) {
	m.loading = true
	m.mantra = suggest.Pick(suggest.Mantras)
	return m, tea.Batch(m.spinner.Tick, cmd)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(20, msg.Width-10)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case suggestionMsg:
		return m.applySuggestion(msg), nil
	case completedMsg:
		if msg.err != nil {
			m.loading = false
			m.status = fmt.Sprintf("complete failed: %v", msg.err)
			return m, nil
		}
		m.status = suggest.Pick(suggest.Cheers) + " " + msg.task.Text
		return m.startLoading(m.fetch(""))
	case stepsMsg:
		m.loading = false
		if msg.err != nil && !errors.Is(msg.err, app.ErrNoCredential) {
			m.status = fmt.Sprintf("break down failed: %v", msg.err)
			return m, nil
		}
		m.mode = modeSteps
		m.stepsTask = msg.task
		m.steps = msg.steps
		if len(m.steps) == 0 {
			m.steps = append([]string(nil), suggest.FallbackSteps...)
		}
		m.status = "esc back"
		return m, nil
	case parsedMsg:
		m.loading = false
		if msg.err != nil && msg.result == nil {
			m.mode = modeNow
			m.status = fmt.Sprintf("capture failed: %v", msg.err)
			return m, nil
		}
		m.parsed = msg.result
		m.mode = modeReview
		switch {
		case len(msg.result.Drafts) == 0:
			m.status = "esc back"
		case msg.result.Merge != nil:
			m.status = "y add and merge · n add without merging · esc discard"
		default:
			m.status = "y add · esc discard"
		}
		return m, nil
	case committedMsg:
		m.mode = modeNow
		m.parsed = nil
		if msg.err != nil {
			m.loading = false
			m.status = fmt.Sprintf("save failed: %v", msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("Added %d. %s", len(msg.created), helpNow)
		return m.startLoading(m.fetch(""))
	case statusMsg:
		m.status = string(msg)
		return m, nil
	}

	if m.mode == modeDump {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) applySuggestion(msg suggestionMsg) Model {
	m.loading = false
	if msg.err != nil {
		if errors.Is(msg.err, app.ErrNoCredential) {
			m.noKey = true
			m.suggestion = nil
			return m
		}
		m.status = fmt.Sprintf("suggestion failed: %v", msg.err)
		return m
	}
	m.noKey = false
	m.suggestion = msg.suggestion
	if !msg.auto {
		m.celebration = msg.celebration
		m.weather = msg.weather
		m.evening = msg.evening
	}
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case modeDump:
		switch key {
		case "esc":
			m.mode = modeNow
			m.input.Blur()
			m.status = helpNow
			return m, nil
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.SetValue("")
			m.input.Blur()
			svc, ctx := m.svc, m.ctx
			return m.startLoading(func() tea.Msg {
				res, err := svc.Capture(ctx, text)
				return parsedMsg{result: res, err: err}
			})
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case modeReview:
		switch key {
		case "esc", "q":
			m.mode = modeNow
			m.parsed = nil
			m.status = helpNow
			return m, nil
		case "y", "n":
			if m.parsed == nil || len(m.parsed.Drafts) == 0 {
				return m, nil
			}
			svc, ctx, res, accept := m.svc, m.ctx, m.parsed, key == "y"
			return m.startLoading(func() tea.Msg {
				created, err := svc.Commit(ctx, res, accept)
				return committedMsg{created: created, err: err}
			})
		}
		return m, nil

	case modeSteps:
		if key == "esc" || key == "q" || key == "enter" {
			m.mode = modeNow
			m.steps = nil
			m.stepsTask = nil
			m.status = helpNow
		}
		return m, nil
	}

	switch key {
	case "q", "esc":
		return m, tea.Quit
	case "a":
		m.mode = modeDump
		m.status = "enter capture · esc cancel"
		return m, m.input.Focus()
	case "r":
		return m.startLoading(m.fetch(""))
	}

	if m.loading || m.suggestion == nil {
		return m, nil
	}
	id := m.suggestion.Task.ID
	svc, ctx := m.svc, m.ctx
	switch key {
	case "enter", "d":
		return m.startLoading(func() tea.Msg {
			t, err := svc.Complete(ctx, id)
			return completedMsg{task: t, err: err}
		})
	case "s":
		return m.startLoading(m.fetch(id))
	case "b":
		return m.startLoading(func() tea.Msg {
			t, steps, fallback, err := svc.Steps(ctx, id)
			return stepsMsg{task: t, steps: steps, fallback: fallback, err: err}
		})
	case "u":
		return m, func() tea.Msg {
			t, err := svc.ToggleUrgent(ctx, id)
			if err != nil {
				return statusMsg(fmt.Sprintf("urgent failed: %v", err))
			}
			if t.Urgent {
				return statusMsg("marked urgent")
			}
			return statusMsg("no longer urgent")
		}
	}
	return m, nil
}

// View renders the model.
func (m Model) View() string {
	var b strings.Builder
	width := max(40, min(m.width, 80)) - 4

	header := titleStyle.Render("adhdo")
	if m.weather != nil {
		header += faintStyle.Render("  " + m.weather.String())
	}
	if m.evening {
		header += faintStyle.Render("  evening")
	}
	b.WriteString(header + "\n\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " " + faintStyle.Render(m.mantra) + "\n")
	case m.mode == modeDump:
		b.WriteString(headlineStyle.Render("Brain dump") + "\n\n")
		b.WriteString(m.input.View() + "\n")
	case m.mode == modeReview:
		b.WriteString(m.reviewView(width))
	case m.mode == modeSteps:
		b.WriteString(m.stepsView(width))
	default:
		b.WriteString(m.nowView(width))
	}

	b.WriteString("\n" + statusStyle.Render(wordwrap.String(m.status, width)) + "\n")
	return boxStyle.Width(width + 2).Render(b.String())
}

func (m Model) nowView(width int) string {
	var b strings.Builder
	if m.celebration != nil {
		b.WriteString(gradient(m.celebration.Headline) + "\n")
		if m.celebration.Subtitle != "" {
			b.WriteString(wordwrap.String(m.celebration.Subtitle, width) + "\n")
		}
		if m.celebration.Image != "" {
			b.WriteString(faintStyle.Render(m.celebration.Image) + "\n")
		}
		b.WriteString("\n")
	}
	switch {
	case m.noKey:
		b.WriteString(warnStyle.Render(wordwrap.String("No API key configured. Run `adhdo settings --api-key <key>` to get suggestions.", width)) + "\n")
	case m.suggestion == nil:
		b.WriteString(faintStyle.Render("Nothing to suggest. Press a to brain dump.") + "\n")
	default:
		s := m.suggestion
		b.WriteString(faintStyle.Render("from "+s.Pool) + "\n")
		b.WriteString(headlineStyle.Render(wordwrap.String(s.Headline, width)) + "\n")
		b.WriteString(wordwrap.String(s.Subtitle, width) + "\n\n")
		b.WriteString(taskLine(s.Task) + "\n")
		if len(s.Batch) > 0 {
			reason := "While you're at it"
			if s.BatchReason != "" {
				reason += ": " + s.BatchReason
			}
			b.WriteString("\n" + faintStyle.Render(wordwrap.String(reason, width)) + "\n")
			for _, t := range s.Batch {
				b.WriteString(taskLine(t) + "\n")
			}
		}
	}
	return b.String()
}

func (m Model) reviewView(width int) string {
	var b strings.Builder
	if m.parsed == nil {
		return ""
	}
	if m.parsed.Response != "" {
		b.WriteString(wordwrap.String(m.parsed.Response, width) + "\n\n")
	}
	for i, d := range m.parsed.Drafts {
		when := d.DoDate
		if when == "" {
			when = "void"
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n", accentStyle.Render(fmt.Sprintf("%d.", i+1)), d.Text, faintStyle.Render(when)))
	}
	if mg := m.parsed.Merge; mg != nil && mg.Draft < len(m.parsed.Drafts) {
		verb := "duplicates"
		if mg.Mode == parse.MergeSubtask {
			verb = "is a step of"
		}
		b.WriteString("\n" + warnStyle.Render(wordwrap.String(fmt.Sprintf("%q %s an existing task.", m.parsed.Drafts[mg.Draft].Text, verb), width)) + "\n")
	}
	return b.String()
}

func (m Model) stepsView(width int) string {
	var b strings.Builder
	if m.stepsTask != nil {
		b.WriteString(headlineStyle.Render(wordwrap.String(m.stepsTask.Text, width)) + "\n\n")
	}
	for i, s := range m.steps {
		b.WriteString(fmt.Sprintf("%s %s\n", accentStyle.Render(fmt.Sprintf("%d.", i+1)), wordwrap.String(s, width-3)))
	}
	return b.String()
}

func taskLine(t *task.Task) string {
	line := "○ " + t.Text
	if t.Urgent {
		return urgentStyle.Render("! ") + line
	}
	return "  " + line
}
