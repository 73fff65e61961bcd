package serve

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tableflip.dev/adhdo/pkg/app"
	"tableflip.dev/adhdo/pkg/bucket"
	"tableflip.dev/adhdo/pkg/parse"
	"tableflip.dev/adhdo/pkg/suggest"
	"tableflip.dev/adhdo/pkg/task"
	"tableflip.dev/adhdo/pkg/timeutil"
	"tableflip.dev/adhdo/pkg/weather"
)

var errNoDevice = errors.New("deviceId is required")

// maxBody bounds request bodies.
const maxBody = 1 << 20

type errorReply struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v)
}

func deviceOf(r *http.Request) string {
	if d := strings.TrimSpace(r.URL.Query().Get("deviceId")); d != "" {
		return d
	}
	return strings.TrimSpace(r.Header.Get(DeviceHeader))
}

// fail maps service errors onto status codes.
func (s *Serve) fail(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, errNoDevice),
		errors.Is(err, app.ErrEmptyText),
		errors.Is(err, app.ErrInvalidDate),
		errors.Is(err, task.ErrNoSubtask),
		errors.Is(err, bucket.ErrUnknownName),
		errors.Is(err, app.ErrUnknownWhen):
		status = http.StatusBadRequest
	case errors.Is(err, app.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, app.ErrNoCredential):
		status = http.StatusServiceUnavailable
	default:
		s.logger().Error("serve: request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorReply{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorReply{Error: err.Error()})
}

func (s *Serve) listTasks(w http.ResponseWriter, r *http.Request) {
	device := strings.TrimSpace(r.URL.Query().Get("deviceId"))
	if device == "" {
		writeJSON(w, http.StatusBadRequest, errorReply{Error: "deviceId is required"})
		return
	}
	svc, err := s.service(device)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	tasks, err := svc.Tasks(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

type createRequest struct {
	DeviceID string `json:"deviceId"`
	task.Draft
}

func (s *Serve) createTask(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decode(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorReply{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.DeviceID) == "" || strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorReply{Error: "deviceId and text are required"})
		return
	}
	svc, err := s.service(strings.TrimSpace(req.DeviceID))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	t, err := svc.Add(r.Context(), req.Draft)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "task": t})
}

func (s *Serve) getTask(w http.ResponseWriter, r *http.Request) {
	svc, err := s.service(deviceOf(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	t, err := svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"task": t})
}

func (s *Serve) updateTask(w http.ResponseWriter, r *http.Request) {
	var p app.Patch
	if err := decode(w, r, &p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorReply{Error: "invalid request body"})
		return
	}
	svc, err := s.service(deviceOf(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	t, err := svc.Update(r.Context(), r.PathValue("id"), p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"task": t})
}

func (s *Serve) deleteTask(w http.ResponseWriter, r *http.Request) {
	svc, err := s.service(deviceOf(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type actionRequest struct {
	When    string `json:"when"`
	Section string `json:"section"`
	Index   *int   `json:"index"`
	Text    string `json:"text"`
}

func (s *Serve) taskAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if r.ContentLength != 0 {
		if err := decode(w, r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorReply{Error: "invalid request body"})
			return
		}
	}
	svc, err := s.service(deviceOf(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ctx, id := r.Context(), r.PathValue("id")
	index := -1
	if req.Index != nil {
		index = *req.Index
	}

	var t *task.Task
	switch r.PathValue("action") {
	case "complete":
		t, err = svc.Complete(ctx, id)
	case "uncomplete":
		t, err = svc.Uncomplete(ctx, id)
	case "urgent":
		t, err = svc.ToggleUrgent(ctx, id)
	case "subtasks":
		t, err = svc.AddSubtask(ctx, id, req.Text)
	case "schedule":
		var when app.When
		if when, err = app.ParseExplicitWhen(req.When); err == nil {
			t, err = svc.Schedule(ctx, id, when)
		}
	case "move":
		var section bucket.Name
		if section, err = bucket.ParseName(req.Section); err == nil {
			t, err = svc.Move(ctx, id, section, index)
		}
	case "reorder":
		if err = svc.Reorder(ctx, id, index); err == nil {
			t, err = svc.Get(ctx, id)
		}
	default:
		writeJSON(w, http.StatusNotFound, errorReply{Error: "unknown action"})
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"task": t})
}

func (s *Serve) toggleSubtask(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorReply{Error: "subtask index must be a number"})
		return
	}
	svc, err := s.service(deviceOf(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	t, err := svc.ToggleSubtask(r.Context(), r.PathValue("id"), i)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"task": t})
}

type sectionReply struct {
	Name  bucket.Name  `json:"name"`
	Tasks []*task.Task `json:"tasks"`
}

func (s *Serve) sections(w http.ResponseWriter, r *http.Request) {
	svc, err := s.service(deviceOf(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	b, err := svc.Sections(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]sectionReply, 0, len(bucket.Names))
	for _, n := range bucket.Names {
		tasks := b[n]
		if tasks == nil {
			tasks = []*task.Task{}
		}
		out = append(out, sectionReply{Name: n, Tasks: tasks})
	}
	writeJSON(w, http.StatusOK, map[string]any{"sections": out})
}

type suggestionReply struct {
	Suggestion  *suggest.Suggestion  `json:"suggestion"`
	Celebration *suggest.Celebration `json:"celebration,omitempty"`
	Weather     *weather.Reading     `json:"weather,omitempty"`
	Evening     bool                 `json:"evening"`
}

func (s *Serve) suggestion(w http.ResponseWriter, r *http.Request) {
	svc, err := s.service(deviceOf(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ctx := r.Context()
	var reply suggestionReply
	if skip := strings.TrimSpace(r.URL.Query().Get("skip")); skip != "" {
		reply.Suggestion, err = svc.Skip(ctx, skip)
	} else {
		reply.Suggestion, err = svc.Suggest(ctx)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if reply.Celebration, err = svc.Celebrate(ctx); err != nil {
		s.fail(w, r, err)
		return
	}
	if reply.Evening, err = svc.Evening(ctx); err != nil {
		s.fail(w, r, err)
		return
	}
	reply.Weather = svc.CurrentWeather(ctx)
	writeJSON(w, http.StatusOK, reply)
}

type parseRequest struct {
	DeviceID    string `json:"deviceId"`
	Text        string `json:"text"`
	Commit      bool   `json:"commit"`
	AcceptMerge bool   `json:"acceptMerge"`
}

type parseReply struct {
	*parse.Result
	Created []*task.Task `json:"created,omitempty"`
}

func (s *Serve) parse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := decode(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorReply{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorReply{Error: "text is required"})
		return
	}
	device := strings.TrimSpace(req.DeviceID)
	if device == "" {
		device = deviceOf(r)
	}
	svc, err := s.service(device)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ctx := r.Context()
	res, err := svc.Capture(ctx, req.Text)
	if errors.Is(err, app.ErrNoCredential) && res != nil {
		writeJSON(w, http.StatusOK, parseReply{Result: res})
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	reply := parseReply{Result: res}
	if req.Commit {
		if reply.Created, err = svc.Commit(ctx, res, req.AcceptMerge); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Serve) steps(w http.ResponseWriter, r *http.Request) {
	svc, err := s.service(deviceOf(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	t, steps, fallback, err := svc.Steps(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"task": t, "steps": steps, "fallback": fallback})
}

func (s *Serve) report(w http.ResponseWriter, r *http.Request) {
	window, _, err := timeutil.ParseWindow(r.URL.Query().Get("last"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorReply{Error: err.Error()})
		return
	}
	svc, err := s.service(deviceOf(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	until := time.Now()
	if svc.Now != nil {
		until = svc.Now()
	}
	res, err := svc.Report(r.Context(), until.Add(-window), until)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
