package serve

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tableflip.dev/adhdo/pkg/app"
	"tableflip.dev/adhdo/pkg/llm"
	"tableflip.dev/adhdo/pkg/store"
	"tableflip.dev/adhdo/pkg/task"
)

var wednesday = time.Date(2025, time.June, 11, 10, 0, 0, 0, time.Local)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	base := t.TempDir()
	s := &Serve{
		Device: "local",
		Relay:  &llm.RelayHandler{},
		Open: func(device string) (*app.Service, error) {
			p, err := store.OpenDiskv(base, device)
			if err != nil {
				return nil, err
			}
			return &app.Service{
				Persistence: p,
				Owner:       device,
				Now:         func() time.Time { return wednesday },
			}, nil
		},
	}
	h, err := s.Handler()
	if err != nil {
		t.Fatalf("Handler failed: %v", err)
	}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

type createReply struct {
	Success bool       `json:"success"`
	Task    *task.Task `json:"task"`
	Error   string     `json:"error"`
}

type listReply struct {
	Tasks []*task.Task `json:"tasks"`
	Error string       `json:"error"`
}

type taskReply struct {
	Task  *task.Task `json:"task"`
	Error string     `json:"error"`
}

func TestCreateTaskRequiresDeviceAndText(t *testing.T) {
	srv := newTestServer(t)

	for _, body := range []map[string]string{
		{"text": "buy milk"},
		{"deviceId": "phone"},
		{"deviceId": "phone", "text": "   "},
	} {
		var reply createReply
		if code := do(t, http.MethodPost, srv.URL+"/api/tasks", body, &reply); code != http.StatusBadRequest {
			t.Fatalf("POST %v: expected 400, got %d", body, code)
		}
		if reply.Error != "deviceId and text are required" {
			t.Fatalf("unexpected error %q", reply.Error)
		}
	}
}

func TestCreateAndListPerDevice(t *testing.T) {
	srv := newTestServer(t)

	var created createReply
	code := do(t, http.MethodPost, srv.URL+"/api/tasks", map[string]any{"deviceId": "phone", "text": "buy milk"}, &created)
	if code != http.StatusOK || !created.Success {
		t.Fatalf("expected success, got %d %+v", code, created)
	}
	if created.Task.Category != task.DefaultCategory || created.Task.Location != task.LocationEither {
		t.Fatalf("expected defaults, got %q %q", created.Task.Category, created.Task.Location)
	}
	if created.Task.Owner != "phone" {
		t.Fatalf("expected owner phone, got %q", created.Task.Owner)
	}

	var list listReply
	if code := do(t, http.MethodGet, srv.URL+"/api/tasks?deviceId=phone", nil, &list); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(list.Tasks) != 1 || list.Tasks[0].ID != created.Task.ID {
		t.Fatalf("expected the created task, got %+v", list.Tasks)
	}

	var other listReply
	do(t, http.MethodGet, srv.URL+"/api/tasks?deviceId=laptop", nil, &other)
	if len(other.Tasks) != 0 {
		t.Fatalf("expected no tasks for another device, got %d", len(other.Tasks))
	}

	var missing listReply
	if code := do(t, http.MethodGet, srv.URL+"/api/tasks", nil, &missing); code != http.StatusBadRequest {
		t.Fatalf("expected 400 without deviceId, got %d", code)
	}
}

func TestTaskActions(t *testing.T) {
	srv := newTestServer(t)

	var created createReply
	do(t, http.MethodPost, srv.URL+"/api/tasks", map[string]any{"deviceId": "local", "text": "mow the lawn"}, &created)
	id := created.Task.ID

	var scheduled taskReply
	if code := do(t, http.MethodPost, srv.URL+"/api/tasks/"+id+"/schedule", map[string]string{"when": "tomorrow"}, &scheduled); code != http.StatusOK {
		t.Fatalf("schedule: expected 200, got %d (%s)", code, scheduled.Error)
	}
	if scheduled.Task.DoDate != "2025-06-12" {
		t.Fatalf("expected tomorrow, got %q", scheduled.Task.DoDate)
	}

	var missing taskReply
	if code := do(t, http.MethodPost, srv.URL+"/api/tasks/"+id+"/schedule", map[string]string{}, &missing); code != http.StatusBadRequest {
		t.Fatalf("schedule without when: expected 400, got %d", code)
	}
	var kept taskReply
	do(t, http.MethodGet, srv.URL+"/api/tasks/"+id+"?deviceId=local", nil, &kept)
	if kept.Task.DoDate != "2025-06-12" {
		t.Fatalf("schedule without when changed the date to %q", kept.Task.DoDate)
	}

	var urgent taskReply
	do(t, http.MethodPost, srv.URL+"/api/tasks/"+id+"/urgent", nil, &urgent)
	if !urgent.Task.Urgent {
		t.Fatalf("expected urgent task")
	}

	var bad taskReply
	if code := do(t, http.MethodPost, srv.URL+"/api/tasks/"+id+"/move", map[string]string{"section": "someday"}, &bad); code != http.StatusBadRequest {
		t.Fatalf("move: expected 400, got %d", code)
	}

	var edited taskReply
	if code := do(t, http.MethodPatch, srv.URL+"/api/tasks/"+id, map[string]string{"notes": "front yard only"}, &edited); code != http.StatusOK {
		t.Fatalf("patch: expected 200, got %d (%s)", code, edited.Error)
	}
	if edited.Task.Notes != "front yard only" {
		t.Fatalf("expected notes, got %q", edited.Task.Notes)
	}

	var done taskReply
	do(t, http.MethodPost, srv.URL+"/api/tasks/"+id+"/complete", nil, &done)
	if !done.Task.Completed || done.Task.CompletedAt == nil {
		t.Fatalf("expected completed task, got %+v", done.Task)
	}

	if code := do(t, http.MethodDelete, srv.URL+"/api/tasks/"+id, nil, nil); code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", code)
	}
	var gone taskReply
	if code := do(t, http.MethodGet, srv.URL+"/api/tasks/"+id, nil, &gone); code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", code)
	}
}

func TestSuggestionWithoutKey(t *testing.T) {
	srv := newTestServer(t)
	do(t, http.MethodPost, srv.URL+"/api/tasks", map[string]any{"deviceId": "local", "text": "pay rent", "doDate": "2025-06-11"}, nil)

	var reply map[string]any
	if code := do(t, http.MethodGet, srv.URL+"/api/suggestion", nil, &reply); code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a key, got %d", code)
	}
}

func TestRelayWithoutKey(t *testing.T) {
	srv := newTestServer(t)

	var reply map[string]string
	code := do(t, http.MethodPost, srv.URL+"/api/claude", map[string]string{"prompt": "hi"}, &reply)
	if code != http.StatusInternalServerError || reply["error"] != "API key not configured" {
		t.Fatalf("expected 500 API key not configured, got %d %v", code, reply)
	}
}

func TestSectionsListsEveryBucket(t *testing.T) {
	srv := newTestServer(t)

	var reply struct {
		Sections []sectionReply `json:"sections"`
	}
	if code := do(t, http.MethodGet, srv.URL+"/api/sections", nil, &reply); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(reply.Sections) != 5 {
		t.Fatalf("expected 5 sections, got %d", len(reply.Sections))
	}
}
