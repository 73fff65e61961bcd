// Package serve runs the adhdo HTTP API: the task endpoints, the completion
// relay and an MCP endpoint over the same service.
package serve

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/adhdo/pkg/app"
	"tableflip.dev/adhdo/pkg/runner/mcp"
)

// DeviceHeader carries the owning device for requests that do not name one.
const DeviceHeader = "X-Adhdo-Device"

// Opener builds the service that owns deviceID's tasks.
type Opener func(deviceID string) (*app.Service, error)

// Serve is the HTTP API runner.
type Serve struct {
	// Open returns the per-device service. Results are cached for the life of
	// the server.
	Open Opener
	// Device is used when a request names no device.
	Device string
	// Relay handles /api/claude. Nil disables the relay.
	Relay http.Handler

	Name    string
	Version string

	ListenAddr  string
	OnListening func(net.Addr)
	Logger      *slog.Logger

	mu       sync.Mutex
	services map[string]*app.Service
}

func (s *Serve) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// service returns the cached service for deviceID.
func (s *Serve) service(deviceID string) (*app.Service, error) {
	if deviceID == "" {
		deviceID = s.Device
	}
	if deviceID == "" {
		return nil, errNoDevice
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if svc, ok := s.services[deviceID]; ok {
		return svc, nil
	}
	if s.Open == nil {
		return nil, errors.New("serve: no opener configured")
	}
	svc, err := s.Open(deviceID)
	if err != nil {
		return nil, err
	}
	if s.services == nil {
		s.services = make(map[string]*app.Service)
	}
	s.services[deviceID] = svc
	return svc, nil
}

// Handler returns the API mux.
func (s *Serve) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tasks", s.listTasks)
	mux.HandleFunc("POST /api/tasks", s.createTask)
	mux.HandleFunc("GET /api/tasks/{id}", s.getTask)
	mux.HandleFunc("PATCH /api/tasks/{id}", s.updateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.deleteTask)
	mux.HandleFunc("POST /api/tasks/{id}/{action}", s.taskAction)
	mux.HandleFunc("POST /api/tasks/{id}/subtasks/{index}/toggle", s.toggleSubtask)
	mux.HandleFunc("GET /api/sections", s.sections)
	mux.HandleFunc("GET /api/suggestion", s.suggestion)
	mux.HandleFunc("POST /api/parse", s.parse)
	mux.HandleFunc("GET /api/steps/{id}", s.steps)
	mux.HandleFunc("GET /api/report", s.report)
	if s.Relay != nil {
		mux.Handle("/api/claude", s.Relay)
	}

	local, err := s.service("")
	if err != nil && !errors.Is(err, errNoDevice) {
		return nil, err
	}
	if local != nil {
		name := s.Name
		if name == "" {
			name = "adhdo"
		}
		version := s.Version
		if version == "" {
			version = "dev"
		}
		mux.Handle("/mcp", server.NewStreamableHTTPServer(mcp.NewServer(name, version, local)))
	}
	return mux, nil
}

// Do runs the server until ctx is done.
func (s *Serve) Do(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	listenAddr := s.ListenAddr
	if listenAddr == "" {
		listenAddr = "127.0.0.1:8080"
	}
	if !strings.Contains(listenAddr, ":") {
		listenAddr = ":" + listenAddr
	}

	httpSrv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	if s.OnListening != nil {
		s.OnListening(ln.Addr())
	}
	s.logger().Info("serve: listening", "addr", ln.Addr().String())

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	err = httpSrv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
