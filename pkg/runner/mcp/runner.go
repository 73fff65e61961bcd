package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/adhdo/pkg/app"
)

// Transport selects how the MCP server is exposed.
type Transport string

const (
	TransportHTTP  Transport = "http"
	TransportStdio Transport = "stdio"
)

// Runner starts an MCP server over one device's tasks.
type Runner struct {
	App     *app.Service
	Name    string
	Version string

	Transport Transport
	// Addr and Path apply to the HTTP transport.
	Addr        string
	Path        string
	OnListening func(net.Addr)
}

// NewServer builds the MCP server with every adhdo resource and tool
// registered.
func NewServer(name, version string, a *app.Service) *server.MCPServer {
	srv := server.NewMCPServer(
		fmt.Sprintf("%s MCP", name),
		version,
		server.WithResourceCapabilities(false, false),
		server.WithToolCapabilities(false),
		server.WithInstructions("Manage adhdo tasks: list sections, capture brain dumps, schedule, complete, and ask for the one thing to do now."),
		server.WithResourceRecovery(),
		server.WithRecovery(),
	)

	svc := NewService(a)
	registerResources(srv, svc)
	registerTools(srv, svc)
	return srv
}

// Do serves until ctx is done, or until stdin closes for the stdio
// transport.
func (r Runner) Do(ctx context.Context) error {
	if r.App == nil {
		return errors.New("mcp runner requires an app service")
	}
	name := r.Name
	if name == "" {
		name = "adhdo"
	}
	version := r.Version
	if version == "" {
		version = "dev"
	}
	srv := NewServer(name, version, r.App)

	switch r.Transport {
	case "", TransportHTTP:
		return r.serveHTTP(ctx, srv)
	case TransportStdio:
		return server.ServeStdio(srv)
	default:
		return fmt.Errorf("unknown MCP transport %q", r.Transport)
	}
}

func (r Runner) serveHTTP(ctx context.Context, srv *server.MCPServer) error {
	path := strings.TrimSpace(r.Path)
	if path == "" {
		path = "/mcp"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	addr := r.Addr
	if addr == "" {
		addr = "127.0.0.1:8081"
	}

	mux := http.NewServeMux()
	mux.Handle(path, server.NewStreamableHTTPServer(srv))
	httpSrv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if r.OnListening != nil {
		r.OnListening(ln.Addr())
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	if err := httpSrv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
