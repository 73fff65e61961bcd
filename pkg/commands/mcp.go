package commands

import (
	"fmt"
	"net"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/adhdo/pkg/runner/mcp"
)

func addMCP(topLevel *cobra.Command) {
	var transport, addr, path string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "start the Model Context Protocol server",
		Long: `Launch an MCP server that exposes task sections, suggestions, brain dump
capture and task edits for the configured device.

The same tools are served at /mcp by "adhdo serve".`,
		Example: `
adhdo mcp
adhdo mcp --transport stdio
adhdo mcp --addr 0.0.0.0:9000 --path /tools
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			t := mcp.Transport(strings.ToLower(strings.TrimSpace(transport)))
			if t != mcp.TransportHTTP && t != mcp.TransportStdio {
				return fmt.Errorf("unsupported transport %q (expected http or stdio)", transport)
			}

			_, svc, err := loadService()
			if err != nil {
				return err
			}
			r := mcp.Runner{
				App:       svc,
				Name:      "adhdo",
				Version:   version,
				Transport: t,
				Addr:      addr,
				Path:      path,
				OnListening: func(a net.Addr) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s%s\n", a.String(), path)
				},
			}
			return r.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&transport, "transport", string(mcp.TransportHTTP), "transport to use: http or stdio")
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8081", "address to listen on for the http transport")
	cmd.Flags().StringVar(&path, "path", "/mcp", "endpoint path for the http transport")

	topLevel.AddCommand(cmd)
}
