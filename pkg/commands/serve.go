package commands

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"tableflip.dev/adhdo/pkg/app"
	"tableflip.dev/adhdo/pkg/config"
	"tableflip.dev/adhdo/pkg/llm"
	"tableflip.dev/adhdo/pkg/runner/serve"
	"tableflip.dev/adhdo/pkg/store"
)

func addServe(topLevel *cobra.Command) {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API, completion relay and MCP endpoint",
		Long: `Serve the task API under /api/tasks for any device id, the completion
relay under /api/claude using the server-held API key, and an MCP endpoint at
/mcp for the configured device.`,
		Example: `
adhdo serve --addr 127.0.0.1:8080
ANTHROPIC_API_KEY=sk-ant-... adhdo serve
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			relay := &llm.RelayHandler{}
			if cfg.APIKey != "" {
				relay.Upstream = llm.NewDirect(cfg.APIKey)
			}

			s := serve.Serve{
				Open: func(device string) (*app.Service, error) {
					p, err := store.LoadFor(cfg, device)
					if err != nil {
						return nil, err
					}
					return newService(cfg, p, device), nil
				},
				Device:     cfg.Device,
				Relay:      relay,
				Name:       "adhdo",
				Version:    version,
				ListenAddr: addr,
				OnListening: func(a net.Addr) {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "adhdo API listening on http://%s\n", a.String())
				},
			}
			return s.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "address to listen on")
	topLevel.AddCommand(cmd)
}
