package main

import (
	"fmt"

	"github.com/aretw0/tether/internal/adapters/mcp"
	"github.com/aretw0/tether/internal/cli"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes every registered command as an MCP tool without parameters.
The tool result is the command's output; failures are returned as tool errors.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		listen, _ := cmd.Flags().GetString("listen")
		if listen == "" {
			listen = settings.MCP.Listen
		}
		baseURL := settings.MCP.BaseURL
		if baseURL == "" {
			baseURL = "http://" + listen
		}

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		srv := mcp.NewServer(rt.Host, mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			logger.Info("starting tether MCP server (stdio)", "tools", len(srv.Tools()))
			return srv.ServeStdio()
		case "sse":
			ctx := cli.NewSignalContext(cmd.Context())
			defer ctx.Cancel()
			return srv.ServeSSE(ctx, listen, baseURL)
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("listen", "", "Address to listen on (only for SSE)")
}
