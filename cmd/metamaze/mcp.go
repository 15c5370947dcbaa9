package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/aretw0/metamaze/internal/cli"
	"github.com/aretw0/metamaze/pkg/adapters/mcp"
	"github.com/aretw0/metamaze/pkg/session"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes maze sessions as MCP tools so AI agents can walk mazes and ask the planner.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		logger, err := newLogger()
		if err != nil {
			return err
		}
		backend, err := openBackend(logger)
		if err != nil {
			return err
		}
		defer backend.Close()

		host := backend.Host(logger, session.WithHooks(cli.DebugHooks(logger)))
		srv := mcp.NewServer(host, mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			// Keep stray log output away from the JSON-RPC stream.
			log.SetOutput(os.Stderr)
			logger.Info("Starting metamaze MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			ctx := cli.NewSignalContext(cmd.Context())
			defer ctx.Cancel()
			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
