package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/knowbase/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can search the
knowledge base and read file content.

By default, the server communicates over stdio using JSON-RPC.
Use --port (or the mcp.port setting) to start an HTTP server instead.

Examples:
  # Stdio mode (default)
  knowbase mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  knowbase mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "knowbase": {
        "command": "/path/to/knowbase",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}

	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	if !cmd.Flags().Changed("port") && svc.Settings != nil {
		if settings, err := svc.Settings.Get(); err == nil {
			port = settings.MCP.Port
		}
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Search: svc.Search,
		Files:  svc.Files,
		Ingest: svc.Ingest,
	})
	if err != nil {
		return err
	}

	opts := mcp.ServeOptions{Port: port}
	if port > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost:%d\n", port)
	}
	return server.Serve(cmd.Context(), opts)
}
