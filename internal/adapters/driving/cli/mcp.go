package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/urbanbot/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask
UrbanBot questions and read the city dashboard.

Tools:      ask
Resources:  urbanbot://summary, urbanbot://topics

By default the server speaks JSON-RPC over stdio. Use --port to serve
over HTTP instead, for example with the MCP Inspector.

Examples:
  urbanbot mcp serve
  urbanbot mcp serve --port 8090

Desktop client configuration:
  {
    "mcpServers": {
      "urbanbot": {
        "command": "/path/to/urbanbot",
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
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	server, err := mcp.NewServer(&mcp.Ports{
		Assistant: rt.Assistant(),
		Dashboard: rt.Dashboard(),
		Rules:     rt.Rules(),
		Version:   version,
	})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		// stdout carries JSON-RPC in stdio mode, so only announce in HTTP mode.
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
