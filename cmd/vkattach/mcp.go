// ABOUTME: MCP server command implementation
// ABOUTME: Starts the vkattach MCP server in stdio mode

package main

import (
	"github.com/spf13/cobra"

	"github.com/harper/vkattach/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server (stdio mode)",
	Long: `Start the Model Context Protocol server for AI agent integration.

The MCP server communicates via stdio, allowing agents to list archived
messages, walk their forwards and load attachment payloads.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	server, err := mcp.NewServer(dbConn, api, logger)
	if err != nil {
		return err
	}
	return server.Serve(cmd.Context())
}
