// ABOUTME: MCP command to start the MCP server.
// ABOUTME: Runs on stdio for integration with AI agents.

package main

import (
	"github.com/spf13/cobra"

	"github.com/harper/tigercub/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol server for AI agent integration.

Tools act on behalf of the account you are logged in as.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server := mcp.NewServer(repos, activities, gateway, logger)
		return server.Serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
