package cmd

import (
	"github.com/grantops/grantscope/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the GrantScope MCP server",
	Long:  `Launch an MCP server that allows AI agents to score opportunities, explain results and build portfolios via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Stdout carries the protocol in MCP mode; setup logs go to stderr.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, engine, fetcher, sessionStore)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
