package cmd

import (
	"github.com/spf13/cobra"

	"github.com/joescharf/itlog/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets an MCP client log and query issues. Configure it with:

  {
    "mcpServers": {
      "itlog": { "command": "itlog", "args": ["mcp"] }
    }
  }

Available tools: itlog_log_issue, itlog_list_issues, itlog_health`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		srv := mcp.NewServer(a.tracker, a.csv, a.json, buildVersion)
		return srv.ServeStdio(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
