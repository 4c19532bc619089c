package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neilberkman/gptwrapped/cmd/gptwrapped/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for assistant integration",
	Long: `Start an MCP (Model Context Protocol) server exposing two tools:
analyze_archive builds a report from a conversations.json path, and
stats_summary returns the averages across recorded archives.

Configure in your MCP client's config file:
  {
    "mcpServers": {
      "gptwrapped": {
        "command": "gptwrapped",
        "args": ["mcp"]
      }
    }
  }
`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	store := newStore()
	if err := mcp.StartServer(newService(store), store); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
