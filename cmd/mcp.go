package cmd

import (
	"github.com/huangsam/changescore/internal/iocache"
	"github.com/huangsam/changescore/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:     "mcp",
	Short:   "Start the changescore MCP server",
	Long:    `Launch an MCP server over stdio that lets AI agents query author rankings, package totals and digests.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, iocache.Manager)
	},
}
