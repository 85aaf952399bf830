// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/changescore/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the changescore MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Changescore Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_author_ranking ---
	s.AddTool(mcp.NewTool("get_author_ranking",
		mcp.WithDescription("Rank changelog authors by the total score of their changes."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of authors returned.")),
	), h.handleGetAuthorRanking)

	// --- 2. Tool: get_author_packages ---
	s.AddTool(mcp.NewTool("get_author_packages",
		mcp.WithDescription("Sum the score of one author per package, highest first."),
		mcp.WithString("author", mcp.Description("Normalized author address."), mcp.Required()),
	), h.handleGetAuthorPackages)

	// --- 3. Tool: get_digests ---
	s.AddTool(mcp.NewTool("get_digests",
		mcp.WithDescription("Build the per-author digests that a run would mail, without sending anything."),
		mcp.WithNumber("email_threshold", mcp.Description("Author cutoff as a multiple of the default points.")),
		mcp.WithNumber("package_threshold", mcp.Description("Package cutoff as a multiple of the default points.")),
	), h.handleGetDigests)

	// --- 4. Tool: list_entries ---
	s.AddTool(mcp.NewTool("list_entries",
		mcp.WithDescription("List stored changelog entries, optionally filtered by author or package."),
		mcp.WithString("author", mcp.Description("Only entries of this author.")),
		mcp.WithString("package", mcp.Description("Only entries of this package.")),
		mcp.WithBoolean("unscored", mcp.Description("Only entries that have not been scored yet.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of entries returned.")),
	), h.handleListEntries)

	// --- 5. Tool: get_store_status ---
	s.AddTool(mcp.NewTool("get_store_status",
		mcp.WithDescription("Report entry, weight and run counts of the store."),
	), h.handleGetStoreStatus)

	return s
}

// StartMCPServer starts the changescore MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
