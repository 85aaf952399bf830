package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/changescore/core"
	"github.com/huangsam/changescore/internal/contract"
	"github.com/huangsam/changescore/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// store returns the process-wide store or an error result when none is open.
func (h *toolHandler) store() (contract.Store, *mcp.CallToolResult) {
	if h.mgr == nil {
		return nil, mcp.NewToolResultError("store is not initialized")
	}
	s := h.mgr.GetStore()
	if s == nil {
		return nil, mcp.NewToolResultError("store is not initialized")
	}
	return s, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetAuthorRanking(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, errRes := h.store()
	if errRes != nil {
		return errRes, nil
	}
	cfg := h.baseCfg.Clone()
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}

	totals, err := store.AuthorTotals(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ranking failed: %v", err)), nil
	}
	digests, err := core.BuildDigests(ctx, store, core.ReportOptionsFrom(cfg))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ranking failed: %v", err)), nil
	}

	ranked := schema.EnrichAuthors(totals, cfg.EmailCutoff(), digests)
	if cfg.ResultLimit > 0 && len(ranked) > cfg.ResultLimit {
		ranked = ranked[:cfg.ResultLimit]
	}
	return jsonResult(ranked)
}

func (h *toolHandler) handleGetAuthorPackages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	author := request.GetString("author", "")
	if author == "" {
		return mcp.NewToolResultError("author is required"), nil
	}
	store, errRes := h.store()
	if errRes != nil {
		return errRes, nil
	}

	totals, err := store.PackageTotals(ctx, author)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("package totals failed: %v", err)), nil
	}
	return jsonResult(totals)
}

func (h *toolHandler) handleGetDigests(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.EmailThreshold = request.GetFloat("email_threshold", cfg.EmailThreshold)
	cfg.PackageThreshold = request.GetFloat("package_threshold", cfg.PackageThreshold)
	if cfg.EmailThreshold < 0 || cfg.PackageThreshold < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("thresholds cannot be negative (received %g, %g)", cfg.EmailThreshold, cfg.PackageThreshold)), nil
	}
	store, errRes := h.store()
	if errRes != nil {
		return errRes, nil
	}

	digests, err := core.BuildDigests(ctx, store, core.ReportOptionsFrom(cfg))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("digests failed: %v", err)), nil
	}
	if digests == nil {
		digests = []schema.Digest{}
	}
	return jsonResult(digests)
}

func (h *toolHandler) handleListEntries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, errRes := h.store()
	if errRes != nil {
		return errRes, nil
	}
	filter := schema.EntryFilter{
		Author:       request.GetString("author", ""),
		Package:      request.GetString("package", ""),
		OnlyUnscored: request.GetBool("unscored", false),
	}
	limit := h.baseCfg.ResultLimit
	if l := request.GetInt("limit", 0); l > 0 {
		limit = l
	}

	entries, err := store.ListEntries(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing entries failed: %v", err)), nil
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	if entries == nil {
		entries = []schema.Entry{}
	}
	return jsonResult(entries)
}

func (h *toolHandler) handleGetStoreStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, errRes := h.store()
	if errRes != nil {
		return errRes, nil
	}
	status, err := store.GetStatus(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("status failed: %v", err)), nil
	}
	return jsonResult(status)
}
