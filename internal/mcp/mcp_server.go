// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/benchvis/breakeven/internal/contract"
)

// NewMCPServer initializes and configures the Breakeven MCP server without
// starting it. This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config) *server.MCPServer {
	s := server.NewMCPServer(
		"Breakeven Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
	}

	// --- 1. Tool: analyze_subset ---
	s.AddTool(mcp.NewTool("analyze_subset",
		mcp.WithDescription("Compute breakeven points for subset verification: per variant, the number of verified indices at which fast verification stops paying off against full verification."),
		mcp.WithString("results_root", mcp.Description("Root of the benchmark results tree (defaults to the configured root).")),
		mcp.WithString("variants", mcp.Description("Comma-separated signature variants to analyze (e.g. '512,1024').")),
		mcp.WithBoolean("reference", mcp.Description("Include the C reference baseline when its measurements exist.")),
	), h.handleAnalyzeSubset)

	// --- 2. Tool: analyze_stream ---
	s.AddTool(mcp.NewTool("analyze_stream",
		mcp.WithDescription("Compute stream verification results: fast-then-full batch timings across invalid-signature fractions, against the median full-verification baseline per variant."),
		mcp.WithString("results_root", mcp.Description("Root of the benchmark results tree.")),
		mcp.WithString("variants", mcp.Description("Comma-separated signature variants to analyze.")),
	), h.handleAnalyzeStream)

	// --- 3. Tool: get_estimates ---
	s.AddTool(mcp.NewTool("get_estimates",
		mcp.WithDescription("List every configured benchmark cell with its loaded estimate. Unmeasured cells are included with null measurement fields."),
		mcp.WithString("results_root", mcp.Description("Root of the benchmark results tree.")),
		mcp.WithString("variants", mcp.Description("Comma-separated signature variants to include.")),
	), h.handleGetEstimates)

	return s
}

// StartMCPServer starts the Breakeven MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config) error {
	s := NewMCPServer(baseCfg)
	return server.ServeStdio(s)
}
