// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/grantops/grantscope/core"
	"github.com/grantops/grantscope/internal/catalog"
	"github.com/grantops/grantscope/internal/contract"
	"github.com/grantops/grantscope/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the GrantScope MCP server without
// starting it. This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, engine *core.Engine, fetcher catalog.Fetcher, st store.SessionStore) *server.MCPServer {
	s := server.NewMCPServer(
		"GrantScope Scoring Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		engine:  engine,
		fetcher: fetcher,
		store:   st,
	}

	// --- 1. Tool: score_opportunities ---
	s.AddTool(mcp.NewTool("score_opportunities",
		mcp.WithDescription("Fetch funding opportunities from the grants catalog and score them against the applicant profile."),
		mcp.WithString("keyword", mcp.Description("Keyword to search the catalog for.")),
		mcp.WithString("agency", mcp.Description("Agency code filter, e.g. 'NSF' or 'NIH'.")),
		mcp.WithString("category", mcp.Description("Funding category filter, e.g. 'Science and Technology'.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of opportunities fetched and scored.")),
		mcp.WithString("session", mcp.Description("Append scores to an existing session instead of opening a new one.")),
	), h.handleScoreOpportunities)

	// --- 2. Tool: explain_score ---
	s.AddTool(mcp.NewTool("explain_score",
		mcp.WithDescription("Return the most recent persisted score for an opportunity with its full component breakdown."),
		mcp.WithString("opportunity_id", mcp.Description("The opportunity identifier to explain."), mcp.Required()),
	), h.handleExplainScore)

	// --- 3. Tool: build_portfolio ---
	s.AddTool(mcp.NewTool("build_portfolio",
		mcp.WithDescription("Partition a scored session into reach, match and safety tiers under a risk tolerance."),
		mcp.WithString("session_id", mcp.Description("The scoring session to synthesize a portfolio from."), mcp.Required()),
		mcp.WithString("risk_tolerance", mcp.Description("Risk tolerance (low, medium, high). Defaults to 'medium'."), mcp.Enum("low", "medium", "high")),
	), h.handleBuildPortfolio)

	// --- 4. Tool: list_sessions ---
	s.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List recent scoring sessions, newest first."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of sessions returned.")),
	), h.handleListSessions)

	return s
}

// StartMCPServer starts the GrantScope MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, engine *core.Engine, fetcher catalog.Fetcher, st store.SessionStore) error {
	s := NewMCPServer(baseCfg, engine, fetcher, st)
	return server.ServeStdio(s)
}
