package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grantops/grantscope/core"
	"github.com/grantops/grantscope/internal/catalog"
	"github.com/grantops/grantscope/internal/contract"
	"github.com/grantops/grantscope/internal/store"
	"github.com/grantops/grantscope/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	engine  *core.Engine
	fetcher catalog.Fetcher
	store   store.SessionStore
}

func (h *toolHandler) handleScoreOpportunities(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if k := request.GetString("keyword", ""); k != "" {
		cfg.Keyword = k
	}
	if a := request.GetString("agency", ""); a != "" {
		cfg.Agency = a
	}
	if c := request.GetString("category", ""); c != "" {
		cfg.Category = c
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}

	filter := catalog.Filter{
		Keyword:  cfg.Keyword,
		Agency:   cfg.Agency,
		Category: cfg.Category,
		Limit:    cfg.ResultLimit,
	}
	records, err := h.fetcher.FetchOpportunities(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("catalog fetch failed: %v", err)), nil
	}

	result, err := h.engine.Score(ctx, core.ScoreRequest{
		Opportunities: records,
		Weights:       cfg.Weights,
		Profile:       cfg.Profile,
		Query:         describeQuery(cfg),
		SessionID:     request.GetString("session", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleExplainScore(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opportunityID := request.GetString("opportunity_id", "")
	if opportunityID == "" {
		return mcp.NewToolResultError("opportunity_id is required"), nil
	}

	score, err := h.engine.Explain(ctx, opportunityID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("explain failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(score, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleBuildPortfolio(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}
	tolerance := schema.RiskTolerance(request.GetString("risk_tolerance", string(schema.MediumTolerance)))

	report, err := h.engine.BuildPortfolio(ctx, sessionID, tolerance)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("portfolio synthesis failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", contract.DefaultResultLimit)
	if limit <= 0 {
		limit = contract.DefaultResultLimit
	}

	sessions, err := h.store.ListRecent(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("session listing failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(sessions, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

// describeQuery summarizes the catalog filter for the session log.
func describeQuery(cfg *contract.Config) string {
	var parts []string
	if cfg.Keyword != "" {
		parts = append(parts, "keyword="+cfg.Keyword)
	}
	if cfg.Agency != "" {
		parts = append(parts, "agency="+cfg.Agency)
	}
	if cfg.Category != "" {
		parts = append(parts, "category="+cfg.Category)
	}
	return strings.Join(parts, " ")
}
