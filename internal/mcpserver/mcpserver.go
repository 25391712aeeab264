// Package mcpserver exposes the vault tools over the Model Context Protocol,
// so an MCP client (an IDE agent, a desktop assistant) can summarize contracts,
// forecast revenue and run one-shot negotiations.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/shopspring/decimal"

	"github.com/comigor/creatorvault/internal/apperr"
	"github.com/comigor/creatorvault/internal/logger"
	"github.com/comigor/creatorvault/internal/session"
	"github.com/comigor/creatorvault/internal/vault"
)

type Registry interface {
	ListAssets(ctx context.Context) ([]vault.Asset, error)
	GetAsset(ctx context.Context, id string) (vault.Asset, error)
	Revenue(ctx context.Context) ([]vault.RevenuePoint, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, source string) (string, error)
}

type Forecaster interface {
	Next(ctx context.Context, history []vault.RevenuePoint) ([]decimal.Decimal, error)
}

type Dependencies struct {
	Registry   Registry
	Sessions   *session.Manager
	Summarizer Summarizer
	Forecaster Forecaster
}

// Tools holds the tool handlers.
type Tools struct {
	deps Dependencies
}

// New builds an MCP server with every tool registered.
func New(name, version string, deps Dependencies) *server.MCPServer {
	t := &Tools{deps: deps}
	s := server.NewMCPServer(name, version, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool("list_assets",
		mcp.WithDescription("Lists licensable assets with their creator licensing parameters."),
	), t.ListAssets)

	s.AddTool(mcp.NewTool("summarize_contract",
		mcp.WithDescription("Translates licence contract source code into plain language for a non-technical artist."),
		mcp.WithString("source", mcp.Description("Contract source code. Defaults to the CreatorVault licence contract.")),
	), t.SummarizeContract)

	s.AddTool(mcp.NewTool("forecast_revenue",
		mcp.WithDescription("Predicts the creator's revenue for the next 3 months from the monthly history."),
	), t.ForecastRevenue)

	s.AddTool(mcp.NewTool("negotiate",
		mcp.WithDescription("Sends one licensing offer to the AI negotiator of an asset and returns its reply."),
		mcp.WithString("asset_id", mcp.Required(), mcp.Description("Asset to license, e.g. as-001")),
		mcp.WithString("text", mcp.Required(), mcp.Description("The licensee's offer or message")),
	), t.Negotiate)

	return s
}

func (t *Tools) ListAssets(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	assets, err := t.deps.Registry.ListAssets(ctx)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(assets)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (t *Tools) SummarizeContract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source := request.GetString("source", vault.SampleContract)
	summary, err := t.deps.Summarizer.Summarize(ctx, source)
	if err != nil {
		return toolError(err)
	}
	return mcp.NewToolResultText(summary), nil
}

func (t *Tools) ForecastRevenue(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	points, err := t.deps.Registry.Revenue(ctx)
	if err != nil {
		return nil, err
	}
	values, err := t.deps.Forecaster.Next(ctx, points)
	if err != nil {
		return toolError(err)
	}
	b, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}

// Negotiate runs a throwaway session: start, submit once, end.
func (t *Tools) Negotiate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	assetID, err := request.RequireString("asset_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	asset, err := t.deps.Registry.GetAsset(ctx, assetID)
	if err != nil {
		return toolError(err)
	}

	s := t.deps.Sessions.Start(asset)
	defer t.deps.Sessions.End(s.ID)

	outcome, err := s.Submit(ctx, text)
	if err != nil {
		return toolError(err)
	}
	msgs := s.Messages()
	last := msgs[len(msgs)-1]
	if outcome == session.OutcomeFailed {
		return mcp.NewToolResultError(last.Content), nil
	}
	return mcp.NewToolResultText(last.Content), nil
}

// toolError reports classified failures to the client as tool errors and
// anything else as a protocol error.
func toolError(err error) (*mcp.CallToolResult, error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		logger.L.Warn("mcp tool failed", "kind", appErr.Kind, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return nil, err
}
