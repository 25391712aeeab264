package mcpserver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/comigor/creatorvault/internal/contract"
	"github.com/comigor/creatorvault/internal/forecast"
	"github.com/comigor/creatorvault/internal/llm"
	"github.com/comigor/creatorvault/internal/negotiation"
	"github.com/comigor/creatorvault/internal/session"
	"github.com/comigor/creatorvault/internal/vault"
)

func newTools(t *testing.T, c llm.CompleterFunc) (*Tools, *session.Manager) {
	t.Helper()
	store := vault.Open(context.Background(), ":memory:")
	t.Cleanup(func() { store.Close() })
	sessions := session.NewManager(negotiation.New(c), 0)
	return &Tools{deps: Dependencies{
		Registry:   store,
		Sessions:   sessions,
		Summarizer: contract.NewSummarizer(c),
		Forecaster: forecast.New(c),
	}}, sessions
}

func call(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestNew_RegistersTools(t *testing.T) {
	tools, sessions := newTools(t, func(context.Context, llm.Request) (string, error) { return "", nil })
	s := New("creatorvault", "test", tools.deps)
	require.NotNil(t, s)
	require.Zero(t, sessions.Len())
}

func TestListAssets(t *testing.T) {
	tools, _ := newTools(t, nil)
	res, err := tools.ListAssets(context.Background(), call(nil))
	require.NoError(t, err)
	require.Contains(t, text(t, res), "Cyberpunk Soundscape Vol 1")
}

func TestSummarizeContract_DefaultsToSample(t *testing.T) {
	var got llm.Request
	tools, _ := newTools(t, func(_ context.Context, req llm.Request) (string, error) {
		got = req
		return "plain words", nil
	})

	res, err := tools.SummarizeContract(context.Background(), call(map[string]any{}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Equal(t, "plain words", text(t, res))
	require.True(t, strings.HasSuffix(got.Document, vault.SampleContract))
}

func TestSummarizeContract_Failure(t *testing.T) {
	tools, _ := newTools(t, func(context.Context, llm.Request) (string, error) {
		return "", errors.New("503")
	})
	res, err := tools.SummarizeContract(context.Background(), call(map[string]any{"source": "contract X {}"}))
	require.NoError(t, err)
	require.True(t, res.IsError)
}

func TestForecastRevenue(t *testing.T) {
	tools, _ := newTools(t, func(context.Context, llm.Request) (string, error) {
		return "[1, 2, 3.5]", nil
	})
	res, err := tools.ForecastRevenue(context.Background(), call(nil))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Equal(t, `["1","2","3.5"]`, text(t, res))
}

func TestForecastRevenue_SchemaMismatch(t *testing.T) {
	tools, _ := newTools(t, func(context.Context, llm.Request) (string, error) {
		return "[1]", nil
	})
	res, err := tools.ForecastRevenue(context.Background(), call(nil))
	require.NoError(t, err)
	require.True(t, res.IsError)
}

func TestNegotiate(t *testing.T) {
	tools, sessions := newTools(t, func(_ context.Context, req llm.Request) (string, error) {
		require.Equal(t, "offer 0.3 ETH", req.NewInput)
		return "OFFER ACCEPTED at 0.3 ETH", nil
	})

	res, err := tools.Negotiate(context.Background(), call(map[string]any{"asset_id": "as-001", "text": "offer 0.3 ETH"}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Equal(t, "OFFER ACCEPTED at 0.3 ETH", text(t, res))
	require.Zero(t, sessions.Len(), "one-shot sessions are discarded")
}

func TestNegotiate_Errors(t *testing.T) {
	tools, _ := newTools(t, func(context.Context, llm.Request) (string, error) {
		return "", errors.New("down")
	})
	ctx := context.Background()

	res, err := tools.Negotiate(ctx, call(map[string]any{"text": "hi"}))
	require.NoError(t, err)
	require.True(t, res.IsError)

	res, err = tools.Negotiate(ctx, call(map[string]any{"asset_id": "as-404", "text": "hi"}))
	require.NoError(t, err)
	require.True(t, res.IsError)

	res, err = tools.Negotiate(ctx, call(map[string]any{"asset_id": "as-001", "text": "   "}))
	require.NoError(t, err)
	require.True(t, res.IsError)

	res, err = tools.Negotiate(ctx, call(map[string]any{"asset_id": "as-001", "text": "hi"}))
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Equal(t, session.FailureNotice, text(t, res))
}
