package forecast

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/comigor/creatorvault/internal/apperr"
	"github.com/comigor/creatorvault/internal/llm"
	"github.com/comigor/creatorvault/internal/vault"
)

var history = []vault.RevenuePoint{
	{Month: "Jan", Revenue: decimal.RequireFromString("1.2"), Forecast: decimal.RequireFromString("1.2")},
	{Month: "Feb", Revenue: decimal.RequireFromString("1.5"), Forecast: decimal.RequireFromString("1.6")},
}

func TestNext(t *testing.T) {
	var got llm.Request
	f := New(llm.CompleterFunc(func(_ context.Context, req llm.Request) (string, error) {
		got = req
		return "[2.6, 3.1, 3.75]", nil
	}))

	out, err := f.Next(context.Background(), history)
	require.NoError(t, err)
	require.Len(t, out, 3)
	require.True(t, decimal.RequireFromString("3.75").Equal(out[2]))

	require.NotNil(t, got.Schema)
	require.Equal(t, llm.TypeArray, got.Schema.Type)
	require.Equal(t, llm.TypeNumber, got.Schema.Items.Type)
	require.Contains(t, got.Document, `{"month":"Jan","revenue":1.2,"forecast":1.2}`)
	require.NotContains(t, got.Document, `"revenue":"`)
	require.Contains(t, got.Document, "next 3 months")
}

func TestNext_CompletionFailure(t *testing.T) {
	f := New(llm.CompleterFunc(func(context.Context, llm.Request) (string, error) {
		return "", errors.New("network down")
	}))
	_, err := f.Next(context.Background(), history)
	require.ErrorIs(t, err, apperr.ErrCompletionFailure)
	require.NotErrorIs(t, err, apperr.ErrSchemaMismatch)
}

func TestParse_SchemaMismatch(t *testing.T) {
	for _, reply := range []string{
		`not json`,
		`{"values":[1,2,3]}`,
		`[1, 2]`,
		`[1, 2, 3, 4]`,
		`["a", "b", "c"]`,
		`["1200", "1300", "1400"]`,
		`[1200, "1300", 1400]`,
		`[1, null, 3]`,
		`[1, true, 3]`,
		`[[1], 2, 3]`,
	} {
		_, err := Parse(reply)
		require.ErrorIs(t, err, apperr.ErrSchemaMismatch, reply)
		require.ErrorIs(t, err, apperr.ErrCompletionFailure, reply)
	}
}

func TestParse_Valid(t *testing.T) {
	out, err := Parse(`[1, 2.5, 0]`)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2.5", "0"}, []string{out[0].String(), out[1].String(), out[2].String()})

	out, err = Parse(` [ -1.5 , 1e3 , 0.25 ] `)
	require.NoError(t, err)
	require.Equal(t, []string{"-1.5", "1000", "0.25"}, []string{out[0].String(), out[1].String(), out[2].String()})
}
