// Package forecast asks the completion service for a short revenue
// projection as structured output.
package forecast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/comigor/creatorvault/internal/apperr"
	"github.com/comigor/creatorvault/internal/llm"
	"github.com/comigor/creatorvault/internal/logger"
	"github.com/comigor/creatorvault/internal/vault"
)

// Months is the projection horizon.
const Months = 3

var numbers = &llm.Schema{Name: "revenue_forecast", Type: llm.TypeArray, Items: &llm.Schema{Type: llm.TypeNumber}}

type Forecaster struct {
	completer llm.Completer
}

func New(completer llm.Completer) *Forecaster {
	return &Forecaster{completer: completer}
}

// point is a revenue point as shown to the model, with plain JSON numbers.
type point struct {
	Month    string      `json:"month"`
	Revenue  json.Number `json:"revenue"`
	Forecast json.Number `json:"forecast"`
}

// Request builds the structured-output request for the given history.
func Request(history []vault.RevenuePoint) (llm.Request, error) {
	points := make([]point, 0, len(history))
	for _, p := range history {
		points = append(points, point{Month: p.Month, Revenue: json.Number(p.Revenue.String()), Forecast: json.Number(p.Forecast.String())})
	}
	data, err := json.Marshal(points)
	if err != nil {
		return llm.Request{}, fmt.Errorf("encode revenue history: %w", err)
	}
	return llm.Request{
		Document: fmt.Sprintf("Based on this historical monthly revenue data: %s, predict the next %d months of revenue. Return ONLY a JSON array of %d numbers.", data, Months, Months),
		Schema:   numbers,
	}, nil
}

// Next predicts the next Months values. A reply that is not a JSON array of
// exactly Months numbers is an apperr SchemaMismatch.
func (f *Forecaster) Next(ctx context.Context, history []vault.RevenuePoint) ([]decimal.Decimal, error) {
	req, err := Request(history)
	if err != nil {
		return nil, err
	}

	text, err := f.completer.Complete(ctx, req)
	if err != nil {
		logger.L.Error("forecast completion failed", "error", err)
		return nil, apperr.CompletionFailure("forecast request failed", err)
	}

	values, err := Parse(text)
	if err != nil {
		logger.L.Error("forecast reply did not match schema", "reply", text, "error", err)
		return nil, err
	}
	return values, nil
}

// Parse decodes a forecast reply. Every element must be a JSON number;
// numeric strings are rejected.
func Parse(text string) ([]decimal.Decimal, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, apperr.SchemaMismatch("forecast is not a JSON array of numbers", err)
	}
	if len(raw) != Months {
		return nil, apperr.SchemaMismatch(fmt.Sprintf("forecast has %d values, want %d", len(raw), Months), nil)
	}
	out := make([]decimal.Decimal, 0, len(raw))
	for _, n := range raw {
		if len(n) == 0 || (n[0] != '-' && (n[0] < '0' || n[0] > '9')) {
			return nil, apperr.SchemaMismatch(fmt.Sprintf("forecast value %s is not a number", n), nil)
		}
		d, err := decimal.NewFromString(string(n))
		if err != nil {
			return nil, apperr.SchemaMismatch("forecast value is not a number", err)
		}
		out = append(out, d)
	}
	return out, nil
}
