// Package negotiation turns session state into completion requests for the
// external negotiator and classifies what comes back.
package negotiation

import (
	"context"
	"strings"

	"github.com/comigor/creatorvault/internal/apperr"
	"github.com/comigor/creatorvault/internal/history"
	"github.com/comigor/creatorvault/internal/llm"
	"github.com/comigor/creatorvault/internal/logger"
	"github.com/comigor/creatorvault/internal/vault"
)

// AcceptanceSentinel marks an agent reply that closes the deal.
const AcceptanceSentinel = "OFFER ACCEPTED"

// Orchestrator dispatches one negotiation turn to the completion service.
type Orchestrator struct {
	completer llm.Completer
}

func New(completer llm.Completer) *Orchestrator {
	return &Orchestrator{completer: completer}
}

// Negotiate sends the prompt built from the asset policy, the prior log and
// the new input. Any failure is returned as an apperr CompletionFailure; there
// is no retry and no fallback reply.
func (o *Orchestrator) Negotiate(ctx context.Context, asset vault.Asset, log []history.Message, input string) (string, error) {
	req := BuildRequest(asset.Name, asset.Params, log, input)

	text, err := o.completer.Complete(ctx, req)
	if err != nil {
		logger.L.Error("negotiation completion failed", "asset_id", asset.ID, "error", err)
		return "", apperr.CompletionFailure("negotiation request failed", err)
	}
	if strings.TrimSpace(text) == "" {
		logger.L.Error("negotiation completion returned empty text", "asset_id", asset.ID)
		return "", apperr.CompletionFailure("empty negotiation reply", nil)
	}
	return text, nil
}

// Accepted reports whether content carries the acceptance sentinel. It is a
// pure check meant for render time; calling it repeatedly has no effect.
func Accepted(content string) bool {
	return strings.Contains(content, AcceptanceSentinel)
}
