// Package contract translates licence contract source into plain language.
package contract

import (
	"context"

	"github.com/comigor/creatorvault/internal/apperr"
	"github.com/comigor/creatorvault/internal/llm"
	"github.com/comigor/creatorvault/internal/logger"
)

const summaryPrompt = "Translate the following Solidity smart contract code into plain, human-readable language for a non-technical artist. Highlight the key obligations and payment terms: \n\n"

// Low temperature: the same contract should read the same way each time.
var summarySampling = llm.Sampling{Temperature: llm.Float32(0.3)}

// Summarizer is stateless; it keeps no history between calls.
type Summarizer struct {
	completer llm.Completer
}

func NewSummarizer(completer llm.Completer) *Summarizer {
	return &Summarizer{completer: completer}
}

// Request builds the single-document request for source. Empty source still
// yields a well-formed request.
func Request(source string) llm.Request {
	return llm.Request{
		Document: summaryPrompt + source,
		Sampling: summarySampling,
	}
}

// Summarize returns the plain-language reading of source, or an apperr
// CompletionFailure.
func (s *Summarizer) Summarize(ctx context.Context, source string) (string, error) {
	text, err := s.completer.Complete(ctx, Request(source))
	if err != nil {
		logger.L.Error("contract summary failed", "source_len", len(source), "error", err)
		return "", apperr.CompletionFailure("contract summary failed", err)
	}
	return text, nil
}
