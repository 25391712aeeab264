package negotiation

import (
	"fmt"
	"strconv"

	"github.com/comigor/creatorvault/internal/history"
	"github.com/comigor/creatorvault/internal/llm"
	"github.com/comigor/creatorvault/internal/vault"
)

const instructionTemplate = `You are an AI Negotiator Agent for "CreatorVault", a blockchain DRM system.
You represent the creator of %q.

Creator's Parameters:
- Minimum Price: %s ETH
- Royalty: %s%%
- Duration: %d days
- Commercial Use: %s
- Exclusive: %s

Your goal:
1. Negotiate the best deal for the creator.
2. Never go below the minimum price unless there are significant trade-offs (e.g., higher royalties).
3. Use "Fair Market Value" reasoning based on the creator's reputation.
4. Keep the tone professional, firm, yet collaborative.
5. If an agreement is reached, clearly state "` + AcceptanceSentinel + `" and summarize terms.`

// Negotiation sampling: moderate randomness.
var negotiationSampling = llm.Sampling{
	Temperature: llm.Float32(0.7),
	TopP:        llm.Float32(0.95),
}

// Instructions renders the fixed instruction block for one asset policy.
func Instructions(assetName string, p vault.Params) string {
	return fmt.Sprintf(instructionTemplate,
		assetName,
		p.MinPrice.String(),
		strconv.FormatFloat(p.RoyaltyPercentage, 'f', -1, 64),
		p.DurationDays,
		yesNo(p.AllowCommercial, "Allowed", "Not Allowed"),
		yesNo(p.Exclusive, "Yes", "No"),
	)
}

// BuildRequest assembles the completion request. The output depends only on
// its arguments.
func BuildRequest(assetName string, p vault.Params, log []history.Message, input string) llm.Request {
	turns := make([]llm.Turn, 0, len(log))
	for _, m := range log {
		turns = append(turns, llm.Turn{Speaker: speaker(m.Role), Text: m.Content})
	}
	return llm.Request{
		Instructions: Instructions(assetName, p),
		Turns:        turns,
		NewInput:     input,
		Sampling:     negotiationSampling,
	}
}

func speaker(r history.Role) llm.Speaker {
	switch r {
	case history.RoleAgent:
		return llm.SpeakerAgent
	case history.RoleSystem:
		return llm.SpeakerSystem
	default:
		return llm.SpeakerUser
	}
}

func yesNo(b bool, yes, no string) string {
	if b {
		return yes
	}
	return no
}
