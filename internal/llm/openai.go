package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/comigor/creatorvault/internal/logger"
	"github.com/sashabaranov/go-openai"
)

// OpenAI sends requests to an OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	client Client
	model  string
}

func NewOpenAI(client Client, model string) *OpenAI {
	return &OpenAI{client: client, model: model}
}

// Complete implements Completer. Instructions become the system message and
// the tagged lines are joined into a single user message.
func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	var messages []openai.ChatCompletionMessage
	if req.Instructions != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.Instructions,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: strings.Join(req.Lines(), "\n"),
	})

	chatReq := openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
	}
	if t := req.Sampling.Temperature; t != nil {
		chatReq.Temperature = *t
	}
	if p := req.Sampling.TopP; p != nil {
		chatReq.TopP = *p
	}
	schema, wrapped := objectRoot(req.Schema)
	if schema != nil {
		if err := schema.Validate(); err != nil {
			return "", err
		}
		name := schema.Name
		if name == "" {
			name = "result"
		}
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   name,
				Schema: schema.JSON(),
			},
		}
	}

	logger.L.Debug("openai chat completion", "model", o.model, "messages", len(messages), "structured", req.Schema != nil)
	resp, err := o.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", errors.New("openai returned empty content")
	}
	if wrapped {
		return unwrapValue(content), nil
	}
	return content, nil
}

// wrapKey holds a non-object result inside the object the API requires at
// the root of a response schema.
const wrapKey = "value"

func objectRoot(s *Schema) (*Schema, bool) {
	if s == nil || s.Type == TypeObject {
		return s, false
	}
	return &Schema{
		Name:       s.Name,
		Type:       TypeObject,
		Properties: map[string]*Schema{wrapKey: s},
		Required:   []string{wrapKey},
	}, true
}

// unwrapValue returns the wrapped result, or content unchanged when it does
// not have the wrapper shape so the caller can classify it.
func unwrapValue(content string) string {
	var w map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &w); err != nil {
		return content
	}
	v, ok := w[wrapKey]
	if !ok || len(w) != 1 {
		return content
	}
	return string(v)
}
