package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/comigor/creatorvault/internal/config"
	"github.com/comigor/creatorvault/internal/logger"
	"google.golang.org/genai"
)

// generator is the part of genai.Models the Gemini backend calls.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini sends requests to the Gemini API.
type Gemini struct {
	models generator
	model  string
}

// NewGemini creates a Gemini backend using the API key from cfg.
func NewGemini(ctx context.Context, cfg config.LLMConfig) (*Gemini, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{models: client.Models, model: cfg.Model}, nil
}

// Complete implements Completer. Each tagged line is sent as its own user content.
func (g *Gemini) Complete(ctx context.Context, req Request) (string, error) {
	lines := req.Lines()
	contents := make([]*genai.Content, 0, len(lines))
	for _, line := range lines {
		contents = append(contents, genai.NewContentFromText(line, genai.RoleUser))
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: req.Sampling.Temperature,
		TopP:        req.Sampling.TopP,
	}
	if req.Instructions != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.Instructions, genai.RoleUser)
	}
	if req.Schema != nil {
		if err := req.Schema.Validate(); err != nil {
			return "", err
		}
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = toGenaiSchema(req.Schema)
	}

	logger.L.Debug("gemini generate content", "model", g.model, "contents", len(contents), "structured", req.Schema != nil)
	res, err := g.models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := res.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("gemini returned empty text")
	}
	return text, nil
}

var genaiTypes = map[SchemaType]genai.Type{
	TypeArray:   genai.TypeArray,
	TypeNumber:  genai.TypeNumber,
	TypeObject:  genai.TypeObject,
	TypeString:  genai.TypeString,
	TypeBoolean: genai.TypeBoolean,
}

// toGenaiSchema expects a schema that passed Validate.
func toGenaiSchema(s *Schema) *genai.Schema {
	out := &genai.Schema{Type: genaiTypes[s.Type]}
	if s.Items != nil {
		out.Items = toGenaiSchema(s.Items)
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = toGenaiSchema(p)
		}
	}
	if len(s.Required) > 0 {
		out.Required = append([]string{}, s.Required...)
	}
	return out
}
