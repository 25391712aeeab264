package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Speaker string

const (
	SpeakerUser   Speaker = "user"
	SpeakerAgent  Speaker = "agent"
	SpeakerSystem Speaker = "system"
)

// Turn is one prior entry of a conversation.
type Turn struct {
	Speaker Speaker
	Text    string
}

// Sampling carries the generation controls. Nil fields use the provider default.
type Sampling struct {
	Temperature *float32
	TopP        *float32
}

type SchemaType string

const (
	TypeArray   SchemaType = "array"
	TypeNumber  SchemaType = "number"
	TypeObject  SchemaType = "object"
	TypeString  SchemaType = "string"
	TypeBoolean SchemaType = "boolean"
)

// Schema describes the structured output requested from the service.
// Items applies to arrays; Properties and Required apply to objects.
type Schema struct {
	Name       string
	Type       SchemaType
	Items      *Schema
	Properties map[string]*Schema
	Required   []string
}

// Validate checks that every node has a known type.
func (s *Schema) Validate() error {
	switch s.Type {
	case TypeArray:
		if s.Items == nil {
			return fmt.Errorf("schema %q: array without items", s.Name)
		}
		return s.Items.Validate()
	case TypeObject:
		for name, p := range s.Properties {
			if p == nil {
				return fmt.Errorf("schema %q: property %q has no schema", s.Name, name)
			}
			if err := p.Validate(); err != nil {
				return err
			}
		}
		return nil
	case TypeNumber, TypeString, TypeBoolean:
		return nil
	default:
		return fmt.Errorf("schema %q: unsupported type %q", s.Name, s.Type)
	}
}

// JSON renders the schema as JSON Schema. Objects are closed.
func (s *Schema) JSON() json.RawMessage {
	b, _ := json.Marshal(s.jsonValue())
	return b
}

func (s *Schema) jsonValue() map[string]any {
	v := map[string]any{"type": string(s.Type)}
	if s.Items != nil {
		v["items"] = s.Items.jsonValue()
	}
	if s.Type == TypeObject {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = p.jsonValue()
		}
		v["properties"] = props
		v["required"] = append([]string{}, s.Required...)
		v["additionalProperties"] = false
	}
	return v
}

// Request is the boundary contract with the completion service.
//
// A conversational request carries Instructions, Turns and NewInput.
// A document request carries only Document. Schema asks for structured output.
type Request struct {
	Instructions string
	Turns        []Turn
	NewInput     string
	Document     string
	Sampling     Sampling
	Schema       *Schema
}

// IsDocument reports whether the request is a single free-text document.
func (r Request) IsDocument() bool {
	return len(r.Turns) == 0 && r.NewInput == "" && r.Instructions == ""
}

// Lines returns the user-side content in send order. Turns are tagged with
// their upper-cased speaker, and the new input is tagged USER.
func (r Request) Lines() []string {
	if r.IsDocument() {
		return []string{r.Document}
	}
	lines := make([]string, 0, len(r.Turns)+1)
	for _, t := range r.Turns {
		lines = append(lines, Tag(t.Speaker, t.Text))
	}
	if r.NewInput != "" {
		lines = append(lines, Tag(SpeakerUser, r.NewInput))
	}
	return lines
}

// Tag renders a turn as "SPEAKER: text".
func Tag(s Speaker, text string) string {
	return strings.ToUpper(string(s)) + ": " + text
}

// Float32 returns a pointer to v.
func Float32(v float32) *float32 {
	return &v
}
