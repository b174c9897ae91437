// Package gemini adapts Google's Gemini API to llm.Model.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/ayush/research-extractor/internal/llm"
)

const providerName = "Gemini"

// Model is a Gemini model bound to one API key.
type Model struct {
	id     string
	client *genai.Client
}

// New constructs the client. No request is made until Chat is called.
func New(ctx context.Context, modelID, apiKey string) (*Model, error) {
	if modelID == "" {
		return nil, errors.New("gemini: model id is required")
	}
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Model{id: modelID, client: client}, nil
}

func (m *Model) Provider() string { return providerName }
func (m *Model) ID() string       { return m.id }

// Close releases the underlying client.
func (m *Model) Close() error { return m.client.Close() }

func (m *Model) Chat(ctx context.Context, req llm.ChatRequest) (*llm.Message, error) {
	contents := toContents(req.Messages)
	if len(contents) == 0 {
		return nil, errors.New("gemini: no messages to send")
	}
	last := contents[len(contents)-1]

	gm := m.client.GenerativeModel(m.id)
	if req.System != "" {
		gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	if len(req.Tools) > 0 {
		gm.Tools = []*genai.Tool{{FunctionDeclarations: toDeclarations(req.Tools)}}
	}

	cs := gm.StartChat()
	cs.History = contents[:len(contents)-1]
	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini %s: %w", m.id, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("no response from Gemini")
	}
	return fromContent(resp.Candidates[0].Content), nil
}

// toContents maps the conversation onto Gemini's two roles. Consecutive tool
// results are folded into one user turn, which is how Gemini expects the
// answers to a batch of function calls.
func toContents(msgs []llm.Message) []*genai.Content {
	var out []*genai.Content
	for _, msg := range msgs {
		switch msg.Role {
		case llm.RoleAssistant:
			c := &genai.Content{Role: "model"}
			if msg.Content != "" {
				c.Parts = append(c.Parts, genai.Text(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				c.Parts = append(c.Parts, genai.FunctionCall{Name: call.Name, Args: call.Arguments})
			}
			out = append(out, c)
		case llm.RoleTool:
			part := genai.FunctionResponse{
				Name:     msg.ToolName,
				Response: map[string]any{"result": msg.Content},
			}
			if n := len(out); n > 0 && out[n-1].Role == "user" && isFunctionResponse(out[n-1]) {
				out[n-1].Parts = append(out[n-1].Parts, part)
				continue
			}
			out = append(out, &genai.Content{Role: "user", Parts: []genai.Part{part}})
		default:
			out = append(out, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(msg.Content)}})
		}
	}
	return out
}

func isFunctionResponse(c *genai.Content) bool {
	if len(c.Parts) == 0 {
		return false
	}
	_, ok := c.Parts[0].(genai.FunctionResponse)
	return ok
}

func fromContent(c *genai.Content) *llm.Message {
	msg := &llm.Message{Role: llm.RoleAssistant}
	var text strings.Builder
	for _, part := range c.Parts {
		switch p := part.(type) {
		case genai.Text:
			text.WriteString(string(p))
		case genai.FunctionCall:
			msg.ToolCalls = append(msg.ToolCalls, llm.ToolCall{Name: p.Name, Arguments: p.Args})
		}
	}
	msg.Content = text.String()
	return msg
}

func toDeclarations(specs []llm.ToolSpec) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(specs))
	for _, spec := range specs {
		schema := &genai.Schema{
			Type:       genai.TypeObject,
			Properties: make(map[string]*genai.Schema, len(spec.Params)),
		}
		for _, p := range spec.Params {
			schema.Properties[p.Name] = &genai.Schema{Type: schemaType(p.Type), Description: p.Description}
			if p.Required {
				schema.Required = append(schema.Required, p.Name)
			}
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters:  schema,
		})
	}
	return decls
}

func schemaType(t string) genai.Type {
	switch t {
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	}
	return genai.TypeString
}
