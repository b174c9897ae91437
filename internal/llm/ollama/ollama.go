// Package ollama adapts a local Ollama server to llm.Model.
package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/ayush/research-extractor/internal/llm"
)

const (
	providerName = "Ollama"
	DefaultHost  = "http://localhost:11434"
)

// Model is an Ollama model served at one host.
type Model struct {
	id     string
	client *api.Client
}

// New builds a client for host. It does not contact the server.
func New(modelID, host string, httpClient *http.Client) (*Model, error) {
	if modelID == "" {
		return nil, errors.New("ollama: model id is required")
	}
	if host == "" {
		host = DefaultHost
	}
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("ollama host %q: %w", host, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("ollama host %q: unsupported scheme", host)
	}
	if httpClient == nil {
		// local models are slow; one chat turn may take minutes
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Model{id: modelID, client: api.NewClient(base, httpClient)}, nil
}

func (m *Model) Provider() string { return providerName }
func (m *Model) ID() string       { return m.id }

func (m *Model) Chat(ctx context.Context, req llm.ChatRequest) (*llm.Message, error) {
	msgs, err := toMessages(req)
	if err != nil {
		return nil, err
	}
	tools, err := toTools(req.Tools)
	if err != nil {
		return nil, err
	}

	stream := false
	chatReq := &api.ChatRequest{
		Model:    m.id,
		Messages: msgs,
		Stream:   &stream,
		Tools:    tools,
	}

	var content string
	var calls []api.ToolCall
	err = m.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		content += resp.Message.Content
		calls = append(calls, resp.Message.ToolCalls...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama %s: %w", m.id, err)
	}

	out := &llm.Message{Role: llm.RoleAssistant, Content: content}
	for _, tc := range calls {
		args, err := argumentsOf(tc)
		if err != nil {
			return nil, err
		}
		out.ToolCalls = append(out.ToolCalls, llm.ToolCall{Name: tc.Function.Name, Arguments: args})
	}
	return out, nil
}

func toMessages(req llm.ChatRequest) ([]api.Message, error) {
	msgs := make([]api.Message, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, api.Message{Role: "system", Content: req.System})
	}
	for _, msg := range req.Messages {
		am := api.Message{Role: string(msg.Role), Content: msg.Content}
		if len(msg.ToolCalls) > 0 {
			calls, err := toToolCalls(msg.ToolCalls)
			if err != nil {
				return nil, err
			}
			am.ToolCalls = calls
		}
		msgs = append(msgs, am)
	}
	return msgs, nil
}

// The api package's tool structs use anonymous nested types, so they are
// filled through their JSON form.

type wireProperty struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

type wireTool struct {
	Type     string `json:"type"`
	Function struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Parameters  struct {
			Type       string                  `json:"type"`
			Required   []string                `json:"required"`
			Properties map[string]wireProperty `json:"properties"`
		} `json:"parameters"`
	} `json:"function"`
}

func toTools(specs []llm.ToolSpec) (api.Tools, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	wire := make([]wireTool, 0, len(specs))
	for _, spec := range specs {
		var wt wireTool
		wt.Type = "function"
		wt.Function.Name = spec.Name
		wt.Function.Description = spec.Description
		wt.Function.Parameters.Type = "object"
		wt.Function.Parameters.Required = []string{}
		wt.Function.Parameters.Properties = make(map[string]wireProperty, len(spec.Params))
		for _, p := range spec.Params {
			wt.Function.Parameters.Properties[p.Name] = wireProperty{Type: p.Type, Description: p.Description}
			if p.Required {
				wt.Function.Parameters.Required = append(wt.Function.Parameters.Required, p.Name)
			}
		}
		wire = append(wire, wt)
	}
	var tools api.Tools
	if err := convert(wire, &tools); err != nil {
		return nil, fmt.Errorf("ollama tools: %w", err)
	}
	return tools, nil
}

func toToolCalls(calls []llm.ToolCall) ([]api.ToolCall, error) {
	type wireCall struct {
		Function struct {
			Name      string         `json:"name"`
			Arguments map[string]any `json:"arguments"`
		} `json:"function"`
	}
	wire := make([]wireCall, len(calls))
	for i, c := range calls {
		wire[i].Function.Name = c.Name
		wire[i].Function.Arguments = c.Arguments
	}
	var out []api.ToolCall
	if err := convert(wire, &out); err != nil {
		return nil, fmt.Errorf("ollama tool calls: %w", err)
	}
	return out, nil
}

func argumentsOf(tc api.ToolCall) (map[string]any, error) {
	args := map[string]any{}
	if err := convert(tc.Function.Arguments, &args); err != nil {
		return nil, fmt.Errorf("ollama tool call %s arguments: %w", tc.Function.Name, err)
	}
	return args, nil
}

func convert(in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
