// Package llm defines the provider-neutral chat types the agent speaks.
package llm

import "context"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one turn of a conversation.
type Message struct {
	Role      Role
	Content   string
	ToolCalls []ToolCall

	// ToolName is set on RoleTool messages and names the tool that produced Content.
	ToolName string
}

// ToolCall is a model's request to run a tool.
type ToolCall struct {
	Name      string
	Arguments map[string]any
}

// Param describes one argument of a tool. All parameters are JSON scalars.
type Param struct {
	Name        string
	Type        string // "string" or "integer"
	Description string
	Required    bool
}

// ToolSpec is the declaration a model sees for a tool.
type ToolSpec struct {
	Name        string
	Description string
	Params      []Param
}

// ChatRequest is a single model call.
type ChatRequest struct {
	System   string
	Messages []Message
	Tools    []ToolSpec
}

// Model is a constructed handle to one provider/model pair.
type Model interface {
	Provider() string
	ID() string
	Chat(ctx context.Context, req ChatRequest) (*Message, error)
}
