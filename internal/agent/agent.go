// Package agent runs a model in a tool-calling loop until it produces a
// final answer.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ayush/research-extractor/internal/llm"
	"github.com/ayush/research-extractor/internal/tools"
)

const defaultMaxSteps = 12

var (
	ErrStepLimit   = errors.New("agent exceeded its step budget without a final answer")
	ErrEmptyAnswer = errors.New("model returned an empty answer")
)

type Option func(*Options)

type Options struct {
	Description    string
	Instructions   []string
	ExpectedOutput string
	Markdown       bool
	AddDatetime    bool
	MaxSteps       int
	Now            func() time.Time
}

func WithDescription(d string) Option {
	return func(o *Options) { o.Description = d }
}

func WithInstructions(lines ...string) Option {
	return func(o *Options) { o.Instructions = append(o.Instructions, lines...) }
}

func WithExpectedOutput(s string) Option {
	return func(o *Options) { o.ExpectedOutput = s }
}

func WithMarkdown() Option {
	return func(o *Options) { o.Markdown = true }
}

// WithDatetime appends the current date and time to the system prompt.
func WithDatetime(now func() time.Time) Option {
	return func(o *Options) {
		o.AddDatetime = true
		if now != nil {
			o.Now = now
		}
	}
}

func WithMaxSteps(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxSteps = n
		}
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		MaxSteps: defaultMaxSteps,
		Now:      time.Now,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// Agent binds one model to a set of tools.
type Agent struct {
	model   llm.Model
	tools   map[string]tools.Tool
	specs   []llm.ToolSpec
	options Options
}

// Response is the final answer of a run.
type Response struct {
	Content   string
	Steps     int
	ToolCalls int
}

func New(model llm.Model, toolList []tools.Tool, opts ...Option) (*Agent, error) {
	if model == nil {
		return nil, errors.New("agent: model is required")
	}
	a := &Agent{
		model:   model,
		tools:   make(map[string]tools.Tool, len(toolList)),
		options: NewOptions(opts...),
	}
	for _, t := range toolList {
		spec := t.Spec()
		if _, dup := a.tools[spec.Name]; dup {
			return nil, fmt.Errorf("agent: duplicate tool %q", spec.Name)
		}
		a.tools[spec.Name] = t
		a.specs = append(a.specs, spec)
	}
	return a, nil
}

// SystemPrompt assembles description, instructions and expected output.
func (a *Agent) SystemPrompt() string {
	o := a.options
	var b strings.Builder
	if o.Description != "" {
		b.WriteString(strings.TrimSpace(o.Description))
		b.WriteString("\n\n")
	}
	if len(o.Instructions) > 0 {
		b.WriteString("<instructions>\n")
		for _, line := range o.Instructions {
			b.WriteString("- ")
			b.WriteString(strings.TrimSpace(line))
			b.WriteString("\n")
		}
		b.WriteString("</instructions>\n\n")
	}
	if o.ExpectedOutput != "" {
		b.WriteString("<expected_output>\n")
		b.WriteString(strings.TrimSpace(o.ExpectedOutput))
		b.WriteString("\n</expected_output>\n\n")
	}
	if o.Markdown {
		b.WriteString("Use markdown to format your answers.\n")
	}
	if o.AddDatetime {
		fmt.Fprintf(&b, "The current time is %s.\n", o.Now().Format("2006-01-02 15:04:05"))
	}
	return strings.TrimSpace(b.String())
}

// Run sends input to the model and executes tool calls until the model
// answers without calling a tool. A failing tool does not end the run; its
// error text is handed back to the model.
func (a *Agent) Run(ctx context.Context, input string) (*Response, error) {
	req := llm.ChatRequest{
		System:   a.SystemPrompt(),
		Messages: []llm.Message{{Role: llm.RoleUser, Content: input}},
		Tools:    a.specs,
	}
	resp := &Response{}

	for resp.Steps < a.options.MaxSteps {
		resp.Steps++
		reply, err := a.model.Chat(ctx, req)
		if err != nil {
			return nil, err
		}
		req.Messages = append(req.Messages, *reply)

		if len(reply.ToolCalls) == 0 {
			content := strings.TrimSpace(reply.Content)
			if content == "" {
				return nil, ErrEmptyAnswer
			}
			resp.Content = content
			return resp, nil
		}

		for _, call := range reply.ToolCalls {
			resp.ToolCalls++
			req.Messages = append(req.Messages, llm.Message{
				Role:     llm.RoleTool,
				ToolName: call.Name,
				Content:  a.runTool(ctx, call),
			})
		}
	}
	return nil, ErrStepLimit
}

func (a *Agent) runTool(ctx context.Context, call llm.ToolCall) string {
	t, ok := a.tools[call.Name]
	if !ok {
		return fmt.Sprintf("Error: unknown tool %q", call.Name)
	}
	start := time.Now()
	out, err := t.Run(ctx, call.Arguments)
	if err != nil {
		log.Warn("Tool call failed", "tool", call.Name, "error", err)
		return "Error: " + err.Error()
	}
	log.Debug("Tool call", "tool", call.Name, "args", call.Arguments, "took", time.Since(start))
	return out
}
