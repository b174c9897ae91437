// Package provider builds llm.Model handles for the supported providers.
package provider

import (
	"context"
	"net/http"

	"github.com/ayush/research-extractor/internal/llm"
	"github.com/ayush/research-extractor/internal/llm/gemini"
	"github.com/ayush/research-extractor/internal/llm/ollama"
)

// Kind is the closed set of providers.
type Kind int

const (
	// Gemini is the hosted provider; it needs an API key.
	Gemini Kind = iota + 1
	// Ollama is the local provider; it needs only a model id.
	Ollama
)

func (k Kind) String() string {
	switch k {
	case Gemini:
		return "Gemini"
	case Ollama:
		return "Ollama"
	}
	return "unknown"
}

// Handle names the provider and model a run was bound to.
type Handle struct {
	Kind Kind
	ID   string
}

func (h Handle) String() string { return h.Kind.String() + " (" + h.ID + ")" }

// Factory constructs models. Implementations must not perform network I/O.
type Factory interface {
	Gemini(ctx context.Context, modelID, apiKey string) (llm.Model, error)
	Ollama(ctx context.Context, modelID string) (llm.Model, error)
}

// Clients is the production Factory.
type Clients struct {
	OllamaHost string
	HTTPClient *http.Client
}

func NewClients(ollamaHost string) *Clients {
	return &Clients{OllamaHost: ollamaHost}
}

func (c *Clients) Gemini(ctx context.Context, modelID, apiKey string) (llm.Model, error) {
	return gemini.New(ctx, modelID, apiKey)
}

func (c *Clients) Ollama(_ context.Context, modelID string) (llm.Model, error) {
	return ollama.New(modelID, c.OllamaHost, c.HTTPClient)
}
