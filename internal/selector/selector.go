// Package selector picks the model and tools for a run from its configuration.
package selector

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/ayush/research-extractor/internal/llm"
	"github.com/ayush/research-extractor/internal/models"
	"github.com/ayush/research-extractor/internal/provider"
	"github.com/ayush/research-extractor/internal/tools"
)

var (
	ErrMissingCredential   = errors.New("Gemini requires API key")
	ErrMissingModelID      = errors.New("model ID is required")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrNoProviderAvailable = errors.New("no model provider available")
	ErrNoToolSelected      = errors.New("please select at least one search tool")
)

// Selection is the outcome of a successful Select.
type Selection struct {
	Handle provider.Handle
	Model  llm.Model
	// Notices are non-fatal messages for the user, such as a fallback taken.
	Notices []string
}

// Select applies the provider preference policy. No network I/O happens here;
// the factory only constructs clients.
func Select(ctx context.Context, cfg models.RunConfiguration, f provider.Factory) (*Selection, error) {
	switch cfg.Preference {
	case models.PreferOllama:
		if cfg.OllamaModelID == "" {
			return nil, fmt.Errorf("%w: please specify Ollama model ID", ErrMissingModelID)
		}
		return build(ctx, f, provider.Handle{Kind: provider.Ollama, ID: cfg.OllamaModelID}, "")

	case models.PreferGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, ErrMissingCredential
		}
		if cfg.GeminiModelID == "" {
			return nil, fmt.Errorf("%w: please specify Gemini model ID", ErrMissingModelID)
		}
		return build(ctx, f, provider.Handle{Kind: provider.Gemini, ID: cfg.GeminiModelID}, cfg.GeminiAPIKey)
	}
	return selectAuto(ctx, cfg, f)
}

// selectAuto tries Gemini first when its key and id are present, then Ollama.
func selectAuto(ctx context.Context, cfg models.RunConfiguration, f provider.Factory) (*Selection, error) {
	gemini := provider.Handle{Kind: provider.Gemini, ID: cfg.GeminiModelID}
	ollama := provider.Handle{Kind: provider.Ollama, ID: cfg.OllamaModelID}

	if cfg.GeminiAPIKey != "" && cfg.GeminiModelID != "" {
		sel, gerr := build(ctx, f, gemini, cfg.GeminiAPIKey)
		if gerr == nil {
			return sel, nil
		}
		log.Warn("Gemini failed, trying Ollama", "model", cfg.GeminiModelID, "error", gerr)
		if cfg.OllamaModelID == "" {
			return nil, fmt.Errorf("%w: no fallback model available: %w", ErrNoProviderAvailable, gerr)
		}
		sel, oerr := build(ctx, f, ollama, "")
		if oerr != nil {
			return nil, fmt.Errorf("%w: both models failed: %w", ErrNoProviderAvailable, errors.Join(gerr, oerr))
		}
		sel.Notices = append(sel.Notices, fmt.Sprintf("Gemini failed: %v. Using Ollama instead.", gerr))
		return sel, nil
	}

	if cfg.OllamaModelID != "" {
		sel, err := build(ctx, f, ollama, "")
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoProviderAvailable, err)
		}
		return sel, nil
	}
	return nil, fmt.Errorf("%w: no model configured", ErrNoProviderAvailable)
}

func build(ctx context.Context, f provider.Factory, h provider.Handle, apiKey string) (*Selection, error) {
	var (
		m   llm.Model
		err error
	)
	switch h.Kind {
	case provider.Gemini:
		m, err = f.Gemini(ctx, h.ID, apiKey)
	case provider.Ollama:
		m, err = f.Ollama(ctx, h.ID)
	default:
		err = fmt.Errorf("unknown provider kind %d", h.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s connection failed: %w", ErrProviderUnavailable, h.Kind, err)
	}
	return &Selection{Handle: h, Model: m}, nil
}

// BuildToolList instantiates the enabled tools in fixed order: Wikipedia,
// DuckDuckGo, Google Search.
func BuildToolList(set models.ToolSet, opts tools.Options) ([]tools.Tool, error) {
	kinds := set.Kinds()
	if len(kinds) == 0 {
		return nil, ErrNoToolSelected
	}
	list := make([]tools.Tool, 0, len(kinds))
	for _, kind := range kinds {
		t, err := tools.New(kind, opts)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, nil
}
