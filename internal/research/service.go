package research

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ayush/research-extractor/internal/agent"
	"github.com/ayush/research-extractor/internal/config"
	"github.com/ayush/research-extractor/internal/metrics"
	"github.com/ayush/research-extractor/internal/models"
	"github.com/ayush/research-extractor/internal/provider"
	"github.com/ayush/research-extractor/internal/selector"
	"github.com/ayush/research-extractor/internal/tools"
)

var (
	ErrEmptyTopic        = errors.New("research topic is empty")
	ErrGenerationFailure = errors.New("error generating report")
)

// Hint is shown next to a generation failure.
const Hint = "Try refreshing the page or checking your API key configuration"

// Generator produces a report for one run configuration.
type Generator interface {
	Generate(ctx context.Context, cfg models.RunConfiguration) (*models.Report, error)
}

// Service runs the research pipeline: tool list, model selection, one agent run.
type Service struct {
	factory  provider.Factory
	tools    tools.Options
	maxSteps int
	timeout  time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time
}

// ServiceOptions tunes a Service. Zero values fall back to defaults.
type ServiceOptions struct {
	Tools    tools.Options
	MaxSteps int
	Timeout  time.Duration
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

func NewService(factory provider.Factory, opts ServiceOptions) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		factory:  factory,
		tools:    opts.Tools,
		maxSteps: opts.MaxSteps,
		timeout:  opts.Timeout,
		metrics:  opts.Metrics,
		now:      opts.Now,
	}
}

// Generate validates cfg, binds a model and tools, and runs the agent once.
// Validation and selection errors are returned as is; anything that goes wrong
// during generation is wrapped in ErrGenerationFailure.
func (s *Service) Generate(ctx context.Context, cfg models.RunConfiguration) (*models.Report, error) {
	toolList, err := selector.BuildToolList(cfg.Tools, s.toolOptions(cfg))
	if err != nil {
		s.metrics.Rejected("none")
		return nil, err
	}

	topic := strings.TrimSpace(cfg.Topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}

	sel, err := selector.Select(ctx, cfg, s.factory)
	if err != nil {
		s.metrics.Rejected("none")
		return nil, err
	}
	if c, ok := sel.Model.(io.Closer); ok {
		defer c.Close()
	}
	providerName := sel.Handle.Kind.String()

	now := s.now()
	a, err := agent.New(sel.Model, toolList,
		agent.WithDescription(Persona),
		agent.WithInstructions(Instructions(cfg.IncludeCitations)...),
		agent.WithExpectedOutput(ExpectedOutput(cfg.Length, cfg.IncludeCitations, now, cfg.Tools.Kinds())),
		agent.WithMarkdown(),
		agent.WithDatetime(s.now),
		agent.WithMaxSteps(s.maxSteps),
	)
	if err != nil {
		s.metrics.Failed(providerName)
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailure, err)
	}

	log.Info("Generating report", "model", sel.Handle, "tools", cfg.Tools.Kinds(), "length", cfg.Length)
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	resp, err := a.Run(runCtx, topic)
	if err != nil {
		log.Error("Report generation failed", "model", sel.Handle, "error", err)
		s.metrics.Failed(providerName)
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailure, err)
	}
	took := time.Since(start)
	s.metrics.Succeeded(providerName, took, resp.ToolCalls)
	log.Info("Report generated", "model", sel.Handle, "steps", resp.Steps, "tool_calls", resp.ToolCalls, "took", took)

	return &models.Report{
		Topic:       topic,
		Markdown:    resp.Content,
		Filename:    Filename(topic, now),
		Provider:    providerName,
		ModelID:     sel.Handle.ID,
		Tools:       cfg.Tools.Kinds(),
		Length:      cfg.Length,
		Citations:   cfg.IncludeCitations,
		Notices:     sel.Notices,
		GeneratedAt: now,
	}, nil
}

// toolOptions lets Google Search reuse the Gemini key when no search key is set.
func (s *Service) toolOptions(cfg models.RunConfiguration) tools.Options {
	opts := s.tools
	if opts.GoogleAPIKey == "" {
		opts.GoogleAPIKey = cfg.GeminiAPIKey
	}
	return opts
}

// OptionsFromConfig maps the process configuration onto ServiceOptions.
func OptionsFromConfig(cfg *config.Config, m *metrics.Metrics) ServiceOptions {
	return ServiceOptions{
		Tools: tools.Options{
			MaxResults:     cfg.SearchResults,
			GoogleAPIKey:   cfg.SearchAPIKey,
			GoogleEngineID: cfg.SearchEngine,
		},
		MaxSteps: cfg.AgentMaxSteps,
		Timeout:  cfg.GenerationTimeout,
		Metrics:  m,
	}
}
