package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ayush/research-extractor/internal/config"
	"github.com/ayush/research-extractor/internal/models"
	"github.com/ayush/research-extractor/internal/provider"
	"github.com/ayush/research-extractor/internal/research"
)

type options struct {
	apiKey      string
	preference  string
	geminiModel string
	ollamaModel string
	wikipedia   bool
	duckduckgo  bool
	google      bool
	length      string
	citations   bool
	example     int
	outDir      string
	raw         bool
	debug       bool
}

func main() {
	if err := newRootCommand(config.Load()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(cfg *config.Config) *cobra.Command {
	opts := &options{example: -1}

	cmd := &cobra.Command{
		Use:   "research [topic]",
		Short: "Generate a markdown research report on a topic",
		Long: `research asks an agent to search the selected sources and write a
structured research report, then prints it and saves it as a .md file.

Examples:
  research "Fusion energy in 2030" --preference auto --google
  research --example 3 --length extended --out reports/`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.debug {
				log.SetLevel(log.DebugLevel)
			}
			topic := strings.Join(args, " ")
			if opts.example >= 0 {
				if opts.example >= len(models.ExampleTopics) {
					return fmt.Errorf("--example must be between 0 and %d", len(models.ExampleTopics)-1)
				}
				topic = models.ExampleTopics[opts.example]
			}
			err := run(cmd.Context(), cfg, opts, topic)
			if err != nil {
				log.Error(err)
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.apiKey, "api-key", "", "Gemini API key (defaults to GOOGLE_API_KEY)")
	f.StringVar(&opts.preference, "preference", string(models.PreferGemini), "model preference: gemini, auto or ollama")
	f.StringVar(&opts.geminiModel, "gemini-model", cfg.GeminiModel, "Gemini model id")
	f.StringVar(&opts.ollamaModel, "ollama-model", cfg.OllamaModel, "Ollama model id")
	f.BoolVar(&opts.wikipedia, "wikipedia", true, "search Wikipedia")
	f.BoolVar(&opts.duckduckgo, "duckduckgo", true, "search DuckDuckGo")
	f.BoolVar(&opts.google, "google", false, "search Google")
	f.StringVar(&opts.length, "length", string(models.Standard), "report length: standard, extended or comprehensive")
	f.BoolVar(&opts.citations, "citations", true, "include citations")
	f.IntVar(&opts.example, "example", -1, "use example topic N instead of an argument")
	f.StringVarP(&opts.outDir, "out", "o", ".", "directory for the .md file")
	f.BoolVar(&opts.raw, "raw", false, "print plain markdown instead of rendering it")
	f.BoolVar(&opts.debug, "debug", false, "enable debug logging")

	return cmd
}

func run(ctx context.Context, cfg *config.Config, opts *options, topic string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pref := models.ParsePreference(opts.preference)
	key, status := research.ResolveKey(opts.apiKey, cfg.GoogleAPIKey, pref)
	log.Info(status.Message)
	if pref == models.PreferOllama {
		log.Warn(research.HostedOllamaWarning)
	}

	runCfg := models.RunConfiguration{
		Settings: models.Settings{
			OllamaModelID: strings.TrimSpace(opts.ollamaModel),
			GeminiModelID: strings.TrimSpace(opts.geminiModel),
			Preference:    pref,
			Tools: models.ToolSet{
				Wikipedia:    opts.wikipedia,
				DuckDuckGo:   opts.duckduckgo,
				GoogleSearch: opts.google,
			},
			Length:           models.ParseReportLength(opts.length),
			IncludeCitations: opts.citations,
		},
		Topic:        topic,
		GeminiAPIKey: key,
	}

	svc := research.NewService(provider.NewClients(cfg.OllamaHost), research.OptionsFromConfig(cfg, nil))
	report, err := svc.Generate(ctx, runCfg)
	if err != nil {
		return err
	}
	for _, n := range report.Notices {
		log.Warn(n)
	}

	if err := printReport(report.Markdown, opts.raw); err != nil {
		return err
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(opts.outDir, report.Filename)
	if err := os.WriteFile(path, []byte(report.Markdown), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	log.Info("Report saved", "path", path, "model", report.Provider+" ("+report.ModelID+")")
	return nil
}

func printReport(md string, raw bool) error {
	if raw {
		_, err := fmt.Println(md)
		return err
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	fmt.Print(out)
	return nil
}
