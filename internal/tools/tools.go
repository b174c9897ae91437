// Package tools implements the search capabilities an agent may call.
package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ayush/research-extractor/internal/llm"
	"github.com/ayush/research-extractor/internal/models"
)

const (
	defaultMaxResults = 5
	maxResultsCap     = 10
	userAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Tool is one search capability. Implementations hold no per-run state.
type Tool interface {
	Kind() models.ToolKind
	Spec() llm.ToolSpec
	Run(ctx context.Context, args map[string]any) (string, error)
}

// Options carries the shared dependencies for every tool.
type Options struct {
	HTTPClient *http.Client
	MaxResults int

	WikipediaURL  string
	DuckDuckGoURL string

	GoogleAPIKey   string
	GoogleEngineID string
	GoogleEndpoint string
}

// New builds the tool for kind. It never touches the network.
func New(kind models.ToolKind, opts Options) (Tool, error) {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 20 * time.Second}
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = defaultMaxResults
	}
	switch kind {
	case models.Wikipedia:
		return newWikipedia(opts), nil
	case models.DuckDuckGo:
		return newDuckDuckGo(opts), nil
	case models.GoogleSearch:
		return newGoogleSearch(opts), nil
	}
	return nil, fmt.Errorf("unknown tool %q", kind)
}

// Result is one search hit.
type Result struct {
	Title   string
	URL     string
	Snippet string
}

// Format renders results as the numbered list the model reads.
func Format(source, query string, results []Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("No %s results found for %q.", source, query)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s results for %q:\n", source, query)
	for i, r := range results {
		fmt.Fprintf(&b, "\n%d. %s\n   URL: %s\n", i+1, r.Title, r.URL)
		if r.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", r.Snippet)
		}
	}
	return b.String()
}

func searchParams(what string) []llm.Param {
	return []llm.Param{
		{Name: "query", Type: "string", Description: what, Required: true},
		{Name: "max_results", Type: "integer", Description: "Maximum number of results to return (1-10)."},
	}
}

func queryArg(args map[string]any) (string, error) {
	q, _ := args["query"].(string)
	q = strings.TrimSpace(q)
	if q == "" {
		return "", fmt.Errorf("missing required argument %q", "query")
	}
	return q, nil
}

// limitArg reads max_results, clamped to [1, maxResultsCap].
func limitArg(args map[string]any, fallback int) int {
	n := fallback
	switch v := args["max_results"].(type) {
	case float64:
		n = int(v)
	case int:
		n = v
	case int64:
		n = int(v)
	case string:
		if parsed, err := strconv.Atoi(v); err == nil {
			n = parsed
		}
	}
	if n <= 0 {
		n = fallback
	}
	if n > maxResultsCap {
		n = maxResultsCap
	}
	return n
}

// checkResp returns an error carrying the upstream body when the status is not 2xx.
func checkResp(resp *http.Response, service string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("%s returned %d: %s", service, resp.StatusCode, strings.TrimSpace(string(body)))
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}
