package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/ayush/research-extractor/internal/llm"
	"github.com/ayush/research-extractor/internal/models"
)

var errSearchNotConfigured = errors.New("google search is not configured: set GOOGLE_SEARCH_ENGINE_ID and an API key")

type googleSearch struct {
	apiKey     string
	engineID   string
	endpoint   string
	httpClient *http.Client
	maxResults int
}

func newGoogleSearch(opts Options) *googleSearch {
	g := &googleSearch{
		apiKey:     opts.GoogleAPIKey,
		engineID:   opts.GoogleEngineID,
		endpoint:   opts.GoogleEndpoint,
		maxResults: opts.MaxResults,
	}
	// a custom endpoint is only used against test servers, which need the plain client
	if g.endpoint != "" {
		g.httpClient = opts.HTTPClient
	}
	return g
}

func (g *googleSearch) Kind() models.ToolKind { return models.GoogleSearch }

func (g *googleSearch) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        "google_search",
		Description: "General web search through Google. Returns titles, URLs and snippets of matching pages.",
		Params:      searchParams("The web search query."),
	}
}

func (g *googleSearch) Run(ctx context.Context, args map[string]any) (string, error) {
	query, err := queryArg(args)
	if err != nil {
		return "", err
	}
	if g.engineID == "" || (g.apiKey == "" && g.httpClient == nil) {
		return "", errSearchNotConfigured
	}
	limit := limitArg(args, g.maxResults)

	svc, err := customsearch.NewService(ctx, g.clientOptions()...)
	if err != nil {
		return "", fmt.Errorf("google search: %w", err)
	}
	res, err := svc.Cse.List().Q(query).Cx(g.engineID).Num(int64(limit)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("google search: %w", err)
	}

	results := make([]Result, 0, len(res.Items))
	for _, item := range res.Items {
		results = append(results, Result{Title: item.Title, URL: item.Link, Snippet: item.Snippet})
	}
	return Format("Google", query, results), nil
}

func (g *googleSearch) clientOptions() []option.ClientOption {
	var opts []option.ClientOption
	if g.endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.endpoint))
	}
	if g.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(g.httpClient))
	} else {
		opts = append(opts, option.WithAPIKey(g.apiKey))
	}
	return opts
}
