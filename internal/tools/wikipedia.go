package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/ayush/research-extractor/internal/llm"
	"github.com/ayush/research-extractor/internal/models"
)

const defaultWikipediaURL = "https://en.wikipedia.org/w/api.php"

type wikipedia struct {
	endpoint   string
	httpClient *http.Client
	maxResults int
}

func newWikipedia(opts Options) *wikipedia {
	endpoint := opts.WikipediaURL
	if endpoint == "" {
		endpoint = defaultWikipediaURL
	}
	return &wikipedia{endpoint: endpoint, httpClient: opts.HTTPClient, maxResults: opts.MaxResults}
}

func (w *wikipedia) Kind() models.ToolKind { return models.Wikipedia }

func (w *wikipedia) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        "wikipedia_search",
		Description: "Search Wikipedia and return the introduction of the best matching articles with their URLs.",
		Params:      searchParams("The topic to look up on Wikipedia."),
	}
}

type wikiResponse struct {
	Query struct {
		Pages []struct {
			Title   string `json:"title"`
			Index   int    `json:"index"`
			Extract string `json:"extract"`
			FullURL string `json:"fullurl"`
		} `json:"pages"`
	} `json:"query"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// Run resolves the query with a search generator and pulls plain-text intros
// for the hits in the same request.
func (w *wikipedia) Run(ctx context.Context, args map[string]any) (string, error) {
	query, err := queryArg(args)
	if err != nil {
		return "", err
	}
	limit := limitArg(args, w.maxResults)

	params := url.Values{
		"action":        {"query"},
		"format":        {"json"},
		"formatversion": {"2"},
		"generator":     {"search"},
		"gsrsearch":     {query},
		"gsrlimit":      {strconv.Itoa(limit)},
		"prop":          {"extracts|info"},
		"inprop":        {"url"},
		"exintro":       {"1"},
		"explaintext":   {"1"},
		"exlimit":       {"max"},
		"redirects":     {"1"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("wikipedia: %w", err)
	}
	req.Header.Set("User-Agent", "research-extractor/1.0 (research report generator)")
	req.Header.Set("Accept", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("wikipedia: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResp(resp, "wikipedia"); err != nil {
		return "", err
	}

	var body wikiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("wikipedia: decode: %w", err)
	}
	if body.Error != nil {
		return "", fmt.Errorf("wikipedia: %s: %s", body.Error.Code, body.Error.Info)
	}

	pages := body.Query.Pages
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].Index < pages[j].Index })

	results := make([]Result, 0, len(pages))
	for _, p := range pages {
		link := p.FullURL
		if link == "" {
			link = "https://en.wikipedia.org/wiki/" + url.PathEscape(p.Title)
		}
		results = append(results, Result{Title: p.Title, URL: link, Snippet: truncate(p.Extract, 1200)})
	}
	return Format("Wikipedia", query, results), nil
}
