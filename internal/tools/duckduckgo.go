package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ayush/research-extractor/internal/llm"
	"github.com/ayush/research-extractor/internal/models"
)

const defaultDuckDuckGoURL = "https://html.duckduckgo.com/html/"

type duckDuckGo struct {
	endpoint   string
	httpClient *http.Client
	maxResults int
}

func newDuckDuckGo(opts Options) *duckDuckGo {
	endpoint := opts.DuckDuckGoURL
	if endpoint == "" {
		endpoint = defaultDuckDuckGoURL
	}
	return &duckDuckGo{endpoint: endpoint, httpClient: opts.HTTPClient, maxResults: opts.MaxResults}
}

func (d *duckDuckGo) Kind() models.ToolKind { return models.DuckDuckGo }

func (d *duckDuckGo) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        "duckduckgo_search",
		Description: "Privacy-focused web search through DuckDuckGo. Returns titles, URLs and snippets of matching pages.",
		Params:      searchParams("The web search query."),
	}
}

func (d *duckDuckGo) Run(ctx context.Context, args map[string]any) (string, error) {
	query, err := queryArg(args)
	if err != nil {
		return "", err
	}
	limit := limitArg(args, d.maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.endpoint+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return "", fmt.Errorf("duckduckgo: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("duckduckgo: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResp(resp, "duckduckgo"); err != nil {
		return "", err
	}

	results, err := parseDuckDuckGo(resp.Body, limit)
	if err != nil {
		return "", err
	}
	return Format("DuckDuckGo", query, results), nil
}

// parseDuckDuckGo extracts hits from the HTML results page.
func parseDuckDuckGo(r io.Reader, limit int) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: parse: %w", err)
	}

	var results []Result
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.HasClass("result--ad") {
			return true
		}
		link := s.Find("a.result__a").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if title == "" || href == "" {
			return true
		}
		results = append(results, Result{
			Title:   title,
			URL:     resolveRedirect(href),
			Snippet: strings.Join(strings.Fields(s.Find(".result__snippet").First().Text()), " "),
		})
		return len(results) < limit
	})
	return results, nil
}

// resolveRedirect unwraps DuckDuckGo's "/l/?uddg=<target>" click-tracking links.
func resolveRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
