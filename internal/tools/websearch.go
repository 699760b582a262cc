package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	WebSearchName   = "web_search"
	defaultEndpoint = "https://html.duckduckgo.com/html/"
	noResults       = "No results found."
)

type webSearchArgs struct {
	Query      string `json:"query" jsonschema:"required" jsonschema_description:"Search terms"`
	MaxResults int    `json:"max_results,omitempty" jsonschema_description:"How many results to return"`
}

// SearchResult is one hit from the results page.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// WebSearch queries the DuckDuckGo HTML endpoint.
type WebSearch struct {
	endpoint   string
	maxResults int
	client     *http.Client
	schema     map[string]any
}

func NewWebSearch(endpoint string, maxResults int, client *http.Client) *WebSearch {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &WebSearch{
		endpoint:   endpoint,
		maxResults: maxResults,
		client:     client,
		schema:     generateSchema[webSearchArgs](),
	}
}

func (w *WebSearch) Name() string { return WebSearchName }

func (w *WebSearch) Description() string {
	return "Search the web with DuckDuckGo and return titles, links and snippets."
}

func (w *WebSearch) Parameters() map[string]any { return w.schema }

func (w *WebSearch) Run(ctx context.Context, arguments string) (string, error) {
	var args webSearchArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid %s arguments: %w", WebSearchName, err)
	}
	if strings.TrimSpace(args.Query) == "" {
		return "", fmt.Errorf("%s needs a query", WebSearchName)
	}

	limit := w.maxResults
	if args.MaxResults > 0 && args.MaxResults < limit {
		limit = args.MaxResults
	}

	results, err := w.Search(ctx, args.Query, limit)
	if err != nil {
		return "", err
	}
	return formatResults(results), nil
}

// Search fetches the results page for query and returns at most limit hits.
func (w *WebSearch) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	u, err := url.Parse(w.endpoint)
	if err != nil {
		return nil, fmt.Errorf("bad search endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; heartgpt)")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed with status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}
	return parseResults(doc, limit), nil
}

func parseResults(doc *goquery.Document, limit int) []SearchResult {
	var results []SearchResult
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		link := s.Find(".result__a").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if title == "" || href == "" {
			return true
		}
		results = append(results, SearchResult{
			Title:   title,
			URL:     resolveLink(href),
			Snippet: strings.TrimSpace(s.Find(".result__snippet").Text()),
		})
		return len(results) < limit
	})
	return results
}

// resolveLink unwraps DuckDuckGo redirect links to their target.
func resolveLink(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}

func formatResults(results []SearchResult) string {
	if len(results) == 0 {
		return noResults
	}
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n   %s\n", i+1, r.Title, r.URL)
		if r.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", r.Snippet)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
