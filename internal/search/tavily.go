// Package search queries the Tavily web search API for material to ground
// answers to owner questions.
package search

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/banshee-data/canine.report/internal/httputil"
)

const (
	DefaultURL        = "https://api.tavily.com/search"
	DefaultDepth      = "advanced"
	DefaultMaxResults = 5

	// MaxContentChars bounds each result's content in ResearchText.
	MaxContentChars = 800
)

// Result is one search hit.
type Result struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	Content    string `json:"content"`
	RawContent string `json:"raw_content"`
}

type request struct {
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

type response struct {
	Results []Result `json:"results"`
}

// Tavily is a search client.
type Tavily struct {
	http   httputil.HTTPClient
	url    string
	apiKey string
}

// NewTavily returns a client. A nil httpClient uses a standard client with
// a 30s timeout.
func NewTavily(httpClient httputil.HTTPClient, apiKey string) *Tavily {
	if httpClient == nil {
		httpClient = httputil.NewStandardClient(&http.Client{Timeout: 30 * time.Second})
	}
	return &Tavily{http: httpClient, url: DefaultURL, apiKey: apiKey}
}

// Search runs an advanced search for query.
func (t *Tavily) Search(ctx context.Context, query string) ([]Result, error) {
	req, err := httputil.NewJSONRequest(ctx, http.MethodPost, t.url, request{
		Query:       query,
		SearchDepth: DefaultDepth,
		MaxResults:  DefaultMaxResults,
	})
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	var resp response
	if err := httputil.DoJSON(t.http, req, &resp); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return resp.Results, nil
}

// ResearchText joins results into "Title: ...\nContent: ..." blocks
// separated by blank lines. Content falls back to the raw content and is
// cut to MaxContentChars characters; a missing title reads "No title".
func ResearchText(results []Result) string {
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		title := r.Title
		if title == "" {
			title = "No title"
		}
		content := r.Content
		if content == "" {
			content = r.RawContent
		}
		if runes := []rune(content); len(runes) > MaxContentChars {
			content = string(runes[:MaxContentChars])
		}
		blocks = append(blocks, fmt.Sprintf("Title: %s\nContent: %s", title, content))
	}
	return strings.Join(blocks, "\n\n")
}
