// Package websearch exposes DuckDuckGo search to the agent.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pmagent/internal/agent"
)

const (
	defaultBaseURL    = "https://api.duckduckgo.com"
	defaultMaxResults = 3
	maxMaxResults     = 5
)

// SearchTool queries the DuckDuckGo instant answer API.
type SearchTool struct {
	baseURL string
	client  *http.Client
}

// SearchOption configures the tool.
type SearchOption func(*SearchTool)

// WithBaseURL overrides the API endpoint, used in tests.
func WithBaseURL(baseURL string) SearchOption {
	return func(t *SearchTool) { t.baseURL = baseURL }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) SearchOption {
	return func(t *SearchTool) { t.client = client }
}

// NewSearchTool creates the web_search tool.
func NewSearchTool(opts ...SearchOption) *SearchTool {
	t := &SearchTool{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *SearchTool) Name() string { return "web_search" }

func (t *SearchTool) Description() string {
	return "Search the web for cross-border e-commerce policy, tool " +
		"recommendations, and industry news."
}

func (t *SearchTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query":       {"type": "string", "description": "Search keywords"},
			"max_results": {"type": "integer", "description": "Result count, default 3, maximum 5"}
		},
		"required": ["query"]
	}`)
}

type apiResponse struct {
	Heading       string `json:"Heading"`
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

func (t *SearchTool) Execute(ctx context.Context, input json.RawMessage) (*agent.ToolResult, error) {
	var params struct {
		Query      string `json:"query"`
		MaxResults int    `json:"max_results"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, err
	}

	max := params.MaxResults
	if max <= 0 {
		max = defaultMaxResults
	}
	if max > maxMaxResults {
		max = maxMaxResults
	}

	results, err := t.search(ctx, params.Query, max)
	if err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("search failed: %v", err), IsError: true}, nil
	}
	if len(results) == 0 {
		return &agent.ToolResult{Content: fmt.Sprintf("No results for %q.", params.Query)}, nil
	}
	return &agent.ToolResult{Content: strings.Join(results, "\n\n")}, nil
}

func (t *SearchTool) search(ctx context.Context, query string, max int) ([]string, error) {
	endpoint := fmt.Sprintf("%s/?q=%s&format=json&no_html=1&skip_disambig=1",
		t.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	var results []string
	if payload.AbstractText != "" {
		results = append(results, formatResult(payload.Heading, payload.AbstractURL, payload.AbstractText))
	}
	for _, topic := range payload.RelatedTopics {
		if len(results) >= max {
			break
		}
		if topic.Text == "" || topic.FirstURL == "" {
			continue
		}
		results = append(results, formatResult(topicTitle(topic.Text), topic.FirstURL, topic.Text))
	}
	if len(results) > max {
		results = results[:max]
	}
	return results, nil
}

func formatResult(title, link, body string) string {
	return fmt.Sprintf("**%s**\n%s\n%s", title, link, body)
}

// topicTitle takes the leading clause of a related topic as its title.
func topicTitle(text string) string {
	if idx := strings.Index(text, " - "); idx > 0 {
		return text[:idx]
	}
	return text
}
