package websearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/gg/goption"
	"github.com/kiosk404/toolgate/internal/toolgate/pkg/errno"
	"github.com/kiosk404/toolgate/internal/toolgate/service/tool"
	"github.com/kiosk404/toolgate/pkg/utils/json"
)

const (
	defaultEndpoint     = "https://api.search.brave.com/res/v1/web/search"
	defaultAPIKeyHeader = "X-Subscription-Token"
	defaultMaxResults   = 5
	defaultTimeout      = 15 * time.Second
)

// SearchDefinition is the contract of the web_search tool.
func SearchDefinition() tool.Definition {
	return tool.Definition{
		Name:        "web_search",
		Description: "Search the web and return the top results with title, URL and snippet.",
		Parameters: []tool.Param{
			{Name: "query", Type: tool.String, Description: "Search terms", Required: true},
			{Name: "count", Type: tool.Integer, Description: "Number of results (default from plugin config)"},
		},
	}
}

// searchTool queries a JSON web search API.
type searchTool struct {
	client       *http.Client
	endpoint     string
	apiKey       string
	apiKeyHeader string
	maxResults   int
}

// NewSearchTool builds a web_search instance. The plugin configuration
// must provide api_key.
func NewSearchTool(cfg goption.O[tool.Config]) (tool.Tool, error) {
	c, ok := cfg.Get()
	if !ok {
		return nil, fmt.Errorf("web_search: %w", errno.ErrPluginNotConfigured)
	}
	apiKey := c.String("api_key", "")
	if apiKey == "" {
		return nil, fmt.Errorf("web_search: %w: api_key is required", errno.ErrPluginNotConfigured)
	}
	return &searchTool{
		client:       &http.Client{Timeout: timeout(c)},
		endpoint:     c.String("endpoint", defaultEndpoint),
		apiKey:       apiKey,
		apiKeyHeader: c.String("api_key_header", defaultAPIKeyHeader),
		maxResults:   c.PositiveInt("max_results", defaultMaxResults),
	}, nil
}

// timeout reads timeout_seconds; unset or non-positive values fall back
// to defaultTimeout so the client never waits forever.
func timeout(c tool.Config) time.Duration {
	return time.Duration(c.PositiveInt("timeout_seconds", int(defaultTimeout/time.Second))) * time.Second
}

type searchHit struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Snippet     string `json:"snippet"`
	Description string `json:"description"`
}

// searchResponse accepts both a flat "results" list and the nested
// "web.results" layout.
type searchResponse struct {
	Results []searchHit `json:"results"`
	Web     struct {
		Results []searchHit `json:"results"`
	} `json:"web"`
}

func (t *searchTool) Invoke(ctx context.Context, args map[string]any) (*tool.Result, error) {
	query, err := tool.RequireString(args, "query")
	if err != nil {
		return nil, err
	}
	count := tool.IntArg(args, "count", t.maxResults)
	if count <= 0 || count > t.maxResults {
		count = t.maxResults
	}

	u, err := url.Parse(t.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid search endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("count", strconv.Itoa(count))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(t.apiKeyHeader, t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	hits := parsed.Results
	if len(hits) == 0 {
		hits = parsed.Web.Results
	}
	if len(hits) > count {
		hits = hits[:count]
	}
	return tool.TextResult(formatHits(query, hits)), nil
}

func formatHits(query string, hits []searchHit) string {
	if len(hits) == 0 {
		return fmt.Sprintf("no results for %q", query)
	}
	var sb strings.Builder
	for i, h := range hits {
		snippet := h.Snippet
		if snippet == "" {
			snippet = h.Description
		}
		fmt.Fprintf(&sb, "%d. %s\n   %s\n", i+1, h.Title, h.URL)
		if snippet != "" {
			fmt.Fprintf(&sb, "   %s\n", snippet)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
