package websearch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/kiosk404/toolgate/internal/toolgate/pkg/errno"
	"github.com/kiosk404/toolgate/internal/toolgate/service/tool"
)

func TestNewSearchToolRequiresConfig(t *testing.T) {
	if _, err := NewSearchTool(tool.NoConfig()); !errors.Is(err, errno.ErrPluginNotConfigured) {
		t.Errorf("absent config err = %v", err)
	}
	if _, err := NewSearchTool(tool.WithConfig(tool.Config{"endpoint": "http://x"})); !errors.Is(err, errno.ErrPluginNotConfigured) {
		t.Errorf("missing api_key err = %v", err)
	}
}

func TestSearchTool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Subscription-Token") != "x" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("q") != "golang" || r.URL.Query().Get("count") != "2" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"web":{"results":[
			{"title":"Go","url":"https://go.dev","description":"The Go language"},
			{"title":"Tour","url":"https://go.dev/tour","description":"A tour"},
			{"title":"Extra","url":"https://example.com"}]}}`))
	}))
	defer srv.Close()

	inst, err := NewSearchTool(tool.WithConfig(tool.Config{"api_key": "x", "endpoint": srv.URL, "max_results": 2}))
	if err != nil {
		t.Fatalf("NewSearchTool: %v", err)
	}
	res, err := inst.Invoke(context.Background(), map[string]any{"query": "golang", "count": float64(10)})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	want := "1. Go\n   https://go.dev\n   The Go language\n2. Tour\n   https://go.dev/tour\n   A tour"
	if res.Content != want {
		t.Errorf("content = %q", res.Content)
	}
}

func TestSearchToolUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	inst, _ := NewSearchTool(tool.WithConfig(tool.Config{"api_key": "x", "endpoint": srv.URL}))
	_, err := inst.Invoke(context.Background(), map[string]any{"query": "q"})
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("err = %v", err)
	}
	if _, err := inst.Invoke(context.Background(), map[string]any{}); !errors.Is(err, errno.ErrInvalidArguments) {
		t.Errorf("missing query err = %v", err)
	}
}

const samplePage = `<html><head><title>Sample</title><style>body{}</style></head>
<body><h1>Hello</h1><script>var x = 1;</script>
<p>First   paragraph.</p>
<a href="/docs#intro">Docs</a> <a href="mailto:a@b.c">Mail</a> <a href="/docs">Again</a>
</body></html>`

func TestExtractPage(t *testing.T) {
	base, _ := url.Parse("https://example.com/index.html")
	page, err := ExtractPage(strings.NewReader(samplePage), base)
	if err != nil {
		t.Fatalf("ExtractPage: %v", err)
	}
	if page.Title != "Sample" {
		t.Errorf("title = %q", page.Title)
	}
	if strings.Contains(page.Text, "var x") || strings.Contains(page.Text, "body{}") {
		t.Errorf("script or style leaked: %q", page.Text)
	}
	if !strings.Contains(page.Text, "First paragraph.") {
		t.Errorf("text = %q", page.Text)
	}
	if len(page.Links) != 1 || page.Links[0] != "https://example.com/docs" {
		t.Errorf("links = %v", page.Links)
	}
}

func TestFetchTool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("user agent = %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	inst, err := NewFetchTool(tool.WithConfig(tool.Config{"user_agent": "test-agent"}))
	if err != nil {
		t.Fatalf("NewFetchTool: %v", err)
	}
	res, err := inst.Invoke(context.Background(), map[string]any{"url": srv.URL, "include_links": true})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !strings.HasPrefix(res.Content, "# Sample") || !strings.Contains(res.Content, "Links:\n- "+srv.URL+"/docs") {
		t.Errorf("content = %q", res.Content)
	}

	if _, err := inst.Invoke(context.Background(), map[string]any{"url": "ftp://example.com"}); !errors.Is(err, errno.ErrInvalidArguments) {
		t.Errorf("bad scheme err = %v", err)
	}
}

func TestNonPositiveLimitsFallBack(t *testing.T) {
	cfg := tool.Config{"api_key": "x", "timeout_seconds": 0, "max_results": -1, "max_bytes": 0}

	inst, err := NewSearchTool(tool.WithConfig(cfg))
	if err != nil {
		t.Fatalf("NewSearchTool: %v", err)
	}
	search := inst.(*searchTool)
	if search.client.Timeout != defaultTimeout || search.maxResults != defaultMaxResults {
		t.Errorf("search timeout = %v, maxResults = %d", search.client.Timeout, search.maxResults)
	}

	inst, err = NewFetchTool(tool.WithConfig(cfg))
	if err != nil {
		t.Fatalf("NewFetchTool: %v", err)
	}
	fetch := inst.(*fetchTool)
	if fetch.client.Timeout != defaultTimeout || fetch.maxBytes != defaultMaxBytes {
		t.Errorf("fetch timeout = %v, maxBytes = %d", fetch.client.Timeout, fetch.maxBytes)
	}
}

func TestPluginTools(t *testing.T) {
	p, err := Factory(nil, nil)
	if err != nil {
		t.Fatalf("Factory: %v", err)
	}
	specs := p.(*webSearchPlugin).Tools()
	if len(specs) != 2 {
		t.Fatalf("tools = %d", len(specs))
	}
	for _, s := range specs {
		if err := s.Factory.Definition().Validate(); err != nil {
			t.Errorf("%s: %v", s.Factory.Definition().Name, err)
		}
	}
}
