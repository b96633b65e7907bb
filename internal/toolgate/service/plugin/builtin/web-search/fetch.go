package websearch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bytedance/gg/goption"
	"github.com/kiosk404/toolgate/internal/toolgate/pkg/errno"
	"github.com/kiosk404/toolgate/internal/toolgate/service/tool"
	"golang.org/x/net/html"
)

const (
	defaultMaxBytes  = 512 * 1024
	defaultUserAgent = "toolgate/0.1 (+web_fetch)"
	maxLinks         = 50
)

// FetchDefinition is the contract of the web_fetch tool.
func FetchDefinition() tool.Definition {
	return tool.Definition{
		Name:        "web_fetch",
		Description: "Fetch a web page and return its title, readable text and optionally its links.",
		Parameters: []tool.Param{
			{Name: "url", Type: tool.String, Description: "Absolute http(s) URL", Required: true},
			{Name: "include_links", Type: tool.Boolean, Description: "Append the page links to the result"},
		},
	}
}

// fetchTool downloads a page and extracts its text.
type fetchTool struct {
	client    *http.Client
	maxBytes  int
	userAgent string
}

// NewFetchTool builds a web_fetch instance. It works without configuration.
func NewFetchTool(cfg goption.O[tool.Config]) (tool.Tool, error) {
	c := tool.OrEmpty(cfg)
	return &fetchTool{
		client:    &http.Client{Timeout: timeout(c)},
		maxBytes:  c.PositiveInt("max_bytes", defaultMaxBytes),
		userAgent: c.String("user_agent", defaultUserAgent),
	}, nil
}

func (t *fetchTool) Invoke(ctx context.Context, args map[string]any) (*tool.Result, error) {
	raw, err := tool.RequireString(args, "url")
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(raw)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("%w: url must be an absolute http(s) URL", errno.ErrInvalidArguments)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch %s returned %s", base, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(t.maxBytes)))
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "html") {
		return tool.TextResult(string(body)), nil
	}

	page, err := ExtractPage(bytes.NewReader(body), base)
	if err != nil {
		return nil, err
	}
	return tool.TextResult(page.Format(tool.BoolArg(args, "include_links", false))), nil
}

// Page is the readable content of an HTML document.
type Page struct {
	Title string
	Text  string
	Links []string
}

// Format renders the page for the model.
func (p *Page) Format(withLinks bool) string {
	var sb strings.Builder
	if p.Title != "" {
		sb.WriteString("# ")
		sb.WriteString(p.Title)
		sb.WriteString("\n\n")
	}
	sb.WriteString(p.Text)
	if withLinks && len(p.Links) > 0 {
		sb.WriteString("\n\nLinks:\n")
		for _, l := range p.Links {
			sb.WriteString("- ")
			sb.WriteString(l)
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// ExtractPage parses HTML and collects the title, visible text and links.
// Relative links are resolved against base.
func ExtractPage(r io.Reader, base *url.URL) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	page := &Page{}
	seen := make(map[string]struct{})
	var lines []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template", "svg":
				return
			case "title":
				if page.Title == "" && n.FirstChild != nil {
					page.Title = strings.TrimSpace(n.FirstChild.Data)
				}
				return
			case "a":
				if link := resolveLink(n, base); link != "" && len(page.Links) < maxLinks {
					if _, dup := seen[link]; !dup {
						seen[link] = struct{}{}
						page.Links = append(page.Links, link)
					}
				}
			}
		}
		if n.Type == html.TextNode {
			if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
				lines = append(lines, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	page.Text = strings.Join(lines, "\n")
	return page, nil
}

func resolveLink(n *html.Node, base *url.URL) string {
	for _, attr := range n.Attr {
		if attr.Key != "href" {
			continue
		}
		ref, err := url.Parse(strings.TrimSpace(attr.Val))
		if err != nil {
			return ""
		}
		abs := ref
		if base != nil {
			abs = base.ResolveReference(ref)
		}
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return ""
		}
		abs.Fragment = ""
		return abs.String()
	}
	return ""
}
