package agent

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const defaultSearchBaseURL = "https://html.duckduckgo.com/html/"

// SearchResult is one hit returned by the web search tool.
type SearchResult struct {
	Title   string
	Snippet string
	URL     string
}

// Searcher is the web search tool surface used by the agent loop.
type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// DuckDuckGoSearcher queries the DuckDuckGo HTML endpoint, which serves
// plain markup without requiring an API key, and scrapes the result list.
type DuckDuckGoSearcher struct {
	baseURL    string
	client     *http.Client
	maxResults int
}

func NewDuckDuckGoSearcher(baseURL string) *DuckDuckGoSearcher {
	if baseURL == "" {
		baseURL = defaultSearchBaseURL
	}
	return &DuckDuckGoSearcher{
		baseURL:    baseURL,
		client:     &http.Client{Timeout: 15 * time.Second},
		maxResults: 5,
	}
}

func (s *DuckDuckGoSearcher) Search(ctx context.Context, query string) ([]SearchResult, error) {
	endpoint := s.baseURL + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("User-Agent", "kareerbot/1.0")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}
	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}
	results := scrapeResults(doc, s.maxResults)
	return results, nil
}

// scrapeResults walks the parsed page collecting result links and snippets.
// The HTML endpoint marks them with the result__a and result__snippet
// classes.
func scrapeResults(doc *html.Node, limit int) []SearchResult {
	var results []SearchResult
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if len(results) >= limit && results[len(results)-1].Snippet != "" {
			return
		}
		if node.Type == html.ElementNode {
			switch {
			case hasClass(node, "result__a"):
				if len(results) >= limit {
					return
				}
				results = append(results, SearchResult{
					Title: nodeText(node),
					URL:   attr(node, "href"),
				})
				return
			case hasClass(node, "result__snippet"):
				if len(results) > 0 && results[len(results)-1].Snippet == "" {
					results[len(results)-1].Snippet = nodeText(node)
				}
				return
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return results
}

func hasClass(node *html.Node, class string) bool {
	for _, field := range strings.Fields(attr(node, "class")) {
		if field == class {
			return true
		}
	}
	return false
}

func attr(node *html.Node, key string) string {
	for _, a := range node.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(node *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return strings.Join(strings.Fields(buf.String()), " ")
}
