// Package search discovers candidate content through the DuckDuckGo HTML
// endpoint and community RSS feeds. Results are raw and untrusted; relevance
// decisions happen downstream.
package search

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/blkoutuk/research-agent/internal/config"
	"github.com/blkoutuk/research-agent/internal/core/model"
	"github.com/blkoutuk/research-agent/internal/core/policy"
)

const ddgEndpoint = "https://html.duckduckgo.com/html/"

// Client runs a single search query against a backend vertical.
type Client interface {
	Search(ctx context.Context, query string, kind model.SearchKind, rng model.TimeRange) ([]model.SearchResult, error)
}

// DuckDuckGo queries the HTML endpoint, which needs no API key. Requests are
// paced by a shared rate limiter so multi-query runs stay polite.
type DuckDuckGo struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	maxResults int
	region     string
}

func NewDuckDuckGo(cfg config.SearchConfig) *DuckDuckGo {
	qps := cfg.QueriesPerSec
	if qps <= 0 {
		qps = 1
	}
	return &DuckDuckGo{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(qps), 1),
		maxResults: cfg.MaxResults,
		region:     cfg.Region,
	}
}

// Search runs one query. The HTML endpoint has no separate news vertical, so
// news searches use the web index with the same recency bound.
func (d *DuckDuckGo) Search(ctx context.Context, query string, kind model.SearchKind, rng model.TimeRange) ([]model.SearchResult, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	form := url.Values{
		"q":  {query},
		"kl": {d.region},
	}
	if df := timeLimit(rng); df != "" {
		form.Set("df", df)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ddgEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "blkout-research-agent/1.0")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	var results []model.SearchResult
	doc.Find("div.result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		link := s.Find("a.result__a")
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		target := resolveRedirect(href)
		if target == "" {
			return true
		}
		results = append(results, model.SearchResult{
			Title:   strings.TrimSpace(link.Text()),
			URL:     target,
			Snippet: strings.TrimSpace(s.Find("a.result__snippet").Text()),
			Source:  policy.SourceName(target),
		})
		return len(results) < d.maxResults
	})

	return results, nil
}

// MultiSearch runs queries in order and merges their results, keeping only
// the first occurrence of each URL. Later duplicates are dropped so the
// earlier result's metadata wins. A failing query is logged and skipped; the
// returned error is non-nil only when every query failed, so a backend outage
// surfaces instead of masquerading as an empty result set.
func MultiSearch(ctx context.Context, c Client, queries []string, kind model.SearchKind, rng model.TimeRange) ([]model.SearchResult, error) {
	seen := make(map[string]struct{})
	var merged []model.SearchResult
	var failed int
	var lastErr error

	for _, query := range queries {
		results, err := c.Search(ctx, query, kind, rng)
		if err != nil {
			log.Printf("search: query %q failed: %v", query, err)
			failed++
			lastErr = err
			continue
		}
		for _, r := range results {
			if _, ok := seen[r.URL]; ok {
				continue
			}
			seen[r.URL] = struct{}{}
			merged = append(merged, r)
		}
	}

	if failed > 0 && failed == len(queries) {
		return merged, fmt.Errorf("all %d search queries failed: %w", failed, lastErr)
	}
	return merged, nil
}

// resolveRedirect unwraps the uddg redirect the HTML endpoint wraps result
// links in. Direct links pass through untouched.
func resolveRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Host == "" {
		return ""
	}
	return href
}

func timeLimit(rng model.TimeRange) string {
	switch rng {
	case model.RangeDay:
		return "d"
	case model.RangeWeek:
		return "w"
	case model.RangeMonth:
		return "m"
	default:
		return ""
	}
}
