// Package scrape drives a headless browser over the configured event
// platforms and extracts raw event cards. Platforms render their listings
// with JavaScript, so plain HTTP fetches come back empty.
package scrape

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	pw "github.com/playwright-community/playwright-go"

	"github.com/blkoutuk/research-agent/internal/config"
	"github.com/blkoutuk/research-agent/internal/core/model"
)

// Scraper owns one browser instance shared across platform runs. Each page
// visit gets its own page so a crashed platform cannot poison the next one.
type Scraper struct {
	cfg     config.ScrapeConfig
	pw      *pw.Playwright
	browser pw.Browser
}

func New(cfg config.ScrapeConfig) *Scraper {
	return &Scraper{cfg: cfg}
}

// Start launches the browser. Callers must pair it with Close.
func (s *Scraper) Start() error {
	run, err := pw.Run()
	if err != nil {
		return fmt.Errorf("starting playwright: %w", err)
	}
	browser, err := run.Chromium.Launch(pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(s.cfg.Headless),
	})
	if err != nil {
		run.Stop()
		return fmt.Errorf("launching browser: %w", err)
	}
	s.pw = run
	s.browser = browser
	return nil
}

func (s *Scraper) Close() {
	if s.browser != nil {
		s.browser.Close()
	}
	if s.pw != nil {
		s.pw.Stop()
	}
}

// ScrapeAllPlatforms visits every configured platform and query in turn.
// Failures are isolated per platform and per query: one broken selector or
// timed-out page costs only its own results, never the whole run. The merged
// list is deduplicated by URL, first occurrence winning.
func (s *Scraper) ScrapeAllPlatforms(ctx context.Context) []model.RawEvent {
	var all []model.RawEvent

	for _, platform := range s.cfg.Platforms {
		queries := platform.Queries
		if len(queries) == 0 {
			queries = []string{""}
		}
		for _, query := range queries {
			select {
			case <-ctx.Done():
				return dedupeByURL(all)
			default:
			}

			events, err := s.scrapePlatform(platform, query)
			if err != nil {
				log.Printf("scrape: %s %q failed: %v", platform.Name, query, err)
				continue
			}
			log.Printf("scrape: %s %q: %d events", platform.Name, query, len(events))
			all = append(all, events...)

			time.Sleep(2 * time.Second)
		}
	}

	return dedupeByURL(all)
}

func (s *Scraper) scrapePlatform(platform config.Platform, query string) ([]model.RawEvent, error) {
	if s.browser == nil {
		return nil, fmt.Errorf("scraper not started")
	}

	page, err := s.browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}
	defer page.Close()

	target := searchTarget(platform, query)
	if _, err := page.Goto(target, pw.PageGotoOptions{
		WaitUntil: pw.WaitUntilStateDomcontentloaded,
		Timeout:   pw.Float(s.cfg.TimeoutMS),
	}); err != nil {
		return nil, fmt.Errorf("navigating to %s: %w", target, err)
	}

	// Listings render client-side; give scripts a moment before reading.
	page.WaitForTimeout(3000)

	html, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("reading page content: %w", err)
	}

	return s.extract(platform, html)
}

// extract parses the rendered HTML with the platform's selectors.
func (s *Scraper) extract(platform config.Platform, html string) ([]model.RawEvent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var events []model.RawEvent
	doc.Find(platform.Selectors.Card).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		event := s.extractCard(platform, card)
		if event != nil {
			events = append(events, *event)
		}
		return len(events) < s.cfg.MaxEvents
	})

	return events, nil
}

func (s *Scraper) extractCard(platform config.Platform, card *goquery.Selection) *model.RawEvent {
	href, ok := card.Find(platform.Selectors.Link).First().Attr("href")
	if !ok {
		// The card itself may be the link.
		href, ok = card.Attr("href")
		if !ok {
			return nil
		}
	}
	link := absoluteURL(platform.BaseURL, href)
	if link == "" {
		return nil
	}

	title := firstText(card, platform.Selectors.Title)
	if title == "" {
		title = truncateText(strings.TrimSpace(card.Text()), 200)
	}
	if title == "" {
		return nil
	}

	return &model.RawEvent{
		Name:     title,
		URL:      link,
		Venue:    firstText(card, platform.Selectors.Venue),
		Date:     firstText(card, platform.Selectors.Date),
		Price:    firstText(card, platform.Selectors.Price),
		Platform: platform.Name,
	}
}

func searchTarget(platform config.Platform, query string) string {
	if query == "" {
		return platform.SearchURL
	}
	return platform.SearchURL + url.QueryEscape(query)
}

func firstText(card *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.TrimSpace(card.Find(selector).First().Text())
}

func absoluteURL(base, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "/") {
		return strings.TrimSuffix(base, "/") + href
	}
	return ""
}

func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func dedupeByURL(events []model.RawEvent) []model.RawEvent {
	seen := make(map[string]struct{}, len(events))
	out := make([]model.RawEvent, 0, len(events))
	for _, e := range events {
		if _, ok := seen[e.URL]; ok {
			continue
		}
		seen[e.URL] = struct{}{}
		out = append(out, e)
	}
	return out
}
