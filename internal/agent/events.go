package agent

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/blkoutuk/research-agent/internal/config"
	"github.com/blkoutuk/research-agent/internal/core/dates"
	"github.com/blkoutuk/research-agent/internal/core/dedupe"
	"github.com/blkoutuk/research-agent/internal/core/model"
	"github.com/blkoutuk/research-agent/internal/core/policy"
	"github.com/blkoutuk/research-agent/internal/core/score"
	"github.com/blkoutuk/research-agent/internal/search"
)

// EventScraper is the browser-scraping branch of event discovery.
type EventScraper interface {
	ScrapeAllPlatforms(ctx context.Context) []model.RawEvent
}

// EventStore is the persistence surface the events pipeline needs.
type EventStore interface {
	InsertEventsBatch(ctx context.Context, events []model.Event, now time.Time) (model.BatchStats, error)
	LogRun(ctx context.Context, runType string, stats any, errs []string) error
}

// EventsAgent discovers community events through two independent branches:
// web search and platform scraping. The branches run concurrently and are
// isolated, so one failing never empties the other's results.
type EventsAgent struct {
	search     search.Client
	scraper    EventScraper
	policy     *policy.DomainPolicy
	gate       *score.EventGate
	scorer     *score.Scorer
	normalizer *dates.Normalizer
	bands      config.Bands
	store      EventStore
	queries    []string
}

func NewEventsAgent(searcher search.Client, scraper EventScraper,
	domains *policy.DomainPolicy, gate *score.EventGate, scorer *score.Scorer,
	normalizer *dates.Normalizer, bands config.Bands, st EventStore,
	queries []string) *EventsAgent {
	return &EventsAgent{
		search:     searcher,
		scraper:    scraper,
		policy:     domains,
		gate:       gate,
		scorer:     scorer,
		normalizer: normalizer,
		bands:      bands,
		store:      st,
		queries:    queries,
	}
}

type searchBranch struct {
	events []model.Event
	err    error
}

// DiscoverAll merges both branches and deduplicates by URL, first occurrence
// winning. Search results arrive before scraped ones, so on a URL collision
// the search result's metadata is kept. A total search outage is returned as
// an error alongside whatever the scraping branch still produced.
func (a *EventsAgent) DiscoverAll(ctx context.Context) ([]model.Event, error) {
	searchCh := make(chan searchBranch, 1)
	scrapeCh := make(chan []model.Event, 1)

	go func() {
		events, err := a.discoverFromSearch(ctx)
		searchCh <- searchBranch{events: events, err: err}
	}()
	go func() { scrapeCh <- a.discoverFromScraping(ctx) }()

	fromSearch := <-searchCh
	all := append(fromSearch.events, <-scrapeCh...)
	unique := dedupe.ByURL(all)

	log.Printf("events: %d unique events across both branches", len(unique))
	return unique, fromSearch.err
}

func (a *EventsAgent) discoverFromSearch(ctx context.Context) ([]model.Event, error) {
	log.Printf("events: searching with %d queries", len(a.queries))

	results, searchErr := search.MultiSearch(ctx, a.search, a.queries, model.SearchWeb, model.RangeMonth)
	if searchErr != nil {
		searchErr = fmt.Errorf("web search: %w", searchErr)
	}
	log.Printf("events: %d search results", len(results))

	var events []model.Event
	for _, r := range results {
		combined := r.Title + " " + r.Snippet

		if !a.policy.IsAcceptable(r.URL, policy.ContentEvents) {
			continue
		}
		if !a.gate.IsLikelyEvent(combined) {
			continue
		}

		// Events never go to oracle review: the bands leave no gap between
		// floor and high confidence, so a score either rejects or accepts.
		relevance := a.scorer.Score(combined)
		if score.Route(relevance, a.bands) != score.AutoAccept {
			continue
		}

		events = append(events, model.Event{
			Name:           r.Title,
			URL:            r.URL,
			Description:    r.Snippet,
			Date:           a.normalizer.Normalize(ctx, r.Title, r.URL, r.Snippet),
			SourcePlatform: "Web Search",
			RelevanceScore: relevance,
			EventType:      "community",
			Method:         model.ScoredByKeyword,
		})
	}

	log.Printf("events: %d events passed search filters", len(events))
	return events, searchErr
}

// discoverFromScraping converts scraped cards into events. Platform searches
// are pre-filtered by query, so scraped events carry a fixed relevance score
// rather than going through the keyword cascade.
func (a *EventsAgent) discoverFromScraping(ctx context.Context) []model.Event {
	if a.scraper == nil {
		return nil
	}

	scraped := a.scraper.ScrapeAllPlatforms(ctx)
	log.Printf("events: scraped %d events", len(scraped))

	events := make([]model.Event, 0, len(scraped))
	for _, raw := range scraped {
		events = append(events, model.Event{
			Name:           raw.Name,
			URL:            raw.URL,
			Venue:          raw.Venue,
			City:           raw.City,
			Date:           a.resolveDate(ctx, raw),
			Price:          raw.Price,
			Description:    raw.Description,
			Organizer:      raw.Organizer,
			SourcePlatform: raw.Platform,
			RelevanceScore: a.bands.HighConfidence,
			EventType:      "community",
			Method:         model.ScoredByKeyword,
		})
	}
	return events
}

// resolveDate normalizes the scraped date text into strict ISO form. Cards
// usually carry display text ("Tue, 7 Jan"), which only the oracle fallback
// can convert.
func (a *EventsAgent) resolveDate(ctx context.Context, raw model.RawEvent) string {
	if dates.Valid(raw.Date) {
		return raw.Date
	}
	text := raw.Date
	if text == "" {
		text = raw.Description
	}
	return a.normalizer.Normalize(ctx, raw.Name, raw.URL, text)
}

// DiscoverAndSave runs DiscoverAll and persists the result. Events without a
// resolved date, or dated in the past, are counted as skipped by the store.
func (a *EventsAgent) DiscoverAndSave(ctx context.Context) (model.RunStats, error) {
	events, discoverErr := a.DiscoverAll(ctx)

	batch, err := a.store.InsertEventsBatch(ctx, events, time.Now())
	if err != nil {
		return model.RunStats{Discovered: len(events)}, fmt.Errorf("saving events: %w", err)
	}

	stats := model.RunStats{
		Discovered: len(events),
		Inserted:   batch.Inserted,
		Skipped:    batch.Skipped,
	}
	if err := a.store.LogRun(ctx, "events", stats, errStrings(discoverErr)); err != nil {
		log.Printf("events: logging run: %v", err)
	}
	return stats, discoverErr
}
