package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/blkoutuk/research-agent/internal/core/model"
	"github.com/blkoutuk/research-agent/internal/store"
)

// SyncStore is the persistence surface the intelligence sync needs.
type SyncStore interface {
	RecentArticles(ctx context.Context, since time.Time, limit int) ([]store.ArticleSummary, error)
	UpcomingEvents(ctx context.Context, from, to string, limit int) ([]store.EventSummary, error)
	UpsertIntelligence(ctx context.Context, entry store.IntelligenceEntry) error
}

// IntelligenceSync publishes digest summaries of recent discoveries so the
// community assistant can discuss current news and upcoming events with
// confidence.
type IntelligenceSync struct {
	store SyncStore
}

func NewIntelligenceSync(st SyncStore) *IntelligenceSync {
	return &IntelligenceSync{store: st}
}

// SyncDiscoveries refreshes the news, events and run-status intelligence
// entries after a discovery run. Each sync is independent; the returned map
// records which ones landed and errs carries one entry per failure.
func (s *IntelligenceSync) SyncDiscoveries(ctx context.Context, report model.RunReport) (map[string]bool, []string) {
	synced := map[string]bool{"news": false, "events": false}
	var errs []string

	if err := s.syncNews(ctx); err != nil {
		errs = append(errs, fmt.Sprintf("news intelligence sync failed: %v", err))
	} else {
		synced["news"] = true
	}

	if err := s.syncEvents(ctx); err != nil {
		errs = append(errs, fmt.Sprintf("events intelligence sync failed: %v", err))
	} else {
		synced["events"] = true
	}

	if err := s.syncRunStatus(ctx, report); err != nil {
		errs = append(errs, fmt.Sprintf("run status sync failed: %v", err))
	}

	return synced, errs
}

func (s *IntelligenceSync) syncNews(ctx context.Context) error {
	now := time.Now().UTC()
	articles, err := s.store.RecentArticles(ctx, now.AddDate(0, 0, -7), 20)
	if err != nil {
		return err
	}
	if len(articles) == 0 {
		return nil
	}

	headlines := make([]map[string]string, 0, 10)
	for _, a := range articles {
		if len(headlines) == 10 {
			break
		}
		headlines = append(headlines, map[string]string{
			"title":    a.Title,
			"source":   a.Source,
			"category": a.Category,
		})
	}

	categories := countArticles(articles, func(a store.ArticleSummary) string { return a.Category })
	sources := countArticles(articles, func(a store.ArticleSummary) string { return a.Source })

	return s.store.UpsertIntelligence(ctx, store.IntelligenceEntry{
		Type:     "community_needs",
		Service:  "research_agent",
		Endpoint: "/discovery/news",
		Data: map[string]any{
			"total_articles":   len(articles),
			"categories":       categories,
			"sources":          sources,
			"recent_headlines": headlines,
			"last_updated":     now.Format(time.RFC3339),
		},
		Summary: fmt.Sprintf("Discovered %d relevant news articles this week covering Black LGBTQ+ UK community.", len(articles)),
		KeyInsights: []string{
			fmt.Sprintf("Content from %d different sources", len(sources)),
			fmt.Sprintf("%d relevant articles discovered this week", len(articles)),
		},
		RelevanceScore: 0.85,
		Priority:       "high",
		ExpiresAt:      now.Add(24 * time.Hour),
	})
}

func (s *IntelligenceSync) syncEvents(ctx context.Context) error {
	now := time.Now().UTC()
	today := now.Format("2006-01-02")
	monthAhead := now.AddDate(0, 0, 30).Format("2006-01-02")

	events, err := s.store.UpcomingEvents(ctx, today, monthAhead, 30)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	upcoming := make([]map[string]string, 0, 15)
	for _, e := range events {
		if len(upcoming) == 15 {
			break
		}
		upcoming = append(upcoming, map[string]string{
			"title":     e.Title,
			"date":      e.Date,
			"location":  e.Location,
			"organizer": e.Organizer,
		})
	}

	weekEnd := now.AddDate(0, 0, 7).Format("2006-01-02")
	thisWeek := 0
	for _, e := range events {
		if e.Date <= weekEnd {
			thisWeek++
		}
	}

	return s.store.UpsertIntelligence(ctx, store.IntelligenceEntry{
		Type:     "organizing_events",
		Service:  "research_agent",
		Endpoint: "/discovery/events",
		Data: map[string]any{
			"total_events":    len(events),
			"upcoming_events": upcoming,
			"this_week":       thisWeek,
			"last_updated":    now.Format(time.RFC3339),
		},
		Summary: fmt.Sprintf("Found %d upcoming Black LGBTQ+ events in the next 30 days.", len(events)),
		KeyInsights: []string{
			fmt.Sprintf("%d events happening this week", thisWeek),
			fmt.Sprintf("%d events in the next 30 days", len(events)),
		},
		RelevanceScore: 0.90,
		Priority:       "high",
		ExpiresAt:      now.Add(12 * time.Hour),
	})
}

func (s *IntelligenceSync) syncRunStatus(ctx context.Context, report model.RunReport) error {
	now := time.Now().UTC()
	return s.store.UpsertIntelligence(ctx, store.IntelligenceEntry{
		Type:     "resources",
		Service:  "research_agent",
		Endpoint: "/discovery/status",
		Data: map[string]any{
			"last_run":     now.Format(time.RFC3339),
			"stats":        report,
			"agent_status": "active",
		},
		Summary: fmt.Sprintf("Research agent last ran at %s UTC", now.Format("2006-01-02 15:04")),
		KeyInsights: []string{
			fmt.Sprintf("Discovered %d news articles", report.News.Discovered),
			fmt.Sprintf("Found %d events", report.Events.Discovered),
		},
		RelevanceScore: 0.70,
		Priority:       "medium",
		ExpiresAt:      now.Add(24 * time.Hour),
	})
}

func countArticles(articles []store.ArticleSummary, key func(store.ArticleSummary) string) map[string]int {
	counts := make(map[string]int)
	for _, a := range articles {
		if k := key(a); k != "" {
			counts[k]++
		}
	}
	return counts
}
