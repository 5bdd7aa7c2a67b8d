package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blkoutuk/research-agent/internal/core/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertArticleDeduplicatesByHash(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	article := model.Article{
		Title:          "Collective launches season",
		URL:            "https://example.com/story",
		Source:         "Example",
		RelevanceScore: 85,
		Method:         model.ScoredByKeyword,
	}

	ok, err := s.InsertArticle(ctx, article)
	require.NoError(t, err)
	assert.True(t, ok)

	// Same URL up to case and whitespace hashes identically.
	article.URL = "  HTTPS://EXAMPLE.COM/STORY "
	ok, err = s.InsertArticle(ctx, article)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInsertArticlesBatchStats(t *testing.T) {
	s := testStore(t)

	articles := []model.Article{
		{Title: "a", URL: "https://example.com/1", RelevanceScore: 80, Method: model.ScoredByKeyword},
		{Title: "b", URL: "https://example.com/2", RelevanceScore: 70, Method: model.ScoredByOracle},
		{Title: "dup", URL: "https://example.com/1", RelevanceScore: 90, Method: model.ScoredByKeyword},
	}

	stats, err := s.InsertArticlesBatch(context.Background(), articles)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStats{Inserted: 2, Skipped: 1}, stats)
}

func TestInsertArticlesBatchSurvivesFailingRows(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Close())

	articles := []model.Article{
		{Title: "a", URL: "https://example.com/1", RelevanceScore: 80, Method: model.ScoredByKeyword},
		{Title: "b", URL: "https://example.com/2", RelevanceScore: 70, Method: model.ScoredByOracle},
	}

	// Every insert fails against the closed database; the batch still visits
	// each row and reports them as skipped instead of aborting.
	stats, err := s.InsertArticlesBatch(context.Background(), articles)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStats{Inserted: 0, Skipped: 2}, stats)
}

func TestInsertEventSkipsDatelessAndPast(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	dateless := model.Event{Name: "no date", URL: "https://e.com/1", RelevanceScore: 75, Method: model.ScoredByKeyword}
	past := model.Event{Name: "past", URL: "https://e.com/2", Date: "2026-03-01", RelevanceScore: 75, Method: model.ScoredByKeyword}
	upcoming := model.Event{Name: "upcoming", URL: "https://e.com/3", Date: "2026-04-01", RelevanceScore: 75, Method: model.ScoredByKeyword}

	stats, err := s.InsertEventsBatch(ctx, []model.Event{dateless, past, upcoming}, now)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStats{Inserted: 1, Skipped: 2}, stats)

	events, err := s.UpcomingEvents(ctx, "2026-03-14", "2026-04-14", 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "upcoming", events[0].Title)
	assert.Equal(t, "Location TBA", events[0].Location)
}

func TestInsertEventComposesLocation(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	event := model.Event{
		Name:           "party",
		URL:            "https://e.com/4",
		Venue:          "The Glory",
		City:           "London",
		Date:           "2100-01-01",
		RelevanceScore: 75,
		Method:         model.ScoredByKeyword,
	}
	ok, err := s.InsertEvent(ctx, event, time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	events, err := s.UpcomingEvents(ctx, "2099-12-31", "2100-01-02", 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "The Glory, London", events[0].Location)
}

func TestGrantPriority(t *testing.T) {
	assert.Equal(t, "high", GrantPriority(80))
	assert.Equal(t, "medium", GrantPriority(60))
	assert.Equal(t, "medium", GrantPriority(79))
	assert.Equal(t, "low", GrantPriority(59))
}

func TestInsertGrantAndDigestQueries(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	grants := []model.Grant{
		{Title: "high fit", URL: "https://g.com/1", FunderName: "Tudor Trust", RelevanceScore: 85, Method: model.ScoredByOracle},
		{Title: "medium fit", URL: "https://g.com/2", RelevanceScore: 65, Method: model.ScoredByKeyword},
		{Title: "low fit", URL: "https://g.com/3", RelevanceScore: 45, Method: model.ScoredByKeyword},
	}
	stats, err := s.InsertGrantsBatch(ctx, grants)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Inserted)

	recent, err := s.RecentGrants(ctx, 60, 20)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	top, err := s.TopPriorityGrants(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "high fit", top[0].Title)
	assert.Equal(t, "high", top[0].Priority)
	assert.Equal(t, "Tudor Trust", top[0].FunderName)
}

func TestLogRunAndRecentRuns(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.LogRun(ctx, "news", model.RunStats{Discovered: 5, Inserted: 3, Skipped: 2}, nil))
	require.NoError(t, s.LogRun(ctx, "events", model.RunStats{}, []string{"scrape failed"}))

	runs, err := s.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	byType := map[string]RunLog{}
	for _, r := range runs {
		byType[r.RunType] = r
	}
	assert.Equal(t, "completed", byType["news"].Status)
	assert.Equal(t, "completed_with_errors", byType["events"].Status)
	assert.Contains(t, byType["events"].Errors, "scrape failed")
}

func TestUpsertIntelligenceReplaces(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	entry := IntelligenceEntry{
		Type:           "community_needs",
		Service:        "research_agent",
		Endpoint:       "/discovery/news",
		Data:           map[string]any{"total_articles": 3},
		Summary:        "first",
		RelevanceScore: 0.85,
		Priority:       "high",
		ExpiresAt:      time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, s.UpsertIntelligence(ctx, entry))

	entry.Summary = "second"
	require.NoError(t, s.UpsertIntelligence(ctx, entry))
}
