package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blkoutuk/research-agent/internal/config"
	"github.com/blkoutuk/research-agent/internal/core/model"
	"github.com/blkoutuk/research-agent/internal/core/oracle"
	"github.com/blkoutuk/research-agent/internal/core/policy"
	"github.com/blkoutuk/research-agent/internal/core/score"
)

type fakeSearcher struct {
	results []model.SearchResult
	err     error
}

func (f *fakeSearcher) Search(ctx context.Context, query string, kind model.SearchKind, rng model.TimeRange) ([]model.SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeClassifier struct {
	result *oracle.Classification
	err    error
	calls  int
}

func (f *fakeClassifier) Classify(ctx context.Context, title, content, source, url string) (*oracle.Classification, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeArticleStore struct {
	articles []model.Article
	runTypes []string
	runErrs  [][]string
}

func (f *fakeArticleStore) InsertArticlesBatch(ctx context.Context, articles []model.Article) (model.BatchStats, error) {
	f.articles = append(f.articles, articles...)
	return model.BatchStats{Inserted: len(articles)}, nil
}

func (f *fakeArticleStore) LogRun(ctx context.Context, runType string, stats any, errs []string) error {
	f.runTypes = append(f.runTypes, runType)
	f.runErrs = append(f.runErrs, errs)
	return nil
}

func newsKeywords() config.KeywordSets {
	return config.KeywordSets{
		HighRelevance:  []string{"black queer", "qtipoc"},
		PrimaryGroup:   []string{"black", "african"},
		SecondaryGroup: []string{"lgbtq", "queer", "gay", "trans"},
		Locale:         []string{"uk", "london"},
		Negative:       []string{"black friday"},
	}
}

func newsTestBands() config.Bands {
	return config.Bands{Floor: 45, HighConfidence: 80, Accept: 60}
}

func newTestNewsAgent(searcher *fakeSearcher, classifier *fakeClassifier, st *fakeArticleStore) *NewsAgent {
	domains := policy.New(config.DomainPolicyConfig{
		Blacklist: []string{"wikipedia.org"},
	})
	scorer := score.NewScorer(newsKeywords(), score.NewsLevels)
	return NewNewsAgent(searcher, nil, classifier, domains, scorer, newsTestBands(), st, []string{"query"})
}

func TestNewsResearchAutoAcceptsHighConfidence(t *testing.T) {
	searcher := &fakeSearcher{results: []model.SearchResult{
		{Title: "Black queer collective launches season", URL: "https://a.com/1", Source: "A"},
	}}
	classifier := &fakeClassifier{}

	got, err := newTestNewsAgent(searcher, classifier, &fakeArticleStore{}).Research(context.Background(), model.RangeDay)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, 95, got[0].RelevanceScore)
	assert.Equal(t, model.ScoredByKeyword, got[0].Method)
	assert.Equal(t, 0, classifier.calls, "high-confidence match must not call the oracle")
}

func TestNewsResearchRejectsBelowFloorWithoutOracle(t *testing.T) {
	searcher := &fakeSearcher{results: []model.SearchResult{
		{Title: "Council road maintenance schedule", URL: "https://a.com/1"},
		{Title: "Black Friday deals", URL: "https://a.com/2"},
	}}
	classifier := &fakeClassifier{}

	got, err := newTestNewsAgent(searcher, classifier, &fakeArticleStore{}).Research(context.Background(), model.RangeDay)
	require.NoError(t, err)

	assert.Empty(t, got)
	assert.Equal(t, 0, classifier.calls)
}

func TestNewsResearchRejectsBlacklistedDomain(t *testing.T) {
	searcher := &fakeSearcher{results: []model.SearchResult{
		{Title: "Black queer history", URL: "https://en.wikipedia.org/wiki/History"},
	}}

	got, err := newTestNewsAgent(searcher, &fakeClassifier{}, &fakeArticleStore{}).Research(context.Background(), model.RangeDay)
	require.NoError(t, err)

	assert.Empty(t, got)
}

func TestNewsResearchOracleAcceptsBorderline(t *testing.T) {
	// "Black and gay voices" scores 60: review band.
	searcher := &fakeSearcher{results: []model.SearchResult{
		{Title: "Black and gay voices in new anthology", URL: "https://a.com/1", Source: "A"},
	}}
	classifier := &fakeClassifier{result: &oracle.Classification{
		RelevanceScore:    72,
		Reasoning:         "strong intersectional relevance",
		SuggestedCategory: "culture",
		SuggestedTags:     []string{"books"},
	}}

	got, err := newTestNewsAgent(searcher, classifier, &fakeArticleStore{}).Research(context.Background(), model.RangeDay)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, 72, got[0].RelevanceScore)
	assert.Equal(t, model.ScoredByOracle, got[0].Method)
	assert.Equal(t, "culture", got[0].Category)
	assert.Equal(t, 1, classifier.calls)
}

func TestNewsResearchOracleRejectsBelowThreshold(t *testing.T) {
	searcher := &fakeSearcher{results: []model.SearchResult{
		{Title: "Black and gay voices in new anthology", URL: "https://a.com/1"},
	}}
	classifier := &fakeClassifier{result: &oracle.Classification{RelevanceScore: 40}}

	got, err := newTestNewsAgent(searcher, classifier, &fakeArticleStore{}).Research(context.Background(), model.RangeDay)
	require.NoError(t, err)

	assert.Empty(t, got)
}

func TestNewsResearchFallbackWhenOracleFails(t *testing.T) {
	// Keyword score 60 meets the acceptance threshold, so an oracle outage
	// degrades to the keyword score instead of dropping the candidate.
	searcher := &fakeSearcher{results: []model.SearchResult{
		{Title: "Black and gay voices in new anthology", URL: "https://a.com/1", Source: "A"},
	}}
	classifier := &fakeClassifier{err: errors.New("provider down")}

	got, err := newTestNewsAgent(searcher, classifier, &fakeArticleStore{}).Research(context.Background(), model.RangeDay)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, 60, got[0].RelevanceScore)
	assert.Equal(t, model.ScoredByFallback, got[0].Method)
}

func TestNewsResearchFallbackStillDropsWeakCandidates(t *testing.T) {
	// Score 50 (one group plus locale) is in the review band but below the
	// acceptance threshold; with the oracle down it must be dropped.
	searcher := &fakeSearcher{results: []model.SearchResult{
		{Title: "African food festival in London", URL: "https://a.com/1"},
	}}
	classifier := &fakeClassifier{err: errors.New("provider down")}

	got, err := newTestNewsAgent(searcher, classifier, &fakeArticleStore{}).Research(context.Background(), model.RangeDay)
	require.NoError(t, err)

	assert.Empty(t, got)
}

func TestNewsResearchRanksAndDeduplicates(t *testing.T) {
	searcher := &fakeSearcher{results: []model.SearchResult{
		{Title: "Black trans organisers meet in London", URL: "https://a.com/85", Source: "A"},
		{Title: "QTIPOC festival announced", URL: "https://a.com/95", Source: "B"},
		{Title: "QTIPOC festival announced again", URL: "https://a.com/95", Source: "C"},
	}}

	got, err := newTestNewsAgent(searcher, &fakeClassifier{}, &fakeArticleStore{}).Research(context.Background(), model.RangeDay)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, 95, got[0].RelevanceScore)
	assert.Equal(t, 85, got[1].RelevanceScore)
	assert.Equal(t, "B", got[0].Source, "first occurrence of a URL wins")
}

func TestNewsResearchAndSave(t *testing.T) {
	searcher := &fakeSearcher{results: []model.SearchResult{
		{Title: "Black queer collective launches season", URL: "https://a.com/1"},
	}}
	st := &fakeArticleStore{}

	stats, err := newTestNewsAgent(searcher, &fakeClassifier{}, st).ResearchAndSave(context.Background(), model.RangeWeek)

	require.NoError(t, err)
	assert.Equal(t, model.RunStats{Discovered: 1, Inserted: 1}, stats)
	assert.Equal(t, []string{"news"}, st.runTypes)
	require.Len(t, st.articles, 1)
}

func TestNewsResearchAndSaveSurfacesSearchOutage(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("backend down")}
	st := &fakeArticleStore{}

	stats, err := newTestNewsAgent(searcher, &fakeClassifier{}, st).ResearchAndSave(context.Background(), model.RangeWeek)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "web search")
	assert.Equal(t, model.RunStats{}, stats)
	// The failure is recorded against the run log, not swallowed.
	require.Len(t, st.runErrs, 1)
	require.Len(t, st.runErrs[0], 1)
	assert.Contains(t, st.runErrs[0][0], "backend down")
}

// Guards against the search-result dedup regressing inside MultiSearch: the
// same URL returned for two different queries must be merged before scoring.
func TestNewsResearchMergesDuplicateURLsAcrossQueries(t *testing.T) {
	searcher := &fakeSearcher{results: []model.SearchResult{
		{Title: "QTIPOC festival announced", URL: "https://a.com/1"},
	}}
	agent := newTestNewsAgent(searcher, &fakeClassifier{}, &fakeArticleStore{})
	agent.queries = []string{"q1", "q2"}

	got, err := agent.Research(context.Background(), model.RangeDay)
	require.NoError(t, err)

	assert.Len(t, got, 1)
}
