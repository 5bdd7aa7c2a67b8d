// Package agent contains the discovery pipelines and the coordinator that
// runs them. Each pipeline follows the same shape: discover raw candidates,
// filter by domain policy, score with keywords, escalate borderline cases to
// the oracle, then rank, deduplicate and persist.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/blkoutuk/research-agent/internal/config"
	"github.com/blkoutuk/research-agent/internal/core/dedupe"
	"github.com/blkoutuk/research-agent/internal/core/model"
	"github.com/blkoutuk/research-agent/internal/core/oracle"
	"github.com/blkoutuk/research-agent/internal/core/policy"
	"github.com/blkoutuk/research-agent/internal/core/score"
	"github.com/blkoutuk/research-agent/internal/search"
)

// FeedSource pulls candidates from RSS feeds alongside web search. The error
// is non-nil only when every feed failed.
type FeedSource interface {
	Fetch(ctx context.Context) ([]model.SearchResult, error)
}

// Classifier is the oracle capability the news pipeline escalates to.
type Classifier interface {
	Classify(ctx context.Context, title, content, source, url string) (*oracle.Classification, error)
}

// ArticleStore is the persistence surface the news pipeline needs.
type ArticleStore interface {
	InsertArticlesBatch(ctx context.Context, articles []model.Article) (model.BatchStats, error)
	LogRun(ctx context.Context, runType string, stats any, errs []string) error
}

// NewsAgent discovers and scores news relevant to the Black LGBTQ+ UK
// community.
type NewsAgent struct {
	search  search.Client
	feeds   FeedSource
	oracle  Classifier
	policy  *policy.DomainPolicy
	scorer  *score.Scorer
	bands   config.Bands
	store   ArticleStore
	queries []string
}

func NewNewsAgent(searcher search.Client, feeds FeedSource, classifier Classifier,
	domains *policy.DomainPolicy, scorer *score.Scorer, bands config.Bands,
	st ArticleStore, queries []string) *NewsAgent {
	return &NewsAgent{
		search:  searcher,
		feeds:   feeds,
		oracle:  classifier,
		policy:  domains,
		scorer:  scorer,
		bands:   bands,
		store:   st,
		queries: queries,
	}
}

// Research runs every configured query plus the RSS feeds and returns the
// accepted articles ranked by relevance, highest first. A source that fails
// entirely is reported through the error so an outage never reads as a quiet
// zero-result run; results from the surviving source are still returned.
func (a *NewsAgent) Research(ctx context.Context, rng model.TimeRange) ([]model.Article, error) {
	log.Printf("news: starting research with %d queries", len(a.queries))

	var sourceErrs []error
	results, err := search.MultiSearch(ctx, a.search, a.queries, model.SearchNews, rng)
	if err != nil {
		sourceErrs = append(sourceErrs, fmt.Errorf("web search: %w", err))
	}
	if a.feeds != nil {
		feedResults, err := a.feeds.Fetch(ctx)
		if err != nil {
			sourceErrs = append(sourceErrs, fmt.Errorf("feeds: %w", err))
		}
		results = append(results, feedResults...)
	}
	log.Printf("news: %d raw results", len(results))

	var discovered []model.Article
	rejected := 0

	for _, r := range results {
		if !a.policy.IsAcceptable(r.URL, policy.ContentNews) {
			rejected++
			continue
		}

		quick := a.scorer.Score(r.Title + " " + r.Snippet)
		switch score.Route(quick, a.bands) {
		case score.Reject:
			rejected++
		case score.AutoAccept:
			discovered = append(discovered, model.Article{
				Title:          r.Title,
				URL:            r.URL,
				Source:         r.Source,
				Snippet:        r.Snippet,
				PublishedDate:  r.PublishedDate,
				RelevanceScore: quick,
				Category:       "news",
				Reasoning:      "High-confidence keyword match",
				Method:         model.ScoredByKeyword,
			})
		case score.NeedsOracleReview:
			if article, ok := a.review(ctx, r, quick); ok {
				discovered = append(discovered, article)
			} else {
				rejected++
			}
		}
	}

	sort.SliceStable(discovered, func(i, j int) bool {
		return discovered[i].RelevanceScore > discovered[j].RelevanceScore
	})
	discovered = dedupe.ByURL(discovered)

	log.Printf("news: %d articles accepted, %d rejected", len(discovered), rejected)
	return discovered, errors.Join(sourceErrs...)
}

// review escalates a borderline result to the oracle. When the oracle fails
// the keyword score stands in: the candidate is still accepted if that score
// clears the acceptance threshold, so an outage degrades rather than drops
// the run.
func (a *NewsAgent) review(ctx context.Context, r model.SearchResult, quick int) (model.Article, bool) {
	analysis, err := a.oracle.Classify(ctx, r.Title, r.Snippet, r.Source, r.URL)
	if err != nil {
		log.Printf("news: oracle review failed for %s: %v", r.URL, err)
		if quick >= a.bands.Accept {
			return model.Article{
				Title:          r.Title,
				URL:            r.URL,
				Source:         r.Source,
				Snippet:        r.Snippet,
				PublishedDate:  r.PublishedDate,
				RelevanceScore: quick,
				Category:       "news",
				Reasoning:      "Keyword score, oracle unavailable",
				Method:         model.ScoredByFallback,
			}, true
		}
		return model.Article{}, false
	}

	if analysis.RelevanceScore < a.bands.Accept {
		return model.Article{}, false
	}

	category := analysis.SuggestedCategory
	if category == "" {
		category = "news"
	}
	return model.Article{
		Title:          r.Title,
		URL:            r.URL,
		Source:         r.Source,
		Snippet:        r.Snippet,
		PublishedDate:  r.PublishedDate,
		RelevanceScore: analysis.RelevanceScore,
		Category:       category,
		Tags:           analysis.SuggestedTags,
		Reasoning:      analysis.Reasoning,
		Method:         model.ScoredByOracle,
	}, true
}

// ResearchAndSave runs Research and persists the result. A discovery-source
// outage is still persisted and logged, then surfaced to the coordinator.
func (a *NewsAgent) ResearchAndSave(ctx context.Context, rng model.TimeRange) (model.RunStats, error) {
	articles, discoverErr := a.Research(ctx, rng)

	batch, err := a.store.InsertArticlesBatch(ctx, articles)
	if err != nil {
		return model.RunStats{Discovered: len(articles)}, fmt.Errorf("saving articles: %w", err)
	}

	stats := model.RunStats{
		Discovered: len(articles),
		Inserted:   batch.Inserted,
		Skipped:    batch.Skipped,
	}
	if err := a.store.LogRun(ctx, "news", stats, errStrings(discoverErr)); err != nil {
		log.Printf("news: logging run: %v", err)
	}
	return stats, discoverErr
}
