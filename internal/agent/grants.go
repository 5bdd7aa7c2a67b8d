package agent

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/blkoutuk/research-agent/internal/config"
	"github.com/blkoutuk/research-agent/internal/core/dates"
	"github.com/blkoutuk/research-agent/internal/core/model"
	"github.com/blkoutuk/research-agent/internal/core/oracle"
	"github.com/blkoutuk/research-agent/internal/core/score"
	"github.com/blkoutuk/research-agent/internal/search"
	"github.com/blkoutuk/research-agent/internal/store"
)

const (
	defaultFunderType  = "trust_foundation"
	defaultProgramArea = "community_development"
)

// GrantAnalyzer is the oracle capability the grants pipeline escalates to.
type GrantAnalyzer interface {
	AnalyzeGrant(ctx context.Context, title, snippet, url string) (*oracle.GrantAnalysis, error)
}

// GrantStore is the persistence surface the grants pipeline needs.
type GrantStore interface {
	InsertGrantsBatch(ctx context.Context, grants []model.Grant) (model.BatchStats, error)
	LogRun(ctx context.Context, runType string, stats any, errs []string) error
	RecentGrants(ctx context.Context, minScore, limit int) ([]store.GrantSummary, error)
	TopPriorityGrants(ctx context.Context, limit int) ([]store.GrantSummary, error)
}

// DigestSender delivers the grants digest email after a run.
type DigestSender interface {
	SendGrantsDigest(ctx context.Context, newGrants, topPriority []store.GrantSummary, stats model.RunStats) bool
}

// GrantsAgent discovers grant funding opportunities aligned with BLKOUT's
// focus areas.
type GrantsAgent struct {
	search   search.Client
	oracle   GrantAnalyzer
	scorer   *score.GrantScorer
	bands    config.Bands
	funders  []string
	store    GrantStore
	notifier DigestSender
	queries  []string
}

func NewGrantsAgent(searcher search.Client, analyzer GrantAnalyzer,
	scorer *score.GrantScorer, bands config.Bands, funders []string,
	st GrantStore, notifier DigestSender, queries []string) *GrantsAgent {
	return &GrantsAgent{
		search:   searcher,
		oracle:   analyzer,
		scorer:   scorer,
		bands:    bands,
		funders:  funders,
		store:    st,
		notifier: notifier,
		queries:  queries,
	}
}

// Research runs the grant queries and returns scored opportunities, highest
// fit first. High-scoring candidates are enriched by the oracle; mid-band
// ones need the acceptance threshold too and are kept with keyword scores
// only. A total search outage is returned as an error.
func (a *GrantsAgent) Research(ctx context.Context, rng model.TimeRange) ([]model.Grant, error) {
	log.Printf("grants: starting research with %d queries", len(a.queries))

	results, searchErr := search.MultiSearch(ctx, a.search, a.queries, model.SearchWeb, rng)
	if searchErr != nil {
		searchErr = fmt.Errorf("web search: %w", searchErr)
	}
	log.Printf("grants: %d raw results", len(results))

	var discovered []model.Grant
	for _, r := range results {
		quick := a.scorer.Score(r.Title + " " + r.Snippet)
		switch score.Route(quick, a.bands) {
		case score.AutoAccept:
			discovered = append(discovered, a.enrich(ctx, r, quick))
		case score.NeedsOracleReview:
			if quick < a.bands.Accept {
				continue
			}
			discovered = append(discovered, model.Grant{
				Title:          r.Title,
				FunderName:     a.funderName(r.Title, r.Source),
				URL:            r.URL,
				Description:    r.Snippet,
				FunderType:     defaultFunderType,
				ProgramArea:    defaultProgramArea,
				RelevanceScore: quick,
				FitReasoning:   "Keyword match - needs manual review",
				Scope:          "UK",
				Method:         model.ScoredByKeyword,
			})
		}
	}

	sort.SliceStable(discovered, func(i, j int) bool {
		return discovered[i].RelevanceScore > discovered[j].RelevanceScore
	})

	log.Printf("grants: discovered %d relevant opportunities", len(discovered))
	return discovered, searchErr
}

// enrich asks the oracle for funder details on a high-confidence candidate.
// On oracle failure the keyword result is kept as-is.
func (a *GrantsAgent) enrich(ctx context.Context, r model.SearchResult, quick int) model.Grant {
	grant := model.Grant{
		Title:          r.Title,
		FunderName:     a.funderName(r.Title, r.Source),
		URL:            r.URL,
		Description:    r.Snippet,
		FunderType:     defaultFunderType,
		ProgramArea:    defaultProgramArea,
		RelevanceScore: quick,
		Scope:          "UK",
		Method:         model.ScoredByFallback,
	}

	analysis, err := a.oracle.AnalyzeGrant(ctx, r.Title, r.Snippet, r.URL)
	if err != nil {
		log.Printf("grants: oracle analysis failed for %s: %v", r.URL, err)
		return grant
	}

	if analysis.RelevanceScore > 0 {
		grant.RelevanceScore = analysis.RelevanceScore
	}
	if analysis.FunderType != "" {
		grant.FunderType = analysis.FunderType
	}
	if analysis.ProgramArea != "" {
		grant.ProgramArea = analysis.ProgramArea
	}
	grant.FitReasoning = analysis.FitReasoning
	grant.Deadline = normalizeDeadline(analysis.DeadlineMentioned)
	grant.Tags = analysis.Tags
	grant.AmountMin, grant.AmountMax = parseAmountRange(analysis.EstimatedAmountRange)
	grant.Method = model.ScoredByOracle
	return grant
}

// funderName matches the text against the known-funder list, falling back to
// the result's source name.
func (a *GrantsAgent) funderName(title, source string) string {
	text := strings.ToLower(title + " " + source)
	for _, funder := range a.funders {
		if strings.Contains(text, strings.ToLower(funder)) {
			return funder
		}
	}
	if source != "" {
		return source
	}
	return "Unknown Funder"
}

// normalizeDeadline reduces the oracle's free-text deadline to a strict ISO
// date, or "" when none is present. The deadline column is compared and
// ordered lexically, so only YYYY-MM-DD values may reach it.
func normalizeDeadline(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if dates.Valid(trimmed) {
		return trimmed
	}
	return dates.ExtractISO(trimmed)
}

// parseAmountRange parses strings like "£5,000-20,000". Anything it cannot
// parse, "unknown" included, yields zero bounds.
func parseAmountRange(s string) (float64, float64) {
	cleaned := strings.NewReplacer("£", "", ",", "", " ", "").Replace(s)
	parts := strings.Split(cleaned, "-")
	if len(parts) != 2 {
		return 0, 0
	}
	min, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0
	}
	max, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0
	}
	return min, max
}

// ResearchAndSave runs Research and persists the result.
func (a *GrantsAgent) ResearchAndSave(ctx context.Context, rng model.TimeRange) (model.RunStats, error) {
	grants, discoverErr := a.Research(ctx, rng)

	batch, err := a.store.InsertGrantsBatch(ctx, grants)
	if err != nil {
		return model.RunStats{Discovered: len(grants)}, fmt.Errorf("saving grants: %w", err)
	}

	stats := model.RunStats{
		Discovered: len(grants),
		Inserted:   batch.Inserted,
		Skipped:    batch.Skipped,
	}
	if err := a.store.LogRun(ctx, "grants", stats, errStrings(discoverErr)); err != nil {
		log.Printf("grants: logging run: %v", err)
	}
	return stats, discoverErr
}

// RunResearch runs a full grant research cycle and sends the digest email.
// The digest is best effort; a failed email never fails the run.
func (a *GrantsAgent) RunResearch(ctx context.Context) (model.RunStats, error) {
	stats, err := a.ResearchAndSave(ctx, model.RangeMonth)
	if err != nil {
		return stats, err
	}

	if a.notifier != nil {
		a.sendDigest(ctx, stats)
	}
	return stats, nil
}

func (a *GrantsAgent) sendDigest(ctx context.Context, stats model.RunStats) {
	recent, err := a.store.RecentGrants(ctx, 60, 20)
	if err != nil {
		log.Printf("grants: fetching recent grants: %v", err)
	}
	top, err := a.store.TopPriorityGrants(ctx, 10)
	if err != nil {
		log.Printf("grants: fetching top priority grants: %v", err)
	}
	a.notifier.SendGrantsDigest(ctx, recent, top, stats)
}
