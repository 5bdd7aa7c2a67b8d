// Package score implements the keyword relevance heuristics and the
// score-band routing that decides which candidates need oracle review.
package score

import (
	"strings"

	"github.com/blkoutuk/research-agent/internal/config"
)

// Levels are the fixed scores produced by each rule of the keyword cascade.
// They are content-type constants, not runtime-derived values.
type Levels struct {
	Negative    int // negative term matched, no high-relevance override
	High        int // intersectional phrase matched
	FullMatch   int // both groups plus locale
	GroupPair   int // both groups, no locale
	GroupLocale int // one group plus locale
	SingleGroup int // one group only
	Floor       int // nothing matched
}

// NewsLevels tunes the cascade for news: a group pair without a UK signal is
// only borderline, so it lands in the oracle-review band.
var NewsLevels = Levels{
	Negative:    15,
	High:        95,
	FullMatch:   85,
	GroupPair:   60,
	GroupLocale: 50,
	SingleGroup: 25,
	Floor:       10,
}

// EventLevels are stricter below the pair band and more generous at it:
// events that name both communities are accepted without oracle review.
var EventLevels = Levels{
	Negative:    15,
	High:        95,
	FullMatch:   85,
	GroupPair:   75,
	GroupLocale: 50,
	SingleGroup: 25,
	Floor:       10,
}

// Scorer maps free text to a relevance score in [0,100] using layered
// keyword sets. It is a pure function of the lowercased text; construct one
// per content type with that type's sets and levels.
type Scorer struct {
	sets   config.KeywordSets
	levels Levels
}

func NewScorer(sets config.KeywordSets, levels Levels) *Scorer {
	return &Scorer{sets: lowerSets(sets), levels: levels}
}

// Score evaluates the cascade in fixed order; the first matching rule wins.
// High-relevance phrases always dominate negative terms.
func (s *Scorer) Score(text string) int {
	lower := strings.ToLower(text)

	hasHigh := containsAny(lower, s.sets.HighRelevance)

	if containsAny(lower, s.sets.Negative) && !hasHigh {
		return s.levels.Negative
	}
	if hasHigh {
		return s.levels.High
	}

	hasPrimary := containsAny(lower, s.sets.PrimaryGroup)
	hasSecondary := containsAny(lower, s.sets.SecondaryGroup)
	hasLocale := containsAny(lower, s.sets.Locale)

	switch {
	case hasPrimary && hasSecondary && hasLocale:
		return s.levels.FullMatch
	case hasPrimary && hasSecondary:
		return s.levels.GroupPair
	case (hasPrimary || hasSecondary) && hasLocale:
		return s.levels.GroupLocale
	case hasPrimary || hasSecondary:
		return s.levels.SingleGroup
	default:
		return s.levels.Floor
	}
}

// GrantScorer scores grant text additively: alignment with each of BLKOUT's
// focus areas stacks, capped at 100.
type GrantScorer struct {
	sets config.GrantKeywords
}

func NewGrantScorer(sets config.GrantKeywords) *GrantScorer {
	return &GrantScorer{sets: config.GrantKeywords{
		HighRelevance:   lowerAll(sets.HighRelevance),
		PrimaryGroup:    lowerAll(sets.PrimaryGroup),
		SecondaryGroup:  lowerAll(sets.SecondaryGroup),
		Arts:            lowerAll(sets.Arts),
		CommunityWealth: lowerAll(sets.CommunityWealth),
	}}
}

func (s *GrantScorer) Score(text string) int {
	lower := strings.ToLower(text)

	if containsAny(lower, s.sets.HighRelevance) {
		return 95
	}

	hasPrimary := containsAny(lower, s.sets.PrimaryGroup)
	hasSecondary := containsAny(lower, s.sets.SecondaryGroup)

	score := 30 // base score for anything that looks like a grant
	if hasPrimary && hasSecondary {
		score = 90
	} else if hasPrimary || hasSecondary {
		score += 25
	}

	if containsAny(lower, s.sets.Arts) {
		score += 15
	}
	if containsAny(lower, s.sets.CommunityWealth) {
		score += 15
	}

	// An explicitly open opportunity outranks a closed or historical one.
	if strings.Contains(lower, "open") || strings.Contains(lower, "deadline") ||
		strings.Contains(lower, "apply") {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}

func containsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if p != "" && strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func lowerSets(sets config.KeywordSets) config.KeywordSets {
	return config.KeywordSets{
		HighRelevance:  lowerAll(sets.HighRelevance),
		PrimaryGroup:   lowerAll(sets.PrimaryGroup),
		SecondaryGroup: lowerAll(sets.SecondaryGroup),
		Locale:         lowerAll(sets.Locale),
		Negative:       lowerAll(sets.Negative),
	}
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
