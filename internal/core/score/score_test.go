package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blkoutuk/research-agent/internal/config"
)

func testSets() config.KeywordSets {
	return config.KeywordSets{
		HighRelevance:  []string{"black queer", "qtipoc", "uk black pride"},
		PrimaryGroup:   []string{"black", "african", "caribbean"},
		SecondaryGroup: []string{"lgbtq", "queer", "gay", "trans", "pride"},
		Locale:         []string{"uk", "london", "manchester", "britain"},
		Negative:       []string{"black friday", "blackpool", "blackberry"},
	}
}

func TestScoreHighRelevancePhrase(t *testing.T) {
	s := NewScorer(testSets(), NewsLevels)

	assert.Equal(t, 95, s.Score("Black queer artists celebrate new exhibition"))
	assert.Equal(t, 95, s.Score("QTIPOC collective announces programme"))
}

func TestScoreHighRelevanceDominatesNegative(t *testing.T) {
	s := NewScorer(testSets(), NewsLevels)

	// "Black Friday" alone is a false positive, but a high-relevance phrase
	// in the same text always wins.
	assert.Equal(t, 15, s.Score("Black Friday deals on electronics"))
	assert.Equal(t, 95, s.Score("Black Friday fundraiser by UK Black Pride"))
}

func TestScoreCascadeOrder(t *testing.T) {
	s := NewScorer(testSets(), NewsLevels)

	tests := []struct {
		name string
		text string
		want int
	}{
		{"both groups plus locale", "Black trans organisers meet in London", 85},
		{"both groups no locale", "Black and gay voices in new anthology", 60},
		{"one group plus locale", "Caribbean food festival in Manchester", 50},
		{"single group only", "African diaspora art retrospective", 25},
		{"nothing relevant", "Council announces road maintenance schedule", 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Score(tt.text))
		})
	}
}

func TestScoreEventLevelsPairBand(t *testing.T) {
	s := NewScorer(testSets(), EventLevels)

	// Events accept a group pair without a locale signal at 75.
	assert.Equal(t, 75, s.Score("Night of Black joy with gay DJs"))
}

func TestScoreCaseInsensitive(t *testing.T) {
	s := NewScorer(testSets(), NewsLevels)

	assert.Equal(t, s.Score("BLACK QUEER JOY"), s.Score("black queer joy"))
}

func TestScoreBounded(t *testing.T) {
	s := NewScorer(testSets(), NewsLevels)

	for _, text := range []string{
		"",
		"Black queer trans gay lesbian London Manchester Britain pride",
		"black friday blackpool blackberry",
	} {
		got := s.Score(text)
		assert.GreaterOrEqual(t, got, 0)
		assert.LessOrEqual(t, got, 100)
	}
}

func grantSets() config.GrantKeywords {
	return config.GrantKeywords{
		HighRelevance:   []string{"black lgbtq fund"},
		PrimaryGroup:    []string{"black", "racial justice"},
		SecondaryGroup:  []string{"lgbtq", "queer"},
		Arts:            []string{"arts", "creative"},
		CommunityWealth: []string{"cooperative", "community wealth"},
	}
}

func TestGrantScoreAdditive(t *testing.T) {
	s := NewGrantScorer(grantSets())

	// Base only.
	assert.Equal(t, 30, s.Score("General charity fund"))
	// High relevance short-circuits.
	assert.Equal(t, 95, s.Score("Black LGBTQ fund now open"))
	// Pair.
	assert.Equal(t, 90, s.Score("Fund for Black queer communities"))
	// Single group adds 25.
	assert.Equal(t, 55, s.Score("Fund supporting Black communities"))
	// Arts and community wealth stack.
	assert.Equal(t, 60, s.Score("Creative cooperative fund"))
	// Open/deadline/apply bonus.
	assert.Equal(t, 40, s.Score("Charity fund, apply by March"))
}

func TestGrantScoreCapped(t *testing.T) {
	s := NewGrantScorer(grantSets())

	got := s.Score("Black queer arts cooperative fund, apply now")
	assert.Equal(t, 100, got)
}

func TestRoute(t *testing.T) {
	bands := config.Bands{Floor: 45, HighConfidence: 80, Accept: 70}

	assert.Equal(t, Reject, Route(0, bands))
	assert.Equal(t, Reject, Route(44, bands))
	assert.Equal(t, NeedsOracleReview, Route(45, bands))
	assert.Equal(t, NeedsOracleReview, Route(79, bands))
	assert.Equal(t, AutoAccept, Route(80, bands))
	assert.Equal(t, AutoAccept, Route(100, bands))
}

func TestRouteNoReviewGap(t *testing.T) {
	// Event bands leave no gap between floor and high confidence, so every
	// score either rejects or auto-accepts.
	bands := config.Bands{Floor: 75, HighConfidence: 75, Accept: 75}

	for score := 0; score <= 100; score++ {
		got := Route(score, bands)
		assert.NotEqual(t, NeedsOracleReview, got, "score %d", score)
	}
}

func TestEventGate(t *testing.T) {
	gate := NewEventGate(config.EventFilterConfig{
		EventIndicators: []string{"event", "party", "night", "club", "performance", "live"},
		NonEventTerms:   []string{"musician", "band", "game", "tv show", "tutorial"},
	})

	assert.True(t, gate.IsLikelyEvent("Club night for Black queer joy"))
	assert.False(t, gate.IsLikelyEvent("Interview with a Black queer musician"))
	// Non-event term with a clear event indicator still passes.
	assert.True(t, gate.IsLikelyEvent("Musician headlines live performance"))
	// No indicators at all.
	assert.False(t, gate.IsLikelyEvent("History of the movement"))
}
