package oracle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type mockLLM struct {
	response string
	err      error
	calls    int
}

func (m *mockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func TestClassify(t *testing.T) {
	mock := &mockLLM{response: `Here is my analysis:
{
	"relevance_score": 88,
	"reasoning": "Covers a Black queer arts collective in London",
	"recommended_action": "review",
	"suggested_tags": ["arts", "london"],
	"suggested_category": "culture"
}
Let me know if you need anything else.`}

	result, err := New(mock).Classify(context.Background(),
		"Collective launches season", "snippet", "Guardian", "https://example.com/a")

	assert.NoError(t, err)
	assert.Equal(t, 88, result.RelevanceScore)
	assert.Equal(t, "review", result.RecommendedAction)
	assert.Equal(t, []string{"arts", "london"}, result.SuggestedTags)
	assert.Equal(t, "culture", result.SuggestedCategory)
}

func TestClassifyClampsScore(t *testing.T) {
	mock := &mockLLM{response: `{"relevance_score": 140, "reasoning": "x", "recommended_action": "publish"}`}

	result, err := New(mock).Classify(context.Background(), "t", "c", "s", "u")

	assert.NoError(t, err)
	assert.Equal(t, 100, result.RelevanceScore)
}

func TestClassifyMalformedResponse(t *testing.T) {
	mock := &mockLLM{response: "I cannot answer that."}

	_, err := New(mock).Classify(context.Background(), "t", "c", "s", "u")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "malformed oracle response")
}

func TestRetryExhaustionSurfacesError(t *testing.T) {
	mock := &mockLLM{err: errors.New("rate limited")}
	a := New(mock)
	a.attempts = 1 // keep the test fast; backoff only happens between attempts

	_, err := a.Classify(context.Background(), "t", "c", "s", "u")

	assert.Error(t, err)
	assert.ErrorContains(t, err, "rate limited")
	assert.Equal(t, 1, mock.calls)
}

func TestAnalyzeGrant(t *testing.T) {
	mock := &mockLLM{response: `{
		"relevance_score": 92,
		"fit_reasoning": "Directly funds Black LGBTQ+ community work",
		"funder_type": "lgbtq_specific",
		"program_area": "community_development",
		"estimated_amount_range": "5000-20000",
		"deadline_mentioned": "2026-10-01",
		"priority": "high",
		"tags": ["community"]
	}`}

	result, err := New(mock).AnalyzeGrant(context.Background(), "Fund", "snippet", "https://example.com/g")

	assert.NoError(t, err)
	assert.Equal(t, 92, result.RelevanceScore)
	assert.Equal(t, "lgbtq_specific", result.FunderType)
	assert.Equal(t, "5000-20000", result.EstimatedAmountRange)
	assert.Equal(t, "2026-10-01", result.DeadlineMentioned)
}

func TestExtractDateTrims(t *testing.T) {
	mock := &mockLLM{response: "  2026-01-07\n"}

	got, err := New(mock).ExtractDate(context.Background(), "Party on Jan 7 2026")

	assert.NoError(t, err)
	assert.Equal(t, "2026-01-07", got)
}

func TestExtractDateNoneSentinel(t *testing.T) {
	mock := &mockLLM{response: "none"}

	got, err := New(mock).ExtractDate(context.Background(), "Party sometime")

	assert.NoError(t, err)
	assert.Equal(t, "none", got)
}
