// Package oracle wraps the language-model backend behind a fixed contract:
// structured relevance classification, grant fit analysis, and date
// extraction. The model is treated as a noisy oracle: every response is
// parsed and sanity-checked, and failures surface as errors the caller must
// handle rather than as guessed results.
package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blkoutuk/research-agent/internal/core/common"
	"github.com/blkoutuk/research-agent/internal/llm"
)

const (
	defaultAttempts = 3
	backoffBase     = 2 * time.Second
	backoffMax      = 10 * time.Second

	contentExcerptLen = 1000
	dateExcerptLen    = 500
)

// Classification is the structured relevance judgment for a news candidate.
type Classification struct {
	RelevanceScore    int      `json:"relevance_score"`
	Reasoning         string   `json:"reasoning"`
	RecommendedAction string   `json:"recommended_action"`
	SuggestedTags     []string `json:"suggested_tags"`
	SuggestedCategory string   `json:"suggested_category"`
}

// GrantAnalysis is the structured fit judgment for a grant candidate.
type GrantAnalysis struct {
	RelevanceScore       int      `json:"relevance_score"`
	FitReasoning         string   `json:"fit_reasoning"`
	FunderType           string   `json:"funder_type"`
	ProgramArea          string   `json:"program_area"`
	EstimatedAmountRange string   `json:"estimated_amount_range"`
	DeadlineMentioned    string   `json:"deadline_mentioned"`
	Priority             string   `json:"priority"`
	Tags                 []string `json:"tags"`
}

// Adapter issues classification and extraction calls with bounded retry.
// It never panics past its boundary: callers always receive either a valid
// structured result or an explicit error.
type Adapter struct {
	llm      llm.Client
	attempts int
}

func New(client llm.Client) *Adapter {
	return &Adapter{llm: client, attempts: defaultAttempts}
}

// Classify scores a candidate's relevance to Black LGBTQ+ people in the UK.
func (a *Adapter) Classify(ctx context.Context, title, content, source, url string) (*Classification, error) {
	prompt := fmt.Sprintf(`You are a relevance scoring agent for the BLKOUT community platform.
Score content relevance to Black LGBTQ+ people in the UK from 0-100.

90-100: Explicitly Black LGBTQ+ UK content
70-89: Strong intersectional relevance
50-69: Moderate relevance
0-49: Low or no relevance

Analyze this content:

Title: %s
Source: %s
Content: %s
URL: %s

Return JSON only, with keys:
- relevance_score: number 0-100
- reasoning: brief explanation
- recommended_action: "publish" | "review" | "skip"
- suggested_tags: list of tags
- suggested_category: "news" | "culture" | "health" | "community" | "politics" | "events"`,
		title, source, truncate(content, contentExcerptLen), url)

	result, err := generate[Classification](ctx, a, prompt)
	if err != nil {
		return nil, err
	}
	result.RelevanceScore = clamp(result.RelevanceScore)
	return result, nil
}

// AnalyzeGrant judges a grant opportunity against BLKOUT's focus areas.
func (a *Adapter) AnalyzeGrant(ctx context.Context, title, snippet, url string) (*GrantAnalysis, error) {
	prompt := fmt.Sprintf(`Analyze this grant opportunity for BLKOUT - a community-owned liberation platform for Black queer men in the UK.

BLKOUT's focus areas:
- Black LGBTQ+ community wellbeing and connection
- Participatory arts and storytelling
- Community wealth building / cooperative ownership
- Independent media and journalism
- Gender justice and trans inclusion

Grant: %s
Description: %s
URL: %s

Respond in JSON format:
{
    "relevance_score": 0-100,
    "fit_reasoning": "Why this is/isn't a good fit for BLKOUT",
    "funder_type": "one of: trust_foundation, lottery, arts_council, lgbtq_specific, racial_justice, gender_justice, community_wealth, media_journalism, corporate, government",
    "program_area": "one of: community_development, arts_culture, health_wellbeing, racial_justice, lgbtq_rights, gender_justice, media_communications, cooperative_economy, youth, mental_health, capacity_building, core_costs",
    "estimated_amount_range": "e.g. '5000-20000' or 'unknown'",
    "deadline_mentioned": "date if found, else empty string",
    "priority": "high/medium/low",
    "tags": ["relevant", "tags"]
}`, title, truncate(snippet, contentExcerptLen), url)

	result, err := generate[GrantAnalysis](ctx, a, prompt)
	if err != nil {
		return nil, err
	}
	result.RelevanceScore = clamp(result.RelevanceScore)
	return result, nil
}

// ExtractDate asks the oracle for an event date in strict ISO form. The raw
// answer is returned for the date normalizer to validate; "none" or an empty
// string means no date was found.
func (a *Adapter) ExtractDate(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(`Extract the event date from this text. Return ONLY the date in ISO format (YYYY-MM-DD) or "none" if no date found.

Text: %s

Rules:
- Look for dates in title, URL path, or snippet
- Common patterns: "Jan 7", "7th January 2026", "/2026/01/07/", "Tue, 7 Jan"
- If multiple dates, return the earliest future date
- If no clear date, return "none"

Date (YYYY-MM-DD or "none"):`, truncate(text, dateExcerptLen))

	response, err := a.withRetry(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response), nil
}

// generate runs a prompt with retry and parses the structured response.
func generate[T any](ctx context.Context, a *Adapter, prompt string) (*T, error) {
	response, err := a.withRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}
	result, err := common.ParseJSON[T](response)
	if err != nil {
		return nil, fmt.Errorf("malformed oracle response: %w", err)
	}
	return &result, nil
}

// withRetry makes up to attempts calls with exponential backoff. Retries are
// bounded; after the last attempt the error is surfaced to the caller, whose
// documented fallback takes over.
func (a *Adapter) withRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	wait := backoffBase

	for attempt := 0; attempt < a.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			wait *= 2
			if wait > backoffMax {
				wait = backoffMax
			}
		}

		response, err := a.llm.Generate(ctx, prompt)
		if err == nil {
			return response, nil
		}
		lastErr = err
	}

	return "", fmt.Errorf("oracle call failed after %d attempts: %w", a.attempts, lastErr)
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
