// Package dates extracts and validates ISO calendar dates from the noisy
// title/URL/snippet signals that come back from search and scraping.
package dates

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const isoLayout = "2006-01-02"

var (
	isoPattern       = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	slashPathPattern = regexp.MustCompile(`/(\d{4})/(\d{2})/(\d{2})(?:/|$|[^0-9])`)
)

// Extractor is the oracle capability the normalizer falls back to when
// deterministic extraction finds nothing. An empty string means "no date".
type Extractor interface {
	ExtractDate(ctx context.Context, text string) (string, error)
}

// Normalizer resolves an ISO YYYY-MM-DD date from mixed free-text and URL
// signals. Deterministic extraction always wins; the oracle is consulted
// only when every deterministic step fails.
type Normalizer struct {
	oracle Extractor
}

func NewNormalizer(oracle Extractor) *Normalizer {
	return &Normalizer{oracle: oracle}
}

// Normalize returns a validated ISO date or "" when none can be resolved.
// It never guesses: a bare month/day without a year and relative phrasing
// ("next Tuesday") both resolve to "". Past dates are returned as-is;
// recency filtering is the caller's policy.
func (n *Normalizer) Normalize(ctx context.Context, title, rawURL, snippet string) string {
	if d := FromURL(rawURL); d != "" {
		return d
	}
	if d := ExtractISO(snippet); d != "" {
		return d
	}
	if d := ExtractISO(title); d != "" {
		return d
	}

	if n.oracle == nil {
		return ""
	}
	text := fmt.Sprintf("Title: %s\nURL: %s\nSnippet: %s", title, rawURL, snippet)
	raw, err := n.oracle.ExtractDate(ctx, text)
	if err != nil {
		return ""
	}
	candidate := strings.ToLower(strings.TrimSpace(raw))
	if candidate == "" || candidate == "none" {
		return ""
	}
	// Accept only the strict ISO shape; natural language the oracle failed
	// to convert is treated as no date, never guessed at.
	if !Valid(candidate) {
		return ""
	}
	return candidate
}

// FromURL extracts a date from a URL accepting both /YYYY-MM-DD/ and
// /YYYY/MM/DD/ segment layouts.
func FromURL(rawURL string) string {
	if d := ExtractISO(rawURL); d != "" {
		return d
	}
	for _, m := range slashPathPattern.FindAllStringSubmatch(rawURL, -1) {
		candidate := fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3])
		if Valid(candidate) {
			return candidate
		}
	}
	return ""
}

// ExtractISO returns the first calendar-valid YYYY-MM-DD substring of text,
// or "" when there is none. Date-shaped strings that are not real dates
// (2026-02-30) are skipped, not returned.
func ExtractISO(text string) string {
	for _, m := range isoPattern.FindAllString(text, -1) {
		if Valid(m) {
			return m
		}
	}
	return ""
}

// Valid reports whether s is a strict ISO date: length 10, hyphens at
// positions 4 and 7, and a real calendar date (leap years respected).
func Valid(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	_, err := time.Parse(isoLayout, s)
	return err == nil
}

// InPast reports whether the ISO date d falls strictly before the day of
// now. Invalid dates are not in the past (they should already have been
// rejected by Valid).
func InPast(d string, now time.Time) bool {
	t, err := time.Parse(isoLayout, d)
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return t.Before(today)
}
