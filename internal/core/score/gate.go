package score

import (
	"strings"

	"github.com/blkoutuk/research-agent/internal/config"
)

// EventGate distinguishes actual happenings from unrelated entities that
// share keywords with them (bands, games, film characters). Non-event terms
// reject unless a clear event indicator co-occurs.
type EventGate struct {
	indicators []string
	nonEvent   []string
}

func NewEventGate(cfg config.EventFilterConfig) *EventGate {
	return &EventGate{
		indicators: lowerAll(cfg.EventIndicators),
		nonEvent:   lowerAll(cfg.NonEventTerms),
	}
}

// IsLikelyEvent reports whether the text plausibly describes a happening.
func (g *EventGate) IsLikelyEvent(text string) bool {
	lower := strings.ToLower(text)

	for _, term := range g.nonEvent {
		if strings.Contains(lower, term) && !containsAny(lower, g.indicators) {
			return false
		}
	}

	return containsAny(lower, g.indicators)
}
