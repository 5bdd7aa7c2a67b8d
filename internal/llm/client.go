package llm

import (
	"context"
)

// Client is the minimal completion contract the oracle adapter builds on.
// Implementations must return an error rather than an empty string when the
// backend produced no usable content.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
