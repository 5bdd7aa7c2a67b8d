package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/blkoutuk/research-agent/internal/config"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// NewClient builds a completion client for the configured provider.
func NewClient(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "groq":
		// Groq exposes an OpenAI-compatible API, so the OpenAI client is
		// pointed at the Groq endpoint instead of carrying a bespoke client.
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = groqBaseURL
		}
		return NewOpenAIClient(cfg.APIKey, cfg.Model, baseURL), nil

	case "claude":
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "gemini":
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model)

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
