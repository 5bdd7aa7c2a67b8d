package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LLM_PROVIDER", "LLM_MODEL", "LLM_API_KEY", "GROQ_API_KEY",
		"LLM_BASE_URL", "DATABASE_PATH", "PORT", "RESEND_API_KEY",
		"NOTIFICATION_FROM_EMAIL", "NOTIFICATION_TO_EMAIL",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "groq", cfg.LLM.Provider)
	assert.Equal(t, "data/discovery.db", cfg.Storage.Path)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.NotEmpty(t, cfg.Search.NewsQueries)
	assert.NotEmpty(t, cfg.Search.GrantQueries)
	assert.NotEmpty(t, cfg.NewsKeywords.HighRelevance)
	assert.NotEmpty(t, cfg.Scrape.Platforms)

	// Events never route to the oracle.
	assert.Equal(t, cfg.EventBands.HighConfidence, cfg.EventBands.Floor)
	assert.Equal(t, cfg.EventBands.HighConfidence, cfg.EventBands.Accept)
}

func TestLoadOverlaysTOML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[llm]
provider = "openai"
model = "gpt-4o-mini"

[news_bands]
floor = 50
high_confidence = 85
accept = 65
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, Bands{Floor: 50, HighConfidence: 85, Accept: 65}, cfg.NewsBands)
	// Untouched tables keep their defaults.
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.NotEmpty(t, cfg.Search.NewsQueries)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadWithoutPathUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "groq", cfg.LLM.Provider)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_API_KEY", "primary")
	t.Setenv("GROQ_API_KEY", "fallback")
	t.Setenv("DATABASE_PATH", "/tmp/other.db")
	t.Setenv("PORT", "9090")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "primary", cfg.LLM.APIKey, "LLM_API_KEY beats GROQ_API_KEY")
	assert.Equal(t, "/tmp/other.db", cfg.Storage.Path)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestGroqKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROQ_API_KEY", "fallback")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "fallback", cfg.LLM.APIKey)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Validate(), "missing API key must fail")

	cfg.LLM.APIKey = "key"
	assert.NoError(t, cfg.Validate())

	cfg.Storage.Path = ""
	assert.Error(t, cfg.Validate())
}
