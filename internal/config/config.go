package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider  string `toml:"provider"`
	Model     string `toml:"model"`
	FastModel string `toml:"fast_model"`
	APIKey    string `toml:"api_key"`
	BaseURL   string `toml:"base_url"`
}

type StorageConfig struct {
	Path string `toml:"path"`
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type NotifyConfig struct {
	APIKey    string `toml:"api_key"`
	FromEmail string `toml:"from_email"`
	ToEmail   string `toml:"to_email"`
}

// KeywordSets holds the layered keyword tables for one content type.
// All phrases are matched lowercase-substring against lowercased text.
type KeywordSets struct {
	HighRelevance  []string `toml:"high_relevance"`
	PrimaryGroup   []string `toml:"primary_group"`
	SecondaryGroup []string `toml:"secondary_group"`
	Locale         []string `toml:"locale"`
	Negative       []string `toml:"negative"`
}

// GrantKeywords extends the shared sets with the grant-specific topic sets
// used by the additive grant scorer.
type GrantKeywords struct {
	HighRelevance   []string `toml:"high_relevance"`
	PrimaryGroup    []string `toml:"primary_group"`
	SecondaryGroup  []string `toml:"secondary_group"`
	Arts            []string `toml:"arts"`
	CommunityWealth []string `toml:"community_wealth"`
}

// Bands partitions [0,100] into reject / oracle-review / auto-accept.
// Accept is the minimum oracle (or fallback) score a candidate must reach.
type Bands struct {
	Floor          int `toml:"floor"`
	HighConfidence int `toml:"high_confidence"`
	Accept         int `toml:"accept"`
}

type DomainPolicyConfig struct {
	Blacklist      []string `toml:"blacklist"`
	NewsWhitelist  []string `toml:"news_whitelist"`
	EventWhitelist []string `toml:"event_whitelist"`
}

type Selectors struct {
	Card  string `toml:"card"`
	Title string `toml:"title"`
	Date  string `toml:"date"`
	Venue string `toml:"venue"`
	Price string `toml:"price"`
	Link  string `toml:"link"`
}

type Platform struct {
	Name      string    `toml:"name"`
	BaseURL   string    `toml:"base_url"`
	SearchURL string    `toml:"search_url"`
	Queries   []string  `toml:"queries"`
	Selectors Selectors `toml:"selectors"`
}

type ScrapeConfig struct {
	Headless  bool       `toml:"headless"`
	TimeoutMS float64    `toml:"timeout_ms"`
	MaxEvents int        `toml:"max_events"`
	Platforms []Platform `toml:"platforms"`
}

type SearchConfig struct {
	MaxResults    int      `toml:"max_results"`
	Region        string   `toml:"region"`
	QueriesPerSec float64  `toml:"queries_per_sec"`
	NewsQueries   []string `toml:"news_queries"`
	EventQueries  []string `toml:"event_queries"`
	GrantQueries  []string `toml:"grant_queries"`
	NewsFeeds     []string `toml:"news_feeds"`
}

type EventFilterConfig struct {
	EventIndicators []string `toml:"event_indicators"`
	NonEventTerms   []string `toml:"non_event_terms"`
}

type GrantMetaConfig struct {
	KnownFunders []string `toml:"known_funders"`
}

type Config struct {
	LLM           LLMConfig          `toml:"llm"`
	Storage       StorageConfig      `toml:"storage"`
	Server        ServerConfig       `toml:"server"`
	Notify        NotifyConfig       `toml:"notify"`
	Search        SearchConfig       `toml:"search"`
	Scrape        ScrapeConfig       `toml:"scrape"`
	Domains       DomainPolicyConfig `toml:"domains"`
	NewsKeywords  KeywordSets        `toml:"news_keywords"`
	EventKeywords KeywordSets        `toml:"event_keywords"`
	GrantKeywords GrantKeywords      `toml:"grant_keywords"`
	EventFilter   EventFilterConfig  `toml:"event_filter"`
	Grants        GrantMetaConfig    `toml:"grants"`
	NewsBands     Bands              `toml:"news_bands"`
	EventBands    Bands              `toml:"event_bands"`
	GrantBands    Bands              `toml:"grant_bands"`
}

// Load reads a TOML config file over the built-in defaults, then applies
// environment overrides. Secrets come from the environment; the TOML file
// holds the tunable tables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("GROQ_API_KEY"); v != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("RESEND_API_KEY"); v != "" {
		c.Notify.APIKey = v
	}
	if v := os.Getenv("NOTIFICATION_FROM_EMAIL"); v != "" {
		c.Notify.FromEmail = v
	}
	if v := os.Getenv("NOTIFICATION_TO_EMAIL"); v != "" {
		c.Notify.ToEmail = v
	}
}

// Validate reports the fatal misconfigurations that must stop the process
// before any pipeline runs.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("missing LLM API key (set LLM_API_KEY or GROQ_API_KEY)")
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("missing storage path (set DATABASE_PATH)")
	}
	return nil
}
