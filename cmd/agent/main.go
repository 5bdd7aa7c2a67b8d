package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/blkoutuk/research-agent/internal/agent"
	"github.com/blkoutuk/research-agent/internal/config"
	"github.com/blkoutuk/research-agent/internal/core/dates"
	"github.com/blkoutuk/research-agent/internal/core/oracle"
	"github.com/blkoutuk/research-agent/internal/core/policy"
	"github.com/blkoutuk/research-agent/internal/core/score"
	"github.com/blkoutuk/research-agent/internal/llm"
	"github.com/blkoutuk/research-agent/internal/notify"
	"github.com/blkoutuk/research-agent/internal/sched"
	"github.com/blkoutuk/research-agent/internal/scrape"
	"github.com/blkoutuk/research-agent/internal/search"
	"github.com/blkoutuk/research-agent/internal/server"
	"github.com/blkoutuk/research-agent/internal/store"
)

var (
	configPath string
	dryRun     bool
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	root := &cobra.Command{
		Use:   "agent",
		Short: "BLKOUT research agent: discovers news, events and grants for the Black LGBTQ+ UK community",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to TOML config file")
	root.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "use an in-memory database and skip notifications")

	root.AddCommand(runCmd(), serveCmd(), scheduleCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "run [daily|news|events|weekly|grants]",
		Short:     "Run a discovery pipeline once and print the report",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"daily", "news", "events", "weekly", "grants"},
		RunE: func(cmd *cobra.Command, args []string) error {
			runType := "daily"
			if len(args) > 0 {
				runType = args[0]
			}

			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			report := app.run(ctx, runType)

			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API for triggering and inspecting runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			srv := server.New(app.coordinator, app.store)
			port := app.cfg.Server.Port
			if port == "" {
				port = "8080"
			}

			log.Printf("Starting server on port %s", port)
			return srv.SetupRouter().Run(":" + port)
		},
	}
}

func scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the discovery pipelines on their recurring schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			scheduler, err := sched.New(app.coordinator)
			if err != nil {
				return err
			}
			if err := scheduler.Start(cmd.Context()); err != nil {
				return err
			}
			defer scheduler.Stop()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop
			log.Printf("shutting down")
			return nil
		},
	}
}

// app holds the wired pipeline components for one process.
type app struct {
	cfg         *config.Config
	store       *store.Store
	scraper     *scrape.Scraper
	coordinator *agent.Coordinator
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dryRun {
		cfg.Storage.Path = ":memory:"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	llmClient, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("initializing LLM client: %w", err)
	}
	oracleAdapter := oracle.New(llmClient)

	st, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	searcher := search.NewDuckDuckGo(cfg.Search)
	feeds := search.NewFeedReader(cfg.Search.NewsFeeds)
	domains := policy.New(cfg.Domains)
	normalizer := dates.NewNormalizer(oracleAdapter)

	// The browser is optional: without it event discovery still runs on the
	// search branch alone.
	var eventScraper agent.EventScraper
	scraper := scrape.New(cfg.Scrape)
	if err := scraper.Start(); err != nil {
		log.Printf("browser unavailable, scraping disabled: %v", err)
		scraper = nil
	} else {
		eventScraper = scraper
	}

	var notifier agent.DigestSender
	if !dryRun {
		notifier = notify.New(cfg.Notify)
	}

	news := agent.NewNewsAgent(searcher, feeds, oracleAdapter, domains,
		score.NewScorer(cfg.NewsKeywords, score.NewsLevels), cfg.NewsBands,
		st, cfg.Search.NewsQueries)
	events := agent.NewEventsAgent(searcher, eventScraper, domains,
		score.NewEventGate(cfg.EventFilter),
		score.NewScorer(cfg.EventKeywords, score.EventLevels), normalizer,
		cfg.EventBands, st, cfg.Search.EventQueries)
	grants := agent.NewGrantsAgent(searcher, oracleAdapter,
		score.NewGrantScorer(cfg.GrantKeywords), cfg.GrantBands,
		cfg.Grants.KnownFunders, st, notifier, cfg.Search.GrantQueries)

	coordinator := agent.NewCoordinator(news, events, grants,
		agent.NewIntelligenceSync(st))

	return &app{cfg: cfg, store: st, scraper: scraper, coordinator: coordinator}, nil
}

func (a *app) run(ctx context.Context, runType string) any {
	switch runType {
	case "news":
		return a.coordinator.RunNews(ctx)
	case "events":
		return a.coordinator.RunEvents(ctx)
	case "weekly":
		return a.coordinator.RunWeeklyDeep(ctx)
	case "grants":
		return a.coordinator.RunGrants(ctx)
	default:
		return a.coordinator.RunDaily(ctx)
	}
}

func (a *app) Close() {
	if a.scraper != nil {
		a.scraper.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
}
