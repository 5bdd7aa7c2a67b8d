// Package store persists discovered content in SQLite. Dedup happens here:
// every content table carries a unique url_hash, and inserts whose hash
// already exists are counted as skipped rather than errors.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/blkoutuk/research-agent/internal/core/dates"
	"github.com/blkoutuk/research-agent/internal/core/dedupe"
	"github.com/blkoutuk/research-agent/internal/core/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS news_articles (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	excerpt          TEXT,
	source_url       TEXT NOT NULL,
	source_name      TEXT,
	published_at     TEXT NOT NULL,
	category         TEXT NOT NULL DEFAULT 'news',
	interest_score   INTEGER NOT NULL,
	scoring_method   TEXT NOT NULL,
	topics           TEXT NOT NULL DEFAULT '[]',
	url_hash         TEXT NOT NULL UNIQUE,
	status           TEXT NOT NULL DEFAULT 'review',
	discovery_method TEXT NOT NULL DEFAULT 'research_agent',
	created_at       TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS events (
	id              TEXT PRIMARY KEY,
	title           TEXT NOT NULL,
	description     TEXT,
	url             TEXT NOT NULL,
	url_hash        TEXT NOT NULL UNIQUE,
	location        TEXT NOT NULL,
	date            TEXT NOT NULL,
	cost            TEXT,
	organizer       TEXT,
	source          TEXT,
	tags            TEXT NOT NULL DEFAULT '[]',
	relevance_score INTEGER NOT NULL,
	scoring_method  TEXT NOT NULL,
	status          TEXT NOT NULL DEFAULT 'draft',
	created_at      TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS grants (
	id                   TEXT PRIMARY KEY,
	title                TEXT NOT NULL,
	funder_name          TEXT,
	funder_type          TEXT,
	program_area         TEXT,
	application_url      TEXT NOT NULL,
	url_hash             TEXT NOT NULL UNIQUE,
	notes                TEXT,
	deadline_date        TEXT,
	fit_score            INTEGER NOT NULL,
	funder_advice        TEXT,
	geographic_scope     TEXT,
	tags                 TEXT NOT NULL DEFAULT '[]',
	priority             TEXT NOT NULL,
	status               TEXT NOT NULL DEFAULT 'researching',
	min_viable_budget    REAL,
	max_potential_budget REAL,
	scoring_method       TEXT NOT NULL,
	created_at           TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS discovery_logs (
	id         TEXT PRIMARY KEY,
	run_type   TEXT NOT NULL,
	started_at TEXT NOT NULL,
	stats      TEXT NOT NULL DEFAULT '{}',
	errors     TEXT NOT NULL DEFAULT '[]',
	status     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS intelligence (
	intelligence_type TEXT NOT NULL,
	service           TEXT NOT NULL,
	endpoint          TEXT NOT NULL,
	data              TEXT NOT NULL DEFAULT '{}',
	summary           TEXT NOT NULL,
	key_insights      TEXT NOT NULL DEFAULT '[]',
	relevance_score   REAL NOT NULL,
	priority          TEXT NOT NULL,
	expires_at        TEXT NOT NULL,
	updated_at        TEXT NOT NULL,
	PRIMARY KEY (intelligence_type, service)
);
`

// Store wraps the SQLite connection. All methods are safe for concurrent use
// through database/sql's pooling.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path with WAL journaling.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Path() string {
	return s.path
}

// InsertArticle stores one article unless its URL hash already exists.
// It reports whether a row was inserted.
func (s *Store) InsertArticle(ctx context.Context, a model.Article) (bool, error) {
	publishedAt := a.PublishedDate
	if publishedAt == "" {
		publishedAt = time.Now().UTC().Format(time.RFC3339)
	}
	category := a.Category
	if category == "" {
		category = "news"
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO news_articles
			(id, title, excerpt, source_url, source_name, published_at,
			 category, interest_score, scoring_method, topics, url_hash, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'review')`,
		uuid.NewString(), clip(a.Title, 500), clip(a.Snippet, 1000), a.URL,
		a.Source, publishedAt, category, a.RelevanceScore, string(a.Method),
		tagsJSON(a.Tags), dedupe.URLHash(a.URL))
	if err != nil {
		return false, fmt.Errorf("inserting article: %w", err)
	}
	return inserted(res)
}

// InsertArticlesBatch inserts each article in turn, counting duplicates as
// skipped. A failing row is logged and counted as skipped; the rest of the
// batch still runs.
func (s *Store) InsertArticlesBatch(ctx context.Context, articles []model.Article) (model.BatchStats, error) {
	var stats model.BatchStats
	for _, a := range articles {
		ok, err := s.InsertArticle(ctx, a)
		if err != nil {
			log.Printf("store: skipping article %s: %v", a.URL, err)
			stats.Skipped++
			continue
		}
		if ok {
			stats.Inserted++
		} else {
			stats.Skipped++
		}
	}
	return stats, nil
}

// InsertEvent stores one event. Events without a date violate the NOT NULL
// constraint and events already in the past have no value to the calendar,
// so both are counted as skipped before touching the database.
func (s *Store) InsertEvent(ctx context.Context, e model.Event, now time.Time) (bool, error) {
	if e.Date == "" || dates.InPast(e.Date, now) {
		return false, nil
	}

	source := e.SourcePlatform
	if source == "" {
		source = "research_agent"
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO events
			(id, title, description, url, url_hash, location, date, cost,
			 organizer, source, tags, relevance_score, scoring_method, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'draft')`,
		uuid.NewString(), clip(e.Name, 500), e.Description, e.URL,
		dedupe.URLHash(e.URL), location(e), e.Date, e.Price, e.Organizer,
		source, tagsJSON(e.Tags), e.RelevanceScore, string(e.Method))
	if err != nil {
		return false, fmt.Errorf("inserting event: %w", err)
	}
	return inserted(res)
}

func (s *Store) InsertEventsBatch(ctx context.Context, events []model.Event, now time.Time) (model.BatchStats, error) {
	var stats model.BatchStats
	for _, e := range events {
		ok, err := s.InsertEvent(ctx, e, now)
		if err != nil {
			log.Printf("store: skipping event %s: %v", e.URL, err)
			stats.Skipped++
			continue
		}
		if ok {
			stats.Inserted++
		} else {
			stats.Skipped++
		}
	}
	return stats, nil
}

// InsertGrant stores one grant opportunity. Priority derives from the fit
// score: high at 80 and above, medium at 60, low otherwise.
func (s *Store) InsertGrant(ctx context.Context, g model.Grant) (bool, error) {
	scope := g.Scope
	if scope == "" {
		scope = "UK"
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO grants
			(id, title, funder_name, funder_type, program_area, application_url,
			 url_hash, notes, deadline_date, fit_score, funder_advice,
			 geographic_scope, tags, priority, status,
			 min_viable_budget, max_potential_budget, scoring_method)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'researching', ?, ?, ?)`,
		uuid.NewString(), clip(g.Title, 500), g.FunderName, g.FunderType,
		g.ProgramArea, g.URL, dedupe.URLHash(g.URL), g.Description,
		nullable(g.Deadline), g.RelevanceScore, g.FitReasoning, scope,
		tagsJSON(g.Tags), GrantPriority(g.RelevanceScore),
		nullableFloat(g.AmountMin), nullableFloat(g.AmountMax), string(g.Method))
	if err != nil {
		return false, fmt.Errorf("inserting grant: %w", err)
	}
	return inserted(res)
}

func (s *Store) InsertGrantsBatch(ctx context.Context, grants []model.Grant) (model.BatchStats, error) {
	var stats model.BatchStats
	for _, g := range grants {
		ok, err := s.InsertGrant(ctx, g)
		if err != nil {
			log.Printf("store: skipping grant %s: %v", g.URL, err)
			stats.Skipped++
			continue
		}
		if ok {
			stats.Inserted++
		} else {
			stats.Skipped++
		}
	}
	return stats, nil
}

// GrantPriority maps a fit score to the triage label shown in digests.
func GrantPriority(score int) string {
	switch {
	case score >= 80:
		return "high"
	case score >= 60:
		return "medium"
	default:
		return "low"
	}
}

// LogRun records one discovery run for monitoring.
func (s *Store) LogRun(ctx context.Context, runType string, stats any, errs []string) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encoding run stats: %w", err)
	}
	errsJSON, err := json.Marshal(emptyIfNil(errs))
	if err != nil {
		return fmt.Errorf("encoding run errors: %w", err)
	}

	status := "completed"
	if len(errs) > 0 {
		status = "completed_with_errors"
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO discovery_logs (id, run_type, started_at, stats, errors, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), runType, time.Now().UTC().Format(time.RFC3339),
		string(statsJSON), string(errsJSON), status)
	if err != nil {
		return fmt.Errorf("logging run: %w", err)
	}
	return nil
}

// RunLog is one recorded discovery run.
type RunLog struct {
	ID        string `json:"id"`
	RunType   string `json:"run_type"`
	StartedAt string `json:"started_at"`
	Stats     string `json:"stats"`
	Errors    string `json:"errors"`
	Status    string `json:"status"`
}

// RecentRuns returns the latest discovery runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_type, started_at, stats, errors, status
		FROM discovery_logs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var logs []RunLog
	for rows.Next() {
		var l RunLog
		if err := rows.Scan(&l.ID, &l.RunType, &l.StartedAt, &l.Stats, &l.Errors, &l.Status); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// ArticleSummary is the slice of an article the intelligence sync needs.
type ArticleSummary struct {
	Title     string `json:"title"`
	Source    string `json:"source"`
	Category  string `json:"category"`
	CreatedAt string `json:"created_at"`
}

// RecentArticles returns articles created at or after since, newest first.
func (s *Store) RecentArticles(ctx context.Context, since time.Time, limit int) ([]ArticleSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT title, source_name, category, created_at
		FROM news_articles
		WHERE created_at >= ?
		ORDER BY created_at DESC LIMIT ?`,
		since.UTC().Format("2006-01-02 15:04:05"), limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent articles: %w", err)
	}
	defer rows.Close()

	var articles []ArticleSummary
	for rows.Next() {
		var a ArticleSummary
		if err := rows.Scan(&a.Title, &a.Source, &a.Category, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// EventSummary is the slice of an event the intelligence sync needs.
type EventSummary struct {
	Title     string `json:"title"`
	Date      string `json:"date"`
	Location  string `json:"location"`
	Organizer string `json:"organizer"`
}

// UpcomingEvents returns events dated within [from, to], soonest first.
func (s *Store) UpcomingEvents(ctx context.Context, from, to string, limit int) ([]EventSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT title, date, location, COALESCE(organizer, '')
		FROM events
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC LIMIT ?`, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("querying upcoming events: %w", err)
	}
	defer rows.Close()

	var events []EventSummary
	for rows.Next() {
		var e EventSummary
		if err := rows.Scan(&e.Title, &e.Date, &e.Location, &e.Organizer); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GrantSummary is the slice of a grant shown in the email digest.
type GrantSummary struct {
	Title        string `json:"title"`
	FunderName   string `json:"funder_name"`
	URL          string `json:"application_url"`
	Deadline     string `json:"deadline_date,omitempty"`
	FitScore     int    `json:"fit_score"`
	FunderAdvice string `json:"funder_advice,omitempty"`
	Priority     string `json:"priority"`
}

// RecentGrants returns still-researching grants at or above minScore,
// newest first.
func (s *Store) RecentGrants(ctx context.Context, minScore, limit int) ([]GrantSummary, error) {
	return s.queryGrants(ctx, `
		SELECT title, COALESCE(funder_name, ''), application_url,
		       COALESCE(deadline_date, ''), fit_score,
		       COALESCE(funder_advice, ''), priority
		FROM grants
		WHERE status = 'researching' AND fit_score >= ?
		ORDER BY created_at DESC LIMIT ?`, minScore, limit)
}

// TopPriorityGrants returns the open grants with the highest fit scores.
func (s *Store) TopPriorityGrants(ctx context.Context, limit int) ([]GrantSummary, error) {
	return s.queryGrants(ctx, `
		SELECT title, COALESCE(funder_name, ''), application_url,
		       COALESCE(deadline_date, ''), fit_score,
		       COALESCE(funder_advice, ''), priority
		FROM grants
		WHERE status NOT IN ('declined', 'submitted')
		ORDER BY fit_score DESC LIMIT ?`, limit)
}

func (s *Store) queryGrants(ctx context.Context, query string, args ...any) ([]GrantSummary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying grants: %w", err)
	}
	defer rows.Close()

	var grants []GrantSummary
	for rows.Next() {
		var g GrantSummary
		if err := rows.Scan(&g.Title, &g.FunderName, &g.URL, &g.Deadline,
			&g.FitScore, &g.FunderAdvice, &g.Priority); err != nil {
			return nil, fmt.Errorf("scanning grant: %w", err)
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// IntelligenceEntry is one keyed summary the assistant reads to stay aware of
// what the agent has discovered. Re-syncing the same type and service
// replaces the previous entry.
type IntelligenceEntry struct {
	Type           string         `json:"intelligence_type"`
	Service        string         `json:"service"`
	Endpoint       string         `json:"endpoint"`
	Data           map[string]any `json:"data"`
	Summary        string         `json:"summary"`
	KeyInsights    []string       `json:"key_insights"`
	RelevanceScore float64        `json:"relevance_score"`
	Priority       string         `json:"priority"`
	ExpiresAt      time.Time      `json:"expires_at"`
}

// UpsertIntelligence inserts or replaces the entry keyed by type and service.
func (s *Store) UpsertIntelligence(ctx context.Context, entry IntelligenceEntry) error {
	dataJSON, err := json.Marshal(entry.Data)
	if err != nil {
		return fmt.Errorf("encoding intelligence data: %w", err)
	}
	insightsJSON, err := json.Marshal(emptyIfNil(entry.KeyInsights))
	if err != nil {
		return fmt.Errorf("encoding insights: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO intelligence
			(intelligence_type, service, endpoint, data, summary, key_insights,
			 relevance_score, priority, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (intelligence_type, service) DO UPDATE SET
			endpoint = excluded.endpoint,
			data = excluded.data,
			summary = excluded.summary,
			key_insights = excluded.key_insights,
			relevance_score = excluded.relevance_score,
			priority = excluded.priority,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`,
		entry.Type, entry.Service, entry.Endpoint, string(dataJSON),
		entry.Summary, string(insightsJSON), entry.RelevanceScore,
		entry.Priority, entry.ExpiresAt.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upserting intelligence: %w", err)
	}
	return nil
}

func location(e model.Event) string {
	var parts []string
	if e.Venue != "" {
		parts = append(parts, e.Venue)
	}
	if e.City != "" {
		parts = append(parts, e.City)
	}
	if len(parts) == 0 {
		return "Location TBA"
	}
	return strings.Join(parts, ", ")
}

func inserted(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func tagsJSON(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// emptyIfNil normalizes a nil slice to empty so it encodes as [].
func emptyIfNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableFloat(f float64) any {
	if f == 0 {
		return nil
	}
	return f
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
