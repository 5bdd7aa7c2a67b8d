package model

// ScoringMethod records which path produced a candidate's final score.
// Exactly one method applies per candidate; scores are never averaged.
type ScoringMethod string

const (
	ScoredByKeyword  ScoringMethod = "keyword"
	ScoredByOracle   ScoringMethod = "oracle"
	ScoredByFallback ScoringMethod = "keyword-fallback"
)

// Candidate is the common contract shared by the three discovered variants.
// It exists so the deduplicator and ranking code can work over any stream.
type Candidate interface {
	CandidateURL() string
	Score() int
	CandidateTags() []string
}

// Article is a scored news candidate awaiting moderation.
type Article struct {
	Title          string        `json:"title"`
	URL            string        `json:"url"`
	Source         string        `json:"source"`
	Snippet        string        `json:"snippet"`
	PublishedDate  string        `json:"published_date,omitempty"`
	RelevanceScore int           `json:"relevance_score"`
	Category       string        `json:"category"`
	Tags           []string      `json:"tags,omitempty"`
	Reasoning      string        `json:"reasoning,omitempty"`
	Method         ScoringMethod `json:"scoring_method"`
}

func (a Article) CandidateURL() string    { return a.URL }
func (a Article) Score() int              { return a.RelevanceScore }
func (a Article) CandidateTags() []string { return a.Tags }

// Event is a scored event candidate. Date is ISO YYYY-MM-DD when resolved;
// events without a resolvable date never reach persistence.
type Event struct {
	Name           string        `json:"name"`
	URL            string        `json:"url"`
	Venue          string        `json:"venue,omitempty"`
	City           string        `json:"city,omitempty"`
	Date           string        `json:"date,omitempty"`
	Price          string        `json:"price,omitempty"`
	Description    string        `json:"description,omitempty"`
	Organizer      string        `json:"organizer,omitempty"`
	SourcePlatform string        `json:"source_platform,omitempty"`
	RelevanceScore int           `json:"relevance_score"`
	EventType      string        `json:"event_type"`
	Tags           []string      `json:"tags,omitempty"`
	Method         ScoringMethod `json:"scoring_method"`
}

func (e Event) CandidateURL() string    { return e.URL }
func (e Event) Score() int              { return e.RelevanceScore }
func (e Event) CandidateTags() []string { return e.Tags }

// Grant is a scored grant-funding candidate.
type Grant struct {
	Title          string        `json:"title"`
	FunderName     string        `json:"funder_name"`
	URL            string        `json:"url"`
	Description    string        `json:"description"`
	Deadline       string        `json:"deadline,omitempty"`
	AmountMin      float64       `json:"amount_min,omitempty"`
	AmountMax      float64       `json:"amount_max,omitempty"`
	FunderType     string        `json:"funder_type"`
	ProgramArea    string        `json:"program_area"`
	RelevanceScore int           `json:"relevance_score"`
	FitReasoning   string        `json:"fit_reasoning,omitempty"`
	Scope          string        `json:"geographic_scope"`
	Tags           []string      `json:"tags,omitempty"`
	Method         ScoringMethod `json:"scoring_method"`
}

func (g Grant) CandidateURL() string    { return g.URL }
func (g Grant) Score() int              { return g.RelevanceScore }
func (g Grant) CandidateTags() []string { return g.Tags }

// BatchStats summarizes a persistence batch.
type BatchStats struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// RunStats is the per-pipeline portion of a run report.
type RunStats struct {
	Discovered int `json:"discovered"`
	Inserted   int `json:"inserted"`
	Skipped    int `json:"skipped"`
}

// RunReport is what a coordinator run always produces, partial failures
// included. Errors carries one entry per failed stage; a silent empty result
// without an error entry is a bug.
type RunReport struct {
	Timestamp string          `json:"timestamp"`
	News      RunStats        `json:"news,omitempty"`
	Events    RunStats        `json:"events,omitempty"`
	Grants    RunStats        `json:"grants,omitempty"`
	Sync      map[string]bool `json:"sync,omitempty"`
	Errors    []string        `json:"errors"`
}
