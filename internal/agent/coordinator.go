package agent

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/blkoutuk/research-agent/internal/core/model"
)

// Coordinator runs the discovery pipelines in sequence and always produces a
// report, partial failures included. A pipeline failure is recorded in the
// report's Errors and the remaining pipelines still run.
type Coordinator struct {
	news   *NewsAgent
	events *EventsAgent
	grants *GrantsAgent
	sync   *IntelligenceSync
}

func NewCoordinator(news *NewsAgent, events *EventsAgent, grants *GrantsAgent, sync *IntelligenceSync) *Coordinator {
	return &Coordinator{news: news, events: events, grants: grants, sync: sync}
}

// RunDaily runs news discovery over the last day plus events discovery, then
// refreshes the intelligence summaries.
func (c *Coordinator) RunDaily(ctx context.Context) model.RunReport {
	log.Printf("coordinator: starting daily discovery")
	report := newReport()

	stats, err := c.news.ResearchAndSave(ctx, model.RangeDay)
	report.News = stats
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("news research failed: %v", err))
	}

	stats, err = c.events.DiscoverAndSave(ctx)
	report.Events = stats
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("events discovery failed: %v", err))
	}

	c.runSync(ctx, &report)
	log.Printf("coordinator: daily discovery complete: %+v", report)
	return report
}

// RunNews runs only the news pipeline over the last week.
func (c *Coordinator) RunNews(ctx context.Context) model.RunReport {
	report := newReport()
	stats, err := c.news.ResearchAndSave(ctx, model.RangeWeek)
	report.News = stats
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("news research failed: %v", err))
	}
	return report
}

// RunEvents runs only the events pipeline.
func (c *Coordinator) RunEvents(ctx context.Context) model.RunReport {
	report := newReport()
	stats, err := c.events.DiscoverAndSave(ctx)
	report.Events = stats
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("events discovery failed: %v", err))
	}
	return report
}

// RunWeeklyDeep runs news discovery over a month-long window, catching what
// the daily runs missed.
func (c *Coordinator) RunWeeklyDeep(ctx context.Context) model.RunReport {
	log.Printf("coordinator: starting weekly deep research")
	report := newReport()

	stats, err := c.news.ResearchAndSave(ctx, model.RangeMonth)
	report.News = stats
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("deep research failed: %v", err))
	}

	c.runSync(ctx, &report)
	return report
}

// RunGrants runs grant research and sends the digest email.
func (c *Coordinator) RunGrants(ctx context.Context) model.RunReport {
	log.Printf("coordinator: starting grant research")
	report := newReport()

	stats, err := c.grants.RunResearch(ctx)
	report.Grants = stats
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("grant research failed: %v", err))
	}
	return report
}

func (c *Coordinator) runSync(ctx context.Context, report *model.RunReport) {
	if c.sync == nil {
		return
	}
	synced, errs := c.sync.SyncDiscoveries(ctx, *report)
	report.Sync = synced
	report.Errors = append(report.Errors, errs...)
}

func newReport() model.RunReport {
	return model.RunReport{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Errors:    []string{},
	}
}

// errStrings converts an optional error into the run-log error list.
func errStrings(err error) []string {
	if err == nil {
		return nil
	}
	return []string{err.Error()}
}
