// Package sched schedules the discovery pipelines on London time, the
// timezone the community's events and publications run on.
package sched

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/blkoutuk/research-agent/internal/agent"
)

// Scheduler wraps a cron runner around the coordinator. Every job logs its
// report; failures are contained within a run and never stop the schedule.
type Scheduler struct {
	cron        *cron.Cron
	coordinator *agent.Coordinator
}

func New(coordinator *agent.Coordinator) (*Scheduler, error) {
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		return nil, fmt.Errorf("loading London timezone: %w", err)
	}
	return &Scheduler{
		cron:        cron.New(cron.WithLocation(london)),
		coordinator: coordinator,
	}, nil
}

// Start registers the jobs and begins the schedule:
// daily discovery at 06:00, an evening events check at 18:00, weekly deep
// research Sunday 03:00, and grant research Monday 09:00 and Wednesday 14:00.
func (s *Scheduler) Start(ctx context.Context) error {
	jobs := []struct {
		name string
		spec string
		run  func()
	}{
		{"daily discovery", "0 6 * * *", func() {
			log.Printf("scheduler: daily discovery: %+v", s.coordinator.RunDaily(ctx))
		}},
		{"evening events check", "0 18 * * *", func() {
			log.Printf("scheduler: evening events: %+v", s.coordinator.RunEvents(ctx))
		}},
		{"weekly deep research", "0 3 * * SUN", func() {
			log.Printf("scheduler: weekly deep research: %+v", s.coordinator.RunWeeklyDeep(ctx))
		}},
		{"weekly grant research", "0 9 * * MON", func() {
			log.Printf("scheduler: grant research: %+v", s.coordinator.RunGrants(ctx))
		}},
		{"midweek grant research", "0 14 * * WED", func() {
			log.Printf("scheduler: grant research: %+v", s.coordinator.RunGrants(ctx))
		}},
	}

	for _, job := range jobs {
		if _, err := s.cron.AddFunc(job.spec, job.run); err != nil {
			return fmt.Errorf("scheduling %s: %w", job.name, err)
		}
		log.Printf("scheduler: registered %s (%s)", job.name, job.spec)
	}

	s.cron.Start()
	log.Printf("scheduler: started")
	return nil
}

// Stop halts the schedule, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Printf("scheduler: stopped")
}
