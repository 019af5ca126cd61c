// Package scheduler runs recurring scrapes on cron schedules. All schedules
// are evaluated in UTC.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/presswatch/presswatch/internal/infrastructure/logging"
)

// Runner executes a scrape for a country.
type Runner interface {
	RunNow(country string, pages int) error
}

// Scheduler wraps a cron runner for scheduled scrapes.
type Scheduler struct {
	cron *cron.Cron
	log  *logging.Logger
}

// New creates a stopped scheduler.
func New(log *logging.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC)),
		log:  log,
	}
}

// AddScrapeJob schedules a recurring scrape. Spec uses standard cron syntax,
// e.g. "0 2 * * *" for 02:00 UTC daily.
func (s *Scheduler) AddScrapeJob(spec, country string, pages int, runner Runner) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.log.Info("starting scheduled scrape",
			zap.String("country", country), zap.Int("pages", pages))

		if err := runner.RunNow(country, pages); err != nil {
			s.log.Error("scheduled scrape failed",
				zap.String("country", country), zap.Error(err))
			return
		}
		s.log.Info("scheduled scrape finished", zap.String("country", country))
	})
	if err != nil {
		return fmt.Errorf("schedule scrape for %s (%q): %w", country, spec, err)
	}

	s.log.Info("scrape scheduled",
		zap.String("country", country), zap.String("cron", spec))
	return nil
}

// Start begins running scheduled jobs in their own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Entries returns the number of scheduled jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
