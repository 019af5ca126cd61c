// Package service runs scrape jobs end to end: scrape, record the job
// outcome, archive new releases, analyze them, and send notifications.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/presswatch/presswatch/internal/analyzer"
	"github.com/presswatch/presswatch/internal/domain/job"
	"github.com/presswatch/presswatch/internal/infrastructure/logging"
	"github.com/presswatch/presswatch/internal/infrastructure/monitoring"
	"github.com/presswatch/presswatch/internal/notify"
	"github.com/presswatch/presswatch/internal/scraper"
	"github.com/presswatch/presswatch/internal/shared/types"
	"github.com/presswatch/presswatch/internal/store"
)

// noDataMessage matches the user-visible failure text for empty scrapes.
const noDataMessage = "Scraper finished but returned no data. The source website may have changed."

// scrapeTimeout bounds a single background scrape run.
const scrapeTimeout = 30 * time.Minute

// Runner executes scrape jobs in the background.
type Runner struct {
	registry *scraper.Registry
	jobs     *job.Manager
	store    *store.Store       // optional
	analyzer *analyzer.Analyzer // optional
	mailer   *notify.Mailer     // optional
	log      *logging.Logger
	metrics  *monitoring.Metrics
}

// NewRunner creates a runner. Store, analyzer, and mailer may be nil; the
// corresponding post-processing steps are skipped.
func NewRunner(registry *scraper.Registry, jobs *job.Manager, log *logging.Logger, metrics *monitoring.Metrics) *Runner {
	return &Runner{registry: registry, jobs: jobs, log: log, metrics: metrics}
}

// WithStore adds release archiving.
func (r *Runner) WithStore(s *store.Store) *Runner {
	r.store = s
	return r
}

// WithAnalyzer adds article analysis for newly archived releases.
func (r *Runner) WithAnalyzer(a *analyzer.Analyzer) *Runner {
	r.analyzer = a
	return r
}

// WithMailer adds email notification for newly archived releases.
func (r *Runner) WithMailer(m *notify.Mailer) *Runner {
	r.mailer = m
	return r
}

// Submit creates a job for country and starts the scrape in the background.
// The returned job is the pending acknowledgement.
func (r *Runner) Submit(country string, pages int) (types.Job, error) {
	s, err := r.registry.Get(country)
	if err != nil {
		return types.Job{}, err
	}

	j := r.jobs.Create(country)
	r.log.Info("job created and scheduled for background execution",
		zap.String("job_id", j.ID), zap.String("country", country), zap.Int("pages", pages))

	go r.run(j.ID, s, pages)
	return j, nil
}

// RunNow executes a scrape synchronously under a fresh job. Used by the
// scheduler, which has no request to answer.
func (r *Runner) RunNow(country string, pages int) error {
	s, err := r.registry.Get(country)
	if err != nil {
		return err
	}
	j := r.jobs.Create(country)
	r.run(j.ID, s, pages)
	return nil
}

func (r *Runner) run(jobID string, s scraper.Scraper, pages int) {
	// Jobs outlive the triggering request.
	ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
	defer cancel()

	start := time.Now()
	r.log.Info("background scrape started",
		zap.String("job_id", jobID), zap.Int("pages", pages))

	data, err := s.Scrape(ctx, pages)
	if err != nil {
		r.log.Error("background scrape failed",
			zap.String("job_id", jobID), zap.Error(err))
		r.jobs.Fail(jobID, err.Error())
		r.recordScrape(s.Country(), "error", start, 0)
		return
	}
	if len(data) == 0 {
		r.log.Warn("background scrape returned no data", zap.String("job_id", jobID))
		r.jobs.Fail(jobID, noDataMessage)
		r.recordScrape(s.Country(), "empty", start, 0)
		return
	}

	r.jobs.Complete(jobID, &types.ScrapeResult{
		Country: s.DisplayName(),
		Method:  s.Method(),
		Count:   len(data),
		Data:    data,
	})
	r.recordScrape(s.Country(), "ok", start, len(data))
	r.log.Info("background scrape completed successfully",
		zap.String("job_id", jobID), zap.Int("releases", len(data)))

	r.postProcess(ctx, data)
}

// postProcess archives the batch, analyzes what is new, and notifies.
func (r *Runner) postProcess(ctx context.Context, data []types.PressRelease) {
	if r.store == nil {
		return
	}

	fresh, err := r.store.SaveBatch(ctx, data)
	if err != nil {
		r.log.Error("failed to archive releases", zap.Error(err))
		return
	}
	if count, err := r.store.Count(ctx); err == nil && r.metrics != nil {
		r.metrics.ReleasesStored.Set(float64(count))
	}
	if len(fresh) == 0 {
		r.log.Info("no new releases after dedup")
		return
	}
	r.log.Info("new releases archived", zap.Int("count", len(fresh)))

	if r.analyzer != nil {
		for _, release := range fresh {
			analysis, relevant, err := r.analyzer.Analyze(ctx, release)
			if err != nil {
				r.log.Warn("analysis failed",
					zap.String("title", release.Title), zap.Error(err))
				continue
			}
			if relevant {
				r.log.Info("relevant release",
					zap.String("headline", analysis.Headline),
					zap.Int("relevance", analysis.Relevance),
					zap.Strings("categories", analysis.Categories))
			}
		}
	}

	if r.mailer != nil {
		if err := r.mailer.SendReleases(ctx, fresh); err != nil {
			r.log.Error("failed to send notification email", zap.Error(err))
		}
	}
}

func (r *Runner) recordScrape(country, status string, start time.Time, releases int) {
	if r.metrics != nil {
		r.metrics.RecordScrape(country, status, time.Since(start), releases)
	}
}
