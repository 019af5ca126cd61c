// Package china scrapes press releases from the Chinese State Council policy
// feed at www.gov.cn. Listing pages yield title/url/date stubs; each article
// page is then visited for the document number and body content.
package china

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/presswatch/presswatch/internal/infrastructure/logging"
	"github.com/presswatch/presswatch/internal/infrastructure/monitoring"
	"github.com/presswatch/presswatch/internal/shared/types"
)

// PageFetcher loads a URL and returns the rendered page HTML.
type PageFetcher interface {
	HTML(ctx context.Context, url string) (string, error)
}

// Options tunes scrape pacing and extraction limits.
type Options struct {
	// MaxPages caps how many listing pages a single scrape may visit.
	MaxPages int
	// PageDelay is the settle delay after loading a listing page.
	PageDelay time.Duration
	// ArticleDelay is the respectful delay between article requests.
	ArticleDelay time.Duration
	// MaxContentChars caps extracted article content length in runes.
	MaxContentChars int
	// Method is the reported scrape method, e.g. "Browser Automation".
	Method string
}

// DefaultOptions returns scrape pacing matching the production deployment.
func DefaultOptions() Options {
	return Options{
		MaxPages:        10,
		PageDelay:       2 * time.Second,
		ArticleDelay:    500 * time.Millisecond,
		MaxContentChars: 10000,
		Method:          "Browser Automation",
	}
}

// Scraper implements scraper.Scraper for China.
type Scraper struct {
	fetcher PageFetcher
	log     *logging.Logger
	metrics *monitoring.Metrics
	opts    Options
}

// New creates a China scraper over the given page fetcher.
func New(fetcher PageFetcher, log *logging.Logger, metrics *monitoring.Metrics, opts Options) *Scraper {
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultOptions().MaxPages
	}
	if opts.MaxContentChars <= 0 {
		opts.MaxContentChars = DefaultOptions().MaxContentChars
	}
	if opts.Method == "" {
		opts.Method = DefaultOptions().Method
	}
	return &Scraper{fetcher: fetcher, log: log, metrics: metrics, opts: opts}
}

// Country returns the route identifier.
func (s *Scraper) Country() string { return "china" }

// DisplayName returns the reported country name.
func (s *Scraper) DisplayName() string { return "China" }

// Method returns the reported scrape method.
func (s *Scraper) Method() string { return s.opts.Method }

// Scrape visits up to pages listing pages and their articles. A listing page
// that fails to load is skipped; an article failure aborts the scrape.
func (s *Scraper) Scrape(ctx context.Context, pages int) ([]types.PressRelease, error) {
	if pages < 1 {
		pages = 1
	}
	if pages > s.opts.MaxPages {
		pages = s.opts.MaxPages
	}

	start := time.Now()
	s.log.Info("starting China scrape", zap.Int("pages", pages))

	var all []types.PressRelease
	for page := 1; page <= pages; page++ {
		listURL := ListPageURL(page)
		pageStart := time.Now()

		listHTML, err := s.fetcher.HTML(ctx, listURL)
		if err != nil {
			s.log.Error("failed to load listing page",
				zap.String("url", listURL), zap.Error(err))
			continue
		}
		s.recordPage("list")
		s.log.Info("listing page loaded",
			zap.Int("page", page),
			zap.Duration("took", time.Since(pageStart)))

		if err := s.sleep(ctx, s.opts.PageDelay); err != nil {
			return all, err
		}

		stubs, err := ParseListPage(listHTML, listURL)
		if err != nil {
			s.log.Error("failed to parse listing page",
				zap.String("url", listURL), zap.Error(err))
			continue
		}
		if len(stubs) == 0 {
			s.log.Warn("listing page had no articles", zap.String("url", listURL))
			continue
		}
		s.log.Info("articles found on listing page",
			zap.Int("page", page), zap.Int("count", len(stubs)))

		for _, stub := range stubs {
			s.log.Info("fetching article details", zap.String("title", stub.Title))

			articleHTML, err := s.fetcher.HTML(ctx, stub.URL)
			if err != nil {
				return nil, fmt.Errorf("load article %s: %w", stub.URL, err)
			}
			s.recordPage("article")

			details, err := ParseArticle(articleHTML, s.opts.MaxContentChars)
			if err != nil {
				return nil, fmt.Errorf("parse article %s: %w", stub.URL, err)
			}

			stub.DocNumber = details.DocNumber
			stub.Content = details.Content
			stub.ScrapedAt = time.Now().UTC()
			all = append(all, stub)

			if err := s.sleep(ctx, s.opts.ArticleDelay); err != nil {
				return all, err
			}
		}
	}

	s.log.Info("China scrape finished",
		zap.Int("releases", len(all)),
		zap.Duration("total", time.Since(start)))
	return all, nil
}

func (s *Scraper) recordPage(kind string) {
	if s.metrics != nil {
		s.metrics.RecordPage(s.Country(), kind)
	}
}

func (s *Scraper) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
