// Package server assembles the press release monitor: configuration, scraper
// stack, job tracking, scheduler, and the Gin HTTP surface.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/presswatch/presswatch/internal/analyzer"
	apihttp "github.com/presswatch/presswatch/internal/api/http"
	"github.com/presswatch/presswatch/internal/api/middleware"
	"github.com/presswatch/presswatch/internal/api/ws"
	"github.com/presswatch/presswatch/internal/domain/job"
	"github.com/presswatch/presswatch/internal/infrastructure/config"
	"github.com/presswatch/presswatch/internal/infrastructure/logging"
	"github.com/presswatch/presswatch/internal/infrastructure/monitoring"
	"github.com/presswatch/presswatch/internal/notify"
	"github.com/presswatch/presswatch/internal/scheduler"
	"github.com/presswatch/presswatch/internal/scraper"
	"github.com/presswatch/presswatch/internal/scraper/browser"
	"github.com/presswatch/presswatch/internal/scraper/china"
	"github.com/presswatch/presswatch/internal/scraper/fetch"
	"github.com/presswatch/presswatch/internal/service"
	"github.com/presswatch/presswatch/internal/store"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and its dependencies.
type Server struct {
	cfg       *config.Config
	log       *logging.Logger
	router    *gin.Engine
	http      *http.Server
	browser   *browser.Session // nil in static mode
	store     *store.Store     // nil when archive disabled
	scheduler *scheduler.Scheduler
}

// New builds a fully wired server from configuration.
func New(cfg *config.Config, log *logging.Logger) (*Server, error) {
	metrics := monitoring.NewMetrics()

	s := &Server{cfg: cfg, log: log}

	// Release archive. Disabled when STORE_PATH is empty.
	if cfg.Store.Path != "" {
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open release store: %w", err)
		}
		s.store = st
	}

	// Page fetcher: shared Chromium session, or plain HTTP in static mode.
	var fetcher china.PageFetcher
	if cfg.Scraper.Mode == "static" {
		fc := fetch.DefaultConfig()
		fc.UserAgent = cfg.Scraper.UserAgent
		fc.Timeout = time.Duration(cfg.Scraper.NavTimeoutSec) * time.Second
		fetcher = fetch.NewClient(fc)
		log.Info("using static HTTP fetcher")
	} else {
		bc := browser.DefaultConfig()
		bc.Bin = cfg.Scraper.BrowserBin
		bc.Headless = cfg.Scraper.Headless
		bc.UserAgent = cfg.Scraper.UserAgent
		bc.NavTimeout = time.Duration(cfg.Scraper.NavTimeoutSec) * time.Second
		s.browser = browser.NewSession(bc, log)
		fetcher = s.browser
		log.Info("using browser automation fetcher",
			zap.Bool("headless", cfg.Scraper.Headless))
	}

	registry := scraper.NewRegistry()
	registry.Register(china.New(fetcher, log, metrics, china.Options{
		MaxPages:        cfg.Scraper.MaxPages,
		PageDelay:       time.Duration(cfg.Scraper.PageDelayMs) * time.Millisecond,
		ArticleDelay:    time.Duration(cfg.Scraper.ArticleDelayMs) * time.Millisecond,
		MaxContentChars: cfg.Scraper.MaxContentChars,
	}))

	jobs := job.NewManager().WithMetrics(metrics)
	runner := service.NewRunner(registry, jobs, log, metrics)
	if s.store != nil {
		runner.WithStore(s.store)
	}
	if cfg.Analyzer.APIKey != "" {
		model, err := analyzer.NewGemini(context.Background(), cfg.Analyzer.APIKey, cfg.Analyzer.Model)
		if err != nil {
			return nil, fmt.Errorf("init analyzer: %w", err)
		}
		runner.WithAnalyzer(analyzer.New(model, cfg.Analyzer.MinRelevance))
		log.Info("article analysis enabled", zap.String("model", cfg.Analyzer.Model))
	}
	if cfg.Email.Enabled {
		mailer, err := notify.NewMailer(notify.Config{
			Host:       cfg.Email.Host,
			Port:       cfg.Email.Port,
			Sender:     cfg.Email.Sender,
			Password:   cfg.Email.Password,
			Recipients: cfg.Email.Recipients,
			Subject:    cfg.Email.Subject,
		}, metrics)
		if err != nil {
			return nil, fmt.Errorf("init mailer: %w", err)
		}
		runner.WithMailer(mailer)
		log.Info("email notifications enabled",
			zap.Int("recipients", len(cfg.Email.Recipients)))
	}

	s.scheduler = scheduler.New(log)
	if cfg.Scheduler.Enabled {
		for _, country := range registry.Countries() {
			if err := s.scheduler.AddScrapeJob(cfg.Scheduler.CronSpec, country, cfg.Scheduler.CronPages, runner); err != nil {
				return nil, err
			}
		}
	}

	handlers := apihttp.NewHandlers(runner, jobs, registry, s.store).WithScheduler(s.scheduler)
	s.router = buildRouter(cfg, metrics, handlers, ws.NewHandler(jobs, log, metrics), registry)
	s.http = &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
		Handler: s.router,
	}
	return s, nil
}

func buildRouter(cfg *config.Config, metrics *monitoring.Metrics, handlers *apihttp.Handlers, wsHandler *ws.Handler, registry *scraper.Registry) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}
	router.Use(monitoring.Middleware(metrics))

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/status/:job_id", handlers.JobStatus)
	router.GET("/countries", handlers.Countries)
	router.GET("/releases", handlers.Releases)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/stream", wsHandler.HandleConnection)

	// One scrape route per registered country, e.g. POST /china/scrape.
	for _, country := range registry.Countries() {
		router.POST("/"+country+"/scrape", handlers.TriggerScrape(country))
	}
	return router
}

// Run serves HTTP until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	s.scheduler.Start()
	s.log.Info("server listening", zap.String("addr", s.http.Addr))

	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and releases resources.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	err := s.http.Shutdown(shutdownCtx)
	s.scheduler.Stop()

	if s.browser != nil {
		if cerr := s.browser.Close(); cerr != nil {
			s.log.Warn("browser shutdown failed", zap.Error(cerr))
		}
	}
	if s.store != nil {
		if cerr := s.store.Close(); cerr != nil {
			s.log.Warn("store shutdown failed", zap.Error(cerr))
		}
	}
	return err
}

// Router exposes the Gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
