// Package browser drives a headless Chromium instance through go-rod and
// exposes it as a page fetcher for the scrapers. The launch flags match what
// the scrapers need inside a container: no sandbox, no /dev/shm reliance.
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/presswatch/presswatch/internal/infrastructure/logging"
)

// Config holds browser launch and page configuration.
type Config struct {
	Bin            string
	Headless       bool
	UserAgent      string
	Locale         string
	AcceptLanguage string
	ViewportWidth  int
	ViewportHeight int
	NavTimeout     time.Duration
}

// DefaultConfig returns the settings used in the container deployment.
func DefaultConfig() Config {
	return Config{
		Headless:       true,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Locale:         "zh-CN",
		AcceptLanguage: "zh-CN,zh;q=0.9,en;q=0.8",
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		NavTimeout:     30 * time.Second,
	}
}

// launchFlags are required for Chromium inside Docker.
var launchFlags = []string{
	"no-sandbox",
	"disable-setuid-sandbox",
	"disable-dev-shm-usage",
	"disable-gpu",
	"disable-web-security",
}

// Session owns a Chromium instance shared by all scrape runs.
type Session struct {
	cfg Config
	log *logging.Logger

	mu      sync.Mutex
	browser *rod.Browser
}

// NewSession creates an unstarted browser session.
func NewSession(cfg Config, log *logging.Logger) *Session {
	if cfg.NavTimeout == 0 {
		cfg.NavTimeout = DefaultConfig().NavTimeout
	}
	if cfg.ViewportWidth == 0 {
		cfg.ViewportWidth = DefaultConfig().ViewportWidth
	}
	if cfg.ViewportHeight == 0 {
		cfg.ViewportHeight = DefaultConfig().ViewportHeight
	}
	return &Session{cfg: cfg, log: log}
}

// Start launches Chromium and connects to it. Safe to call repeatedly: a
// stale connection is detected and replaced.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked(ctx)
}

func (s *Session) startLocked(ctx context.Context) error {
	if s.browser != nil {
		if _, err := s.browser.Version(); err == nil {
			return nil
		}
		s.log.Warn("stale browser connection detected, relaunching")
		_ = s.browser.Close()
		s.browser = nil
	}

	start := time.Now()
	launch := launcher.New().Headless(s.cfg.Headless)
	if s.cfg.Bin != "" {
		launch = launch.Bin(s.cfg.Bin)
	}
	for _, f := range launchFlags {
		launch = launch.Set(flags.Flag(f))
	}
	launch = launch.Set("disable-blink-features", "AutomationControlled")

	controlURL, err := launch.Launch()
	if err != nil {
		return fmt.Errorf("launch chromium: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to chromium: %w", err)
	}

	s.browser = browser
	s.log.Info("browser launched", zap.Duration("took", time.Since(start)))
	return nil
}

// HTML navigates to url in a fresh page and returns the rendered HTML.
func (s *Session) HTML(ctx context.Context, url string) (string, error) {
	s.mu.Lock()
	if err := s.startLocked(ctx); err != nil {
		s.mu.Unlock()
		return "", err
	}
	browser := s.browser
	s.mu.Unlock()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return "", fmt.Errorf("create page: %w", err)
	}
	defer func() { _ = page.Close() }()

	page = page.Context(ctx).Timeout(s.cfg.NavTimeout)

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      s.cfg.UserAgent,
		AcceptLanguage: s.cfg.AcceptLanguage,
	}); err != nil {
		return "", fmt.Errorf("set user agent: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.cfg.ViewportWidth,
		Height:            s.cfg.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		return "", fmt.Errorf("set viewport: %w", err)
	}

	if err := page.Navigate(url); err != nil {
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := page.WaitDOMStable(300*time.Millisecond, 0); err != nil {
		// DOM never settled; take the page as-is.
		s.log.Warn("page did not stabilize", zap.String("url", url), zap.Error(err))
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("read page html: %w", err)
	}
	return html, nil
}

// Close shuts down the browser.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser == nil {
		return nil
	}
	err := s.browser.Close()
	s.browser = nil
	return err
}
