package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Display   DisplayConfig
	Scraper   ScraperConfig
	Scheduler SchedulerConfig
	Store     StoreConfig
	Analyzer  AnalyzerConfig
	Email     EmailConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// DisplayConfig holds virtual display and VNC configuration used by the
// container launcher.
type DisplayConfig struct {
	Display  string `envconfig:"DISPLAY_NUM" default:":1"`
	Geometry string `envconfig:"DISPLAY_GEOMETRY" default:"1920x1080x24"`
	VNCPort  int    `envconfig:"VNC_PORT" default:"5901"`
}

// ScraperConfig holds browser scraping configuration.
type ScraperConfig struct {
	Mode            string `envconfig:"SCRAPER_MODE" default:"browser"` // "browser" or "static"
	BrowserBin      string `envconfig:"BROWSER_BIN" default:""`
	Headless        bool   `envconfig:"SCRAPER_HEADLESS" default:"true"`
	NavTimeoutSec   int    `envconfig:"SCRAPER_NAV_TIMEOUT" default:"30"`
	PageDelayMs     int    `envconfig:"SCRAPER_PAGE_DELAY_MS" default:"2000"`
	ArticleDelayMs  int    `envconfig:"SCRAPER_ARTICLE_DELAY_MS" default:"500"`
	MaxContentChars int    `envconfig:"SCRAPER_MAX_CONTENT" default:"10000"`
	MaxPages        int    `envconfig:"SCRAPER_MAX_PAGES" default:"10"`
	UserAgent       string `envconfig:"SCRAPER_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"`
}

// SchedulerConfig holds cron scheduling configuration.
type SchedulerConfig struct {
	Enabled   bool   `envconfig:"SCHEDULER_ENABLED" default:"true"`
	CronSpec  string `envconfig:"SCRAPE_CRON" default:"0 2 * * *"`
	CronPages int    `envconfig:"SCRAPE_CRON_PAGES" default:"1"`
}

// StoreConfig holds release archive configuration.
type StoreConfig struct {
	Path string `envconfig:"STORE_PATH" default:"/data/releases.db"`
}

// AnalyzerConfig holds article analysis configuration.
type AnalyzerConfig struct {
	APIKey       string `envconfig:"GEMINI_API_KEY" default:""`
	Model        string `envconfig:"ANALYZER_MODEL" default:"gemini-2.0-flash"`
	MinRelevance int    `envconfig:"ANALYZER_MIN_RELEVANCE" default:"4"`
}

// EmailConfig holds SMTP notification configuration.
type EmailConfig struct {
	Enabled    bool     `envconfig:"EMAIL_ENABLED" default:"false"`
	Host       string   `envconfig:"EMAIL_HOST" default:"smtp.gmail.com"`
	Port       int      `envconfig:"EMAIL_PORT" default:"465"`
	Sender     string   `envconfig:"EMAIL_SENDER" default:""`
	Password   string   `envconfig:"EMAIL_PASSWORD" default:""`
	Recipients []string `envconfig:"EMAIL_RECIPIENTS" default:""`
	Subject    string   `envconfig:"EMAIL_SUBJECT" default:"here's the latest China press release"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Display: DisplayConfig{
			Display:  ":1",
			Geometry: "1920x1080x24",
			VNCPort:  5901,
		},
		Scraper: ScraperConfig{
			Mode:            "browser",
			Headless:        true,
			NavTimeoutSec:   30,
			PageDelayMs:     2000,
			ArticleDelayMs:  500,
			MaxContentChars: 10000,
			MaxPages:        10,
			UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		Scheduler: SchedulerConfig{
			Enabled:   true,
			CronSpec:  "0 2 * * *",
			CronPages: 1,
		},
		Store: StoreConfig{
			Path: "/data/releases.db",
		},
		Analyzer: AnalyzerConfig{
			Model:        "gemini-2.0-flash",
			MinRelevance: 4,
		},
		Email: EmailConfig{
			Host:    "smtp.gmail.com",
			Port:    465,
			Subject: "here's the latest China press release",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
