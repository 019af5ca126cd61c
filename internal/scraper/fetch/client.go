// Package fetch provides the static (non-browser) page fetcher: a resty
// client over a retrying transport, with per-host pacing and a circuit
// breaker. Used when SCRAPER_MODE=static and for sources that render
// server-side.
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/presswatch/presswatch/internal/infrastructure/resilience"
)

// Config tunes the fetch client.
type Config struct {
	Timeout     time.Duration
	MaxRetries  int
	MinWait     time.Duration
	MaxWait     time.Duration
	RPS         float64 // requests per second; 0 means unlimited
	UserAgent   string
	AcceptLang  string
	BreakerName string
}

// DefaultConfig returns production fetch settings.
func DefaultConfig() Config {
	return Config{
		Timeout:     30 * time.Second,
		MaxRetries:  3,
		MinWait:     1 * time.Second,
		MaxWait:     30 * time.Second,
		RPS:         2,
		UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		AcceptLang:  "zh-CN,zh;q=0.9,en;q=0.8",
		BreakerName: "scrape-fetch",
	}
}

// Client fetches page HTML over plain HTTP.
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
}

// NewClient creates a fetch client with retry, rate limiting, and a breaker.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg = DefaultConfig()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.MinWait
	retryClient.RetryWaitMax = cfg.MaxWait
	retryClient.Logger = nil

	// StandardClient wraps the retry loop in a RoundTripper resty can use.
	restyClient := resty.NewWithClient(retryClient.StandardClient())
	restyClient.
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept-Language", cfg.AcceptLang).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), 1)
	}

	breaker := resilience.New(cfg.BreakerName, resilience.Settings{
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			// Source sites vary in reliability; trip only on sustained failure.
			return counts.ConsecutiveFailures >= 10 ||
				(counts.Requests >= 20 && float64(counts.TotalFailures)/float64(counts.Requests) > 0.7)
		},
	})

	return &Client{resty: restyClient, limiter: limiter, breaker: breaker}
}

// HTML fetches url and returns the response body.
func (c *Client) HTML(ctx context.Context, url string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	var body string
	err := c.breaker.Do(func() error {
		resp, err := c.resty.R().SetContext(ctx).Get(url)
		if err != nil {
			return err
		}
		if resp.IsError() {
			return fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode())
		}
		body = string(resp.Body())
		return nil
	})
	if err != nil {
		return "", err
	}
	return body, nil
}

// BreakerState reports the breaker state for health checks.
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}
