package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Scrape metrics
	ScrapesTotal    *prometheus.CounterVec
	ScrapeDuration  *prometheus.HistogramVec
	ReleasesScraped *prometheus.CounterVec
	PagesFetched    *prometheus.CounterVec

	// Job metrics
	JobsActive prometheus.Gauge
	JobsTotal  *prometheus.CounterVec

	// Store metrics
	ReleasesStored prometheus.Gauge

	// Notification metrics
	EmailsSent   prometheus.Counter
	EmailsFailed prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector backed by its own registry, so
// collectors can be rebuilt freely in tests.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	auto := promauto.With(registry)

	return &Metrics{
		startTime: time.Now(),
		registry:  registry,

		RequestsTotal: auto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "presswatch_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: auto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "presswatch_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		ScrapesTotal: auto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "presswatch_scrapes_total",
				Help: "Total number of scrape runs by country and outcome",
			},
			[]string{"country", "status"},
		),
		ScrapeDuration: auto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "presswatch_scrape_duration_seconds",
				Help:    "Scrape run duration in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"country"},
		),
		ReleasesScraped: auto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "presswatch_releases_scraped_total",
				Help: "Total press releases extracted",
			},
			[]string{"country"},
		),
		PagesFetched: auto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "presswatch_pages_fetched_total",
				Help: "Total pages fetched by the scraper",
			},
			[]string{"country", "kind"},
		),

		JobsActive: auto.NewGauge(
			prometheus.GaugeOpts{
				Name: "presswatch_jobs_active",
				Help: "Number of scrape jobs currently pending",
			},
		),
		JobsTotal: auto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "presswatch_jobs_total",
				Help: "Total scrape jobs by terminal status",
			},
			[]string{"status"},
		),

		ReleasesStored: auto.NewGauge(
			prometheus.GaugeOpts{
				Name: "presswatch_releases_stored",
				Help: "Number of releases in the archive",
			},
		),

		EmailsSent: auto.NewCounter(
			prometheus.CounterOpts{
				Name: "presswatch_emails_sent_total",
				Help: "Total notification emails sent",
			},
		),
		EmailsFailed: auto.NewCounter(
			prometheus.CounterOpts{
				Name: "presswatch_emails_failed_total",
				Help: "Total notification emails that failed to send",
			},
		),

		WSConnections: auto.NewGauge(
			prometheus.GaugeOpts{
				Name: "presswatch_ws_connections",
				Help: "Active WebSocket connections",
			},
		),

		Uptime: auto.NewGauge(
			prometheus.GaugeOpts{
				Name: "presswatch_uptime_seconds",
				Help: "Service uptime in seconds",
			},
		),
	}
}

// Handler returns the exposition handler for this collector's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records metrics for an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.Uptime.Set(time.Since(m.startTime).Seconds())
}

// RecordScrape records the outcome of a scrape run
func (m *Metrics) RecordScrape(country, status string, duration time.Duration, releases int) {
	m.ScrapesTotal.WithLabelValues(country, status).Inc()
	m.ScrapeDuration.WithLabelValues(country).Observe(duration.Seconds())
	if releases > 0 {
		m.ReleasesScraped.WithLabelValues(country).Add(float64(releases))
	}
}

// RecordPage records a fetched page. Kind is "list" or "article".
func (m *Metrics) RecordPage(country, kind string) {
	m.PagesFetched.WithLabelValues(country, kind).Inc()
}

// JobStarted marks a job as pending
func (m *Metrics) JobStarted() {
	m.JobsActive.Inc()
}

// JobFinished marks a job as finished with the given terminal status
func (m *Metrics) JobFinished(status string) {
	m.JobsActive.Dec()
	m.JobsTotal.WithLabelValues(status).Inc()
}
