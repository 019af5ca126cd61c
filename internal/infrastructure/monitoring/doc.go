// Package monitoring provides Prometheus metrics for the HTTP API and the
// scraping pipeline, plus a Gin middleware that records per-request metrics.
package monitoring
