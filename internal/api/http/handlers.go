// Package http contains the REST handlers for the press release monitor.
package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/presswatch/presswatch/internal/domain/job"
	"github.com/presswatch/presswatch/internal/scheduler"
	"github.com/presswatch/presswatch/internal/scraper"
	"github.com/presswatch/presswatch/internal/service"
	"github.com/presswatch/presswatch/internal/shared/types"
	"github.com/presswatch/presswatch/internal/store"
)

// maxReleaseLimit caps the /releases page size.
const maxReleaseLimit = 200

// Handlers contains all HTTP handlers.
type Handlers struct {
	runner    *service.Runner
	jobs      *job.Manager
	registry  *scraper.Registry
	store     *store.Store         // optional
	scheduler *scheduler.Scheduler // optional
}

// NewHandlers creates a new handler set.
func NewHandlers(runner *service.Runner, jobs *job.Manager, registry *scraper.Registry, st *store.Store) *Handlers {
	return &Handlers{
		runner:   runner,
		jobs:     jobs,
		registry: registry,
		store:    st,
	}
}

// WithScheduler adds scheduler reporting to /health.
func (h *Handlers) WithScheduler(s *scheduler.Scheduler) *Handlers {
	h.scheduler = s
	return h
}

// Root handles the welcome endpoint.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome! Multi-Country Press Release Monitor.",
		"service": "presswatch",
		"version": "1.1.0",
	})
}

// Health handles detailed health check.
func (h *Handlers) Health(c *gin.Context) {
	payload := gin.H{
		"status":   "healthy",
		"jobs":     h.jobs.Stats(),
		"scrapers": h.registry.Stats(),
	}
	if h.store != nil {
		payload["store"] = h.store.Stats(c.Request.Context())
	}
	if h.scheduler != nil {
		payload["scheduler"] = gin.H{"entries": h.scheduler.Entries()}
	}
	c.JSON(http.StatusOK, payload)
}

// JobStatus reports the state of a background scraping job.
func (h *Handlers) JobStatus(c *gin.Context) {
	j, ok := h.jobs.Get(c.Param("job_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Job not found"})
		return
	}

	resp := gin.H{
		"status": j.Status,
		"result": j.Result,
	}
	if j.ErrorMessage != "" {
		resp["error_message"] = j.ErrorMessage
	}
	c.JSON(http.StatusOK, resp)
}

// TriggerScrape accepts a scrape request for a country and runs it in the
// background, answering 202 with the job handle.
func (h *Handlers) TriggerScrape(country string) gin.HandlerFunc {
	return func(c *gin.Context) {
		pages, err := strconv.Atoi(c.DefaultQuery("pages", "1"))
		if err != nil || pages < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "pages must be a positive integer"})
			return
		}

		j, err := h.runner.Submit(country, pages)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusAccepted, types.ScrapeJob{
			JobID:     j.ID,
			StatusURL: "/status/" + j.ID,
		})
	}
}

// Countries lists the registered country scrapers.
func (h *Handlers) Countries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"countries": h.registry.Countries()})
}

// Releases returns recently archived releases.
func (h *Handlers) Releases(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "release archive not configured"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > maxReleaseLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200"})
		return
	}

	releases, err := h.store.Recent(c.Request.Context(), c.Query("country"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if releases == nil {
		releases = []types.PressRelease{}
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(releases),
		"releases": releases,
	})
}
