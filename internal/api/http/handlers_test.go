package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presswatch/presswatch/internal/domain/job"
	"github.com/presswatch/presswatch/internal/infrastructure/logging"
	"github.com/presswatch/presswatch/internal/scraper"
	"github.com/presswatch/presswatch/internal/service"
	"github.com/presswatch/presswatch/internal/shared/types"
)

type stubScraper struct {
	data []types.PressRelease
}

func (s *stubScraper) Country() string     { return "china" }
func (s *stubScraper) DisplayName() string { return "China" }
func (s *stubScraper) Method() string      { return "Browser Automation" }

func (s *stubScraper) Scrape(ctx context.Context, pages int) ([]types.PressRelease, error) {
	return s.data, nil
}

func setupRouter(t *testing.T) (*gin.Engine, *job.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := scraper.NewRegistry()
	registry.Register(&stubScraper{data: []types.PressRelease{
		{Country: "China", Title: "Test release", URL: "https://example.com/a"},
	}})

	jobs := job.NewManager()
	runner := service.NewRunner(registry, jobs, logging.NewDefault(), nil)
	h := NewHandlers(runner, jobs, registry, nil)

	r := gin.New()
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/status/:job_id", h.JobStatus)
	r.GET("/countries", h.Countries)
	r.GET("/releases", h.Releases)
	for _, country := range registry.Countries() {
		r.POST("/"+country+"/scrape", h.TriggerScrape(country))
	}
	return r, jobs
}

func doRequest(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRoot(t *testing.T) {
	r, _ := setupRouter(t)

	w := doRequest(r, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "presswatch", body["service"])
	assert.Contains(t, body["message"], "Welcome")
}

func TestHealth(t *testing.T) {
	r, _ := setupRouter(t)

	w := doRequest(r, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body, "jobs")
	assert.Contains(t, body, "scrapers")
}

func TestTriggerScrapeAccepted(t *testing.T) {
	r, jobs := setupRouter(t)

	w := doRequest(r, http.MethodPost, "/china/scrape")
	require.Equal(t, http.StatusAccepted, w.Code)

	var ack types.ScrapeJob
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ack))
	assert.NotEmpty(t, ack.JobID)
	assert.Equal(t, "/status/"+ack.JobID, ack.StatusURL)

	_, ok := jobs.Get(ack.JobID)
	assert.True(t, ok)
}

func TestTriggerScrapeInvalidPages(t *testing.T) {
	r, _ := setupRouter(t)

	for _, q := range []string{"?pages=0", "?pages=-2", "?pages=abc"} {
		w := doRequest(r, http.MethodPost, "/china/scrape"+q)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestJobStatusLifecycle(t *testing.T) {
	r, jobs := setupRouter(t)

	w := doRequest(r, http.MethodPost, "/china/scrape")
	require.Equal(t, http.StatusAccepted, w.Code)

	var ack types.ScrapeJob
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ack))

	// The stub scrape finishes almost immediately; poll until terminal.
	deadline := time.Now().Add(2 * time.Second)
	for {
		j, ok := jobs.Get(ack.JobID)
		require.True(t, ok)
		if j.Status != types.JobPending {
			break
		}
		require.True(t, time.Now().Before(deadline), "job never finished")
		time.Sleep(10 * time.Millisecond)
	}

	w = doRequest(r, http.MethodGet, ack.StatusURL)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, string(types.JobCompleted), body["status"])
	assert.NotNil(t, body["result"])
}

func TestJobStatusNotFound(t *testing.T) {
	r, _ := setupRouter(t)

	w := doRequest(r, http.MethodGet, "/status/no-such-job")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Job not found")
}

func TestCountries(t *testing.T) {
	r, _ := setupRouter(t)

	w := doRequest(r, http.MethodGet, "/countries")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string][]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"china"}, body["countries"])
}

func TestReleasesWithoutStore(t *testing.T) {
	r, _ := setupRouter(t)

	w := doRequest(r, http.MethodGet, "/releases")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
