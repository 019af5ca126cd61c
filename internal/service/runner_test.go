package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presswatch/presswatch/internal/domain/job"
	"github.com/presswatch/presswatch/internal/infrastructure/logging"
	"github.com/presswatch/presswatch/internal/scraper"
	"github.com/presswatch/presswatch/internal/shared/types"
	"github.com/presswatch/presswatch/internal/store"
)

// stubScraper returns canned releases or an error.
type stubScraper struct {
	releases []types.PressRelease
	err      error
}

func (s *stubScraper) Country() string     { return "china" }
func (s *stubScraper) DisplayName() string { return "China" }
func (s *stubScraper) Method() string      { return "Browser Automation" }
func (s *stubScraper) Scrape(_ context.Context, _ int) ([]types.PressRelease, error) {
	return s.releases, s.err
}

func newTestRunner(t *testing.T, s scraper.Scraper) (*Runner, *job.Manager) {
	t.Helper()
	registry := scraper.NewRegistry()
	registry.Register(s)
	jobs := job.NewManager()
	return NewRunner(registry, jobs, logging.NewDefault(), nil), jobs
}

func waitForTerminal(t *testing.T, jobs *job.Manager, id string) types.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if j, ok := jobs.Get(id); ok && j.Status != types.JobPending {
			return j
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal state", id)
	return types.Job{}
}

func TestSubmitCompletesJob(t *testing.T) {
	r, jobs := newTestRunner(t, &stubScraper{releases: []types.PressRelease{
		{Country: "China", Title: "一", URL: "https://www.gov.cn/a", PublishDate: "2025-08-20"},
	}})

	j, err := r.Submit("china", 1)
	require.NoError(t, err)
	assert.Equal(t, types.JobPending, j.Status)

	final := waitForTerminal(t, jobs, j.ID)
	assert.Equal(t, types.JobCompleted, final.Status)
	require.NotNil(t, final.Result)
	assert.Equal(t, "China", final.Result.Country)
	assert.Equal(t, "Browser Automation", final.Result.Method)
	assert.Equal(t, 1, final.Result.Count)
}

func TestSubmitFailsJobOnScrapeError(t *testing.T) {
	r, jobs := newTestRunner(t, &stubScraper{err: errors.New("browser crashed")})

	j, err := r.Submit("china", 1)
	require.NoError(t, err)

	final := waitForTerminal(t, jobs, j.ID)
	assert.Equal(t, types.JobFailed, final.Status)
	assert.Contains(t, final.ErrorMessage, "browser crashed")
}

func TestSubmitFailsJobOnEmptyScrape(t *testing.T) {
	r, jobs := newTestRunner(t, &stubScraper{})

	j, err := r.Submit("china", 1)
	require.NoError(t, err)

	final := waitForTerminal(t, jobs, j.ID)
	assert.Equal(t, types.JobFailed, final.Status)
	assert.Equal(t, noDataMessage, final.ErrorMessage)
}

func TestSubmitUnknownCountry(t *testing.T) {
	r, _ := newTestRunner(t, &stubScraper{})

	_, err := r.Submit("atlantis", 1)
	assert.Error(t, err)
}

func TestRunNowArchivesReleases(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	r, jobs := newTestRunner(t, &stubScraper{releases: []types.PressRelease{
		{Country: "China", Title: "一", URL: "https://www.gov.cn/a", PublishDate: "2025-08-20"},
		{Country: "China", Title: "二", URL: "https://www.gov.cn/b", PublishDate: "2025-08-21"},
	}})
	r.WithStore(st)

	require.NoError(t, r.RunNow("china", 1))

	stats := jobs.Stats()
	assert.Equal(t, 1, stats["completed"])

	archived, err := st.Recent(context.Background(), "China", 10)
	require.NoError(t, err)
	assert.Len(t, archived, 2)
}
