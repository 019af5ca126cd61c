package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presswatch/presswatch/internal/infrastructure/logging"
)

type recordingRunner struct {
	mu   sync.Mutex
	runs []string
}

func (r *recordingRunner) RunNow(country string, pages int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, country)
	return nil
}

func (r *recordingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runs)
}

func TestAddScrapeJobValidSpec(t *testing.T) {
	s := New(logging.NewDefault())

	err := s.AddScrapeJob("0 2 * * *", "china", 1, &recordingRunner{})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Entries())
}

func TestAddScrapeJobInvalidSpec(t *testing.T) {
	s := New(logging.NewDefault())

	err := s.AddScrapeJob("not a cron spec", "china", 1, &recordingRunner{})
	assert.Error(t, err)
	assert.Zero(t, s.Entries())
}

func TestScheduledJobRuns(t *testing.T) {
	s := New(logging.NewDefault())
	runner := &recordingRunner{}

	// Every-second schedule via the seconds-less standard parser is not
	// possible, so drive the entry directly.
	require.NoError(t, s.AddScrapeJob("* * * * *", "china", 1, runner))

	entries := s.cron.Entries()
	require.Len(t, entries, 1)
	entries[0].Job.Run()

	assert.Equal(t, 1, runner.count())
}

func TestStartStop(t *testing.T) {
	s := New(logging.NewDefault())
	require.NoError(t, s.AddScrapeJob("0 2 * * *", "china", 1, &recordingRunner{}))

	s.Start()
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestNextRunIsInUTC(t *testing.T) {
	s := New(logging.NewDefault())
	require.NoError(t, s.AddScrapeJob("0 2 * * *", "china", 1, &recordingRunner{}))
	s.Start()
	defer s.Stop()

	entries := s.cron.Entries()
	require.Len(t, entries, 1)

	next := entries[0].Next
	assert.Equal(t, 2, next.UTC().Hour())
	assert.Equal(t, 0, next.UTC().Minute())
}
