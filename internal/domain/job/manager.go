// Package job tracks background scrape jobs from submission to completion
// and fans out lifecycle events to stream subscribers.
package job

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/presswatch/presswatch/internal/infrastructure/monitoring"
	"github.com/presswatch/presswatch/internal/shared/types"
)

// Manager owns the in-memory job table.
type Manager struct {
	mu      sync.RWMutex
	jobs    map[string]*types.Job
	subs    map[chan types.JobEvent]struct{}
	metrics *monitoring.Metrics
}

// NewManager creates an empty job manager.
func NewManager() *Manager {
	return &Manager{
		jobs: make(map[string]*types.Job),
		subs: make(map[chan types.JobEvent]struct{}),
	}
}

// WithMetrics adds metrics tracking to the manager.
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Create registers a new pending job for a country and returns it.
func (m *Manager) Create(country string) types.Job {
	j := &types.Job{
		ID:        uuid.New().String(),
		Country:   country,
		Status:    types.JobPending,
		CreatedAt: time.Now().UTC(),
	}

	m.mu.Lock()
	m.jobs[j.ID] = j
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.JobStarted()
	}
	m.publish(types.JobEvent{
		Type:    "job_created",
		JobID:   j.ID,
		Country: country,
		Status:  types.JobPending,
	})
	return *j
}

// Get returns a copy of a job.
func (m *Manager) Get(id string) (types.Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	j, ok := m.jobs[id]
	if !ok {
		return types.Job{}, false
	}
	return *j, true
}

// Complete marks a job completed with its result.
func (m *Manager) Complete(id string, result *types.ScrapeResult) {
	now := time.Now().UTC()

	m.mu.Lock()
	j, ok := m.jobs[id]
	if ok {
		j.Status = types.JobCompleted
		j.Result = result
		j.FinishedAt = &now
	}
	m.mu.Unlock()
	if !ok {
		return
	}

	if m.metrics != nil {
		m.metrics.JobFinished(string(types.JobCompleted))
	}
	m.publish(types.JobEvent{
		Type:    "job_completed",
		JobID:   id,
		Country: j.Country,
		Status:  types.JobCompleted,
		Count:   result.Count,
	})
}

// Fail marks a job failed with an error message.
func (m *Manager) Fail(id, message string) {
	now := time.Now().UTC()

	m.mu.Lock()
	j, ok := m.jobs[id]
	if ok {
		j.Status = types.JobFailed
		j.ErrorMessage = message
		j.FinishedAt = &now
	}
	m.mu.Unlock()
	if !ok {
		return
	}

	if m.metrics != nil {
		m.metrics.JobFinished(string(types.JobFailed))
	}
	m.publish(types.JobEvent{
		Type:    "job_failed",
		JobID:   id,
		Country: j.Country,
		Status:  types.JobFailed,
		Error:   message,
	})
}

// Subscribe returns a channel of job events and a cancel function. Slow
// subscribers drop events rather than blocking job transitions.
func (m *Manager) Subscribe() (<-chan types.JobEvent, func()) {
	ch := make(chan types.JobEvent, 16)

	m.mu.Lock()
	m.subs[ch] = struct{}{}
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		if _, ok := m.subs[ch]; ok {
			delete(m.subs, ch)
			close(ch)
		}
		m.mu.Unlock()
	}
	return ch, cancel
}

func (m *Manager) publish(event types.JobEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for ch := range m.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Stats returns job counts for health reporting.
func (m *Manager) Stats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := map[types.JobStatus]int{}
	for _, j := range m.jobs {
		counts[j.Status]++
	}
	return map[string]interface{}{
		"total":     len(m.jobs),
		"pending":   counts[types.JobPending],
		"completed": counts[types.JobCompleted],
		"failed":    counts[types.JobFailed],
	}
}
