package types

import "time"

// JobStatus enumerates scrape job lifecycle states.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// ScrapeJob is the acknowledgement returned when a scrape is accepted.
type ScrapeJob struct {
	JobID     string `json:"job_id"`
	StatusURL string `json:"status_url"`
}

// ScrapeResult is the payload of a completed job.
type ScrapeResult struct {
	Country string         `json:"country"`
	Method  string         `json:"method"`
	Count   int            `json:"count"`
	Data    []PressRelease `json:"data"`
}

// Job tracks a background scrape from submission to completion.
type Job struct {
	ID           string        `json:"job_id"`
	Country      string        `json:"country"`
	Status       JobStatus     `json:"status"`
	Result       *ScrapeResult `json:"result"`
	ErrorMessage string        `json:"error_message,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	FinishedAt   *time.Time    `json:"finished_at,omitempty"`
}

// JobEvent is pushed to stream subscribers on every job transition.
type JobEvent struct {
	Type    string    `json:"type"` // "job_created", "job_completed", "job_failed"
	JobID   string    `json:"job_id"`
	Country string    `json:"country"`
	Status  JobStatus `json:"status"`
	Count   int       `json:"count,omitempty"`
	Error   string    `json:"error,omitempty"`
}
