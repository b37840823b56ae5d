package domain

import "time"

type JobStatus string

const (
	JobWaiting   JobStatus = "waiting"
	JobActive    JobStatus = "active"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Progress milestones reported while a job runs.
const (
	ProgressQueued     = 10
	ProgressExtracting = 20
	ProgressStructured = 80
	ProgressPersisted  = 95
	ProgressDone       = 100
)

func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// ParseJob tracks one asynchronous parse of an uploaded document.
// ResultID is a reference to the stored result, never the result itself.
type ParseJob struct {
	ID         string           `json:"id"`
	Document   UploadedDocument `json:"document"`
	Status     JobStatus        `json:"status"`
	Progress   int              `json:"progress"`
	Attempts   int              `json:"attempts"`
	ResultID   string           `json:"resultId,omitempty"`
	Error      string           `json:"error,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
	FinishedAt *time.Time       `json:"finishedAt,omitempty"`
}

// ParseRequest is the queue message asking a worker to run a job.
type ParseRequest struct {
	JobID      string    `msgpack:"job_id" json:"jobId"`
	EnqueuedAt time.Time `msgpack:"enqueued_at" json:"enqueuedAt"`
}

// JobStatusView is the client-facing projection of a job.
type JobStatusView struct {
	JobID    string       `json:"jobId"`
	Status   JobStatus    `json:"status"`
	Progress int          `json:"progress"`
	Attempts int          `json:"attempts"`
	Result   *ParseResult `json:"result,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// QueueStats counts jobs per status.
type QueueStats struct {
	Waiting   int `json:"waiting"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Total     int `json:"total"`
}
