package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/resume-parser/internal/core/domain"
)

// JobStore persists parse jobs. Claim and RemoveWaiting are conditional on the
// job still being waiting and fail with domain.ErrConflict otherwise.
type JobStore interface {
	Create(ctx context.Context, job *domain.ParseJob) error
	Get(ctx context.Context, id string) (*domain.ParseJob, error)
	Claim(ctx context.Context, id string) (*domain.ParseJob, error)
	Update(ctx context.Context, job *domain.ParseJob) error
	RemoveWaiting(ctx context.Context, id string) (*domain.ParseJob, error)
	ListByStatus(ctx context.Context, status domain.JobStatus, limit int) ([]domain.ParseJob, error)
	CountByStatus(ctx context.Context) (map[domain.JobStatus]int, error)
}

// ResultStore persists parsed resumes. ListByUploader returns newest first.
type ResultStore interface {
	Save(ctx context.Context, result *domain.StoredResumeResult) error
	Get(ctx context.Context, id string) (*domain.StoredResumeResult, error)
	Update(ctx context.Context, result *domain.StoredResumeResult) error
	ListByUploader(ctx context.Context, uploaderID string, limit int) ([]domain.StoredResumeResult, error)
}

// UploadStorage stores uploaded source documents.
type UploadStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Path(key string) string
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// JobHandler processes one queued request. A nil return acknowledges it.
type JobHandler func(ctx context.Context, req domain.ParseRequest) error

// JobQueue publishes and consumes parse requests. Subscribe runs up to slots
// handlers concurrently and blocks until ctx is done.
type JobQueue interface {
	Publish(ctx context.Context, req domain.ParseRequest) error
	Subscribe(ctx context.Context, slots int, handler JobHandler) error
}

// TextExtractor produces cleaned raw text from a file of a declared type.
type TextExtractor interface {
	Extract(ctx context.Context, path, declaredType string) (string, error)
}

// EntityRecognizer is an optional model-backed source of PERSON/ORG entities.
type EntityRecognizer interface {
	Recognize(ctx context.Context, text string) ([]domain.Entity, error)
}

// ResultValidator checks a normalized record before it is persisted.
type ResultValidator interface {
	Validate(resume domain.ParsedResume) error
}

// Chunker splits text into bounded pieces.
type Chunker interface {
	Split(text string) []string
}

// Retrier runs fn under a bounded retry policy. Errors matching one of the
// permanent kinds end the loop at once; the last error is returned.
type Retrier interface {
	Retry(ctx context.Context, operation string, fn func(context.Context) error, permanent ...error) error
}

// JobObserver receives worker telemetry. Implementations must be safe for
// concurrent use.
type JobObserver interface {
	ObserveQueueLag(lag time.Duration)
	StartJob()
	FinishJob(status string, duration time.Duration, attempts int)
	ObserveConfidence(confidence float64)
}
