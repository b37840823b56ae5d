package ports

import (
	"context"
	"io"

	"github.com/kirillkom/resume-parser/internal/core/domain"
)

// ResumeUploader is the inbound contract for accepting an upload and queueing its parse.
type ResumeUploader interface {
	Upload(ctx context.Context, filename, mimeType, uploaderID string, body io.Reader) (*domain.ParseJob, error)
}

// ProgressFunc receives coarse progress milestones (0-100) during a parse.
type ProgressFunc func(ctx context.Context, progress int)

// ResumeParser runs the parsing pipeline for one document and persists the result.
type ResumeParser interface {
	Parse(ctx context.Context, doc domain.UploadedDocument, progress ProgressFunc) (*domain.ParseResult, error)
}

// JobProcessor executes queued parse requests.
type JobProcessor interface {
	Handle(ctx context.Context, req domain.ParseRequest) error
	RecoverPending(ctx context.Context) (int, error)
}

// JobReader is the inbound read model for job state.
type JobReader interface {
	Status(ctx context.Context, jobID string) (*domain.JobStatusView, error)
	Remove(ctx context.Context, jobID string) error
	Stats(ctx context.Context) (domain.QueueStats, error)
}

// ResultReader is the inbound read model for stored results.
type ResultReader interface {
	Get(ctx context.Context, resumeID string) (*domain.ParseResult, error)
	ListByUploader(ctx context.Context, uploaderID string, limit int) ([]domain.ResultSummary, error)
}

// ResultExporter renders an uploader's results as a spreadsheet.
type ResultExporter interface {
	ExportXLSX(ctx context.Context, uploaderID string, limit int) ([]byte, error)
}
