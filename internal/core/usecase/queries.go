package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/resume-parser/internal/core/domain"
	"github.com/kirillkom/resume-parser/internal/core/ports"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

type JobQueryUseCase struct {
	jobs    ports.JobStore
	results ports.ResultStore
	storage ports.UploadStorage
	logger  *slog.Logger
}

func NewJobQueryUseCase(
	jobs ports.JobStore,
	results ports.ResultStore,
	storage ports.UploadStorage,
	logger *slog.Logger,
) *JobQueryUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobQueryUseCase{jobs: jobs, results: results, storage: storage, logger: logger}
}

// Status projects a job for clients. The result is attached only to
// completed jobs and the error only to failed ones.
func (uc *JobQueryUseCase) Status(ctx context.Context, jobID string) (*domain.JobStatusView, error) {
	job, err := uc.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("fetch job: %w", err)
	}

	view := &domain.JobStatusView{
		JobID:    job.ID,
		Status:   job.Status,
		Progress: job.Progress,
		Attempts: job.Attempts,
	}
	switch job.Status {
	case domain.JobCompleted:
		stored, err := uc.results.Get(ctx, job.ResultID)
		if err != nil {
			return nil, fmt.Errorf("fetch job result: %w", err)
		}
		view.Result = stored.View()
	case domain.JobFailed:
		view.Error = job.Error
	}
	return view, nil
}

// Remove deletes a job that no worker has claimed yet, together with its
// upload. Active and finished jobs are rejected with domain.ErrConflict.
func (uc *JobQueryUseCase) Remove(ctx context.Context, jobID string) error {
	job, err := uc.jobs.RemoveWaiting(ctx, jobID)
	if err != nil {
		return fmt.Errorf("remove job: %w", err)
	}
	if err := uc.storage.Delete(ctx, job.Document.StorageKey); err != nil {
		uc.logger.Warn("upload_cleanup_failed", "job_id", job.ID, "error", err)
	}
	uc.logger.Info("job_removed", "job_id", job.ID)
	return nil
}

func (uc *JobQueryUseCase) Stats(ctx context.Context) (domain.QueueStats, error) {
	counts, err := uc.jobs.CountByStatus(ctx)
	if err != nil {
		return domain.QueueStats{}, fmt.Errorf("count jobs: %w", err)
	}
	stats := domain.QueueStats{
		Waiting:   counts[domain.JobWaiting],
		Active:    counts[domain.JobActive],
		Completed: counts[domain.JobCompleted],
		Failed:    counts[domain.JobFailed],
	}
	stats.Total = stats.Waiting + stats.Active + stats.Completed + stats.Failed
	return stats, nil
}

type ResultQueryUseCase struct {
	results ports.ResultStore
}

func NewResultQueryUseCase(results ports.ResultStore) *ResultQueryUseCase {
	return &ResultQueryUseCase{results: results}
}

func (uc *ResultQueryUseCase) Get(ctx context.Context, resumeID string) (*domain.ParseResult, error) {
	stored, err := uc.results.Get(ctx, resumeID)
	if err != nil {
		return nil, fmt.Errorf("fetch result: %w", err)
	}
	return stored.View(), nil
}

// ListByUploader returns the uploader's newest results. limit is clamped to
// 1..100; zero or less means the default of 10.
func (uc *ResultQueryUseCase) ListByUploader(ctx context.Context, uploaderID string, limit int) ([]domain.ResultSummary, error) {
	stored, err := listStored(ctx, uc.results, uploaderID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ResultSummary, 0, len(stored))
	for _, r := range stored {
		out = append(out, domain.ResultSummary{
			ID:         r.ID,
			FileName:   r.Metadata.FileName,
			Confidence: r.Confidence,
			CreatedAt:  r.CreatedAt,
		})
	}
	return out, nil
}

func listStored(ctx context.Context, results ports.ResultStore, uploaderID string, limit int) ([]domain.StoredResumeResult, error) {
	uploaderID = strings.TrimSpace(uploaderID)
	if uploaderID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "list results", errors.New("uploader id is required"))
	}
	stored, err := results.ListByUploader(ctx, uploaderID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return stored, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return min(limit, maxListLimit)
}
