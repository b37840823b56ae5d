package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/resume-parser/internal/core/domain"
	"github.com/kirillkom/resume-parser/internal/core/ports"
)

const (
	jobOperation        = "parse.job"
	interruptResetGrace = 5 * time.Second

	DefaultStaleActiveAfter = 15 * time.Minute
)

// Errors that retrying cannot fix.
var permanentJobErrors = []error{domain.ErrUnsupportedFormat, domain.ErrInvalidInput}

type ProcessJobUseCase struct {
	jobs     ports.JobStore
	storage  ports.UploadStorage
	queue    ports.JobQueue
	parser   ports.ResumeParser
	retrier  ports.Retrier
	observer ports.JobObserver
	logger   *slog.Logger
	now      func() time.Time

	staleAfter time.Duration
}

func NewProcessJobUseCase(
	jobs ports.JobStore,
	storage ports.UploadStorage,
	queue ports.JobQueue,
	parser ports.ResumeParser,
	retrier ports.Retrier,
	observer ports.JobObserver,
	logger *slog.Logger,
) *ProcessJobUseCase {
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessJobUseCase{
		jobs:     jobs,
		storage:  storage,
		queue:    queue,
		parser:   parser,
		retrier:  retrier,
		observer: observer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },

		staleAfter: DefaultStaleActiveAfter,
	}
}

// SetStaleActiveAfter sets how long an active job may go without a state
// write before RecoverPending treats its worker as dead. Zero or negative
// disables the sweep.
func (uc *ProcessJobUseCase) SetStaleActiveAfter(d time.Duration) {
	uc.staleAfter = d
}

// Handle claims the job named by req and runs the parser under the retry
// policy. Missing or already claimed jobs are acknowledged without work. On
// success the upload is deleted; on failure it is kept for inspection.
func (uc *ProcessJobUseCase) Handle(ctx context.Context, req domain.ParseRequest) error {
	job, err := uc.jobs.Claim(ctx, req.JobID)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) || domain.IsKind(err, domain.ErrConflict) {
			uc.logger.Info("job_skipped", "job_id", req.JobID, "reason", err.Error())
			return nil
		}
		return fmt.Errorf("claim job: %w", err)
	}

	started := uc.now()
	uc.observer.ObserveQueueLag(started.Sub(job.CreatedAt))
	uc.observer.StartJob()

	job.Progress = domain.ProgressQueued
	uc.saveProgress(ctx, job)
	uc.logger.Info("job_started", "job_id", job.ID, "file_type", job.Document.FileType)

	var result *domain.ParseResult
	runErr := uc.retrier.Retry(ctx, jobOperation, func(attemptCtx context.Context) error {
		job.Attempts++
		uc.saveProgress(attemptCtx, job)

		res, err := uc.parser.Parse(attemptCtx, job.Document, uc.progressFor(job))
		if err != nil {
			return err
		}
		result = res
		return nil
	}, permanentJobErrors...)

	duration := uc.now().Sub(started)
	switch {
	case runErr == nil:
		uc.observer.FinishJob(string(domain.JobCompleted), duration, job.Attempts)
		uc.observer.ObserveConfidence(result.Confidence)
		return uc.markCompleted(ctx, job, result, duration)
	case ctx.Err() != nil:
		uc.observer.FinishJob("interrupted", duration, job.Attempts)
		uc.requeueInterrupted(job)
		return ctx.Err()
	default:
		uc.observer.FinishJob(string(domain.JobFailed), duration, job.Attempts)
		if failErr := uc.markFailed(ctx, job, runErr); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", runErr, failErr)
		}
		return runErr
	}
}

// RecoverPending republishes every job still waiting, covering uploads whose
// publish failed or whose message was lost before a worker claimed it. Active
// jobs with no state write for longer than the stale threshold belonged to a
// worker that died mid-run; they are reset to waiting and republished too.
func (uc *ProcessJobUseCase) RecoverPending(ctx context.Context) (int, error) {
	waiting, err := uc.jobs.ListByStatus(ctx, domain.JobWaiting, 0)
	if err != nil {
		return 0, fmt.Errorf("list waiting jobs: %w", err)
	}

	var errs []error
	stale, err := uc.resetStaleActive(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	pending := append(waiting, stale...)

	published := 0
	for _, job := range pending {
		if err := uc.queue.Publish(ctx, domain.ParseRequest{JobID: job.ID, EnqueuedAt: uc.now()}); err != nil {
			errs = append(errs, fmt.Errorf("republish job %s: %w", job.ID, err))
			continue
		}
		published++
	}
	if published > 0 {
		uc.logger.Info("jobs_recovered", "count", published, "stale_active", len(stale))
	}
	return published, errors.Join(errs...)
}

func (uc *ProcessJobUseCase) resetStaleActive(ctx context.Context) ([]domain.ParseJob, error) {
	if uc.staleAfter <= 0 {
		return nil, nil
	}
	active, err := uc.jobs.ListByStatus(ctx, domain.JobActive, 0)
	if err != nil {
		return nil, fmt.Errorf("list active jobs: %w", err)
	}

	cutoff := uc.now().Add(-uc.staleAfter)
	var reset []domain.ParseJob
	var errs []error
	for _, job := range active {
		if job.UpdatedAt.After(cutoff) {
			continue
		}
		lastSeen := job.UpdatedAt
		job.Status = domain.JobWaiting
		job.Progress = 0
		job.UpdatedAt = uc.now()
		if err := uc.jobs.Update(ctx, &job); err != nil {
			errs = append(errs, fmt.Errorf("reset stale job %s: %w", job.ID, err))
			continue
		}
		uc.logger.Warn("job_stale_reset", "job_id", job.ID, "attempt", job.Attempts, "last_update", lastSeen)
		reset = append(reset, job)
	}
	return reset, errors.Join(errs...)
}

func (uc *ProcessJobUseCase) progressFor(job *domain.ParseJob) ports.ProgressFunc {
	return func(ctx context.Context, progress int) {
		job.Progress = progress
		uc.saveProgress(ctx, job)
	}
}

// saveProgress records intermediate job state; write failures are logged only.
func (uc *ProcessJobUseCase) saveProgress(ctx context.Context, job *domain.ParseJob) {
	job.UpdatedAt = uc.now()
	if err := uc.jobs.Update(ctx, job); err != nil {
		uc.logger.Warn("job_progress_update_failed", "job_id", job.ID, "progress", job.Progress, "error", err)
	}
}

func (uc *ProcessJobUseCase) markCompleted(ctx context.Context, job *domain.ParseJob, result *domain.ParseResult, duration time.Duration) error {
	if err := uc.storage.Delete(ctx, job.Document.StorageKey); err != nil {
		uc.logger.Warn("upload_cleanup_failed", "job_id", job.ID, "error", err)
	}

	now := uc.now()
	job.Status = domain.JobCompleted
	job.Progress = domain.ProgressDone
	job.ResultID = result.ResumeID
	job.Error = ""
	job.UpdatedAt = now
	job.FinishedAt = &now
	if err := uc.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("set status=completed: %w", err)
	}

	uc.logger.Info("job_completed",
		"job_id", job.ID,
		"resume_id", result.ResumeID,
		"attempt", job.Attempts,
		"confidence", result.Confidence,
		"duration_ms", duration.Milliseconds(),
	)
	return nil
}

func (uc *ProcessJobUseCase) markFailed(ctx context.Context, job *domain.ParseJob, processErr error) error {
	now := uc.now()
	job.Status = domain.JobFailed
	job.Error = processErr.Error()
	job.UpdatedAt = now
	job.FinishedAt = &now

	uc.logger.Error("job_failed", "job_id", job.ID, "attempt", job.Attempts, "error", processErr)
	return uc.jobs.Update(ctx, job)
}

// requeueInterrupted puts a job cut short by shutdown back to waiting so the
// next worker start picks it up through RecoverPending.
func (uc *ProcessJobUseCase) requeueInterrupted(job *domain.ParseJob) {
	ctx, cancel := context.WithTimeout(context.Background(), interruptResetGrace)
	defer cancel()

	job.Status = domain.JobWaiting
	job.Progress = 0
	job.UpdatedAt = uc.now()
	if err := uc.jobs.Update(ctx, job); err != nil {
		uc.logger.Warn("job_requeue_failed", "job_id", job.ID, "error", err)
		return
	}
	uc.logger.Info("job_interrupted", "job_id", job.ID, "attempt", job.Attempts)
}

type noopObserver struct{}

func (noopObserver) ObserveQueueLag(time.Duration) {}
func (noopObserver) StartJob() {}
func (noopObserver) FinishJob(string, time.Duration, int) {}
func (noopObserver) ObserveConfidence(float64) {}
