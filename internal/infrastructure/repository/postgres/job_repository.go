package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kirillkom/resume-parser/internal/core/domain"
)

const jobColumns = `id, storage_key, file_path, file_type, file_name, uploader_id, status, progress, attempts, result_id, error_message, created_at, updated_at, finished_at`

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, job *domain.ParseJob) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO parse_jobs (`+jobColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
`,
		job.ID, job.Document.StorageKey, job.Document.Path, job.Document.FileType, job.Document.FileName,
		job.Document.UploaderID, string(job.Status), job.Progress, job.Attempts, job.ResultID, job.Error,
		job.CreatedAt, job.UpdatedAt, nullTime(job.FinishedAt),
	)
	if err != nil {
		return domain.WrapError(domain.ErrPersistenceFailed, "insert job", err)
	}
	return nil
}

func (r *JobRepository) Get(ctx context.Context, id string) (*domain.ParseJob, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM parse_jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get job", fmt.Errorf("job %s", id))
		}
		return nil, fmt.Errorf("scan job: %w", err)
	}
	return job, nil
}

// Claim moves a waiting job to active in one conditional statement, so two
// workers can never both own a job.
func (r *JobRepository) Claim(ctx context.Context, id string) (*domain.ParseJob, error) {
	row := r.db.QueryRowContext(ctx, `
UPDATE parse_jobs
SET status = $2, updated_at = $3
WHERE id = $1 AND status = $4
RETURNING `+jobColumns,
		id, string(domain.JobActive), time.Now().UTC(), string(domain.JobWaiting))
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.explainMiss(ctx, "claim job", id)
		}
		return nil, fmt.Errorf("claim job: %w", err)
	}
	return job, nil
}

func (r *JobRepository) Update(ctx context.Context, job *domain.ParseJob) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE parse_jobs
SET status = $2, progress = $3, attempts = $4, result_id = $5, error_message = $6, updated_at = $7, finished_at = $8
WHERE id = $1
`, job.ID, string(job.Status), job.Progress, job.Attempts, job.ResultID, job.Error, job.UpdatedAt, nullTime(job.FinishedAt))
	if err != nil {
		return domain.WrapError(domain.ErrPersistenceFailed, "update job", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update job rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "update job", fmt.Errorf("job %s", job.ID))
	}
	return nil
}

func (r *JobRepository) RemoveWaiting(ctx context.Context, id string) (*domain.ParseJob, error) {
	row := r.db.QueryRowContext(ctx, `
DELETE FROM parse_jobs
WHERE id = $1 AND status = $2
RETURNING `+jobColumns, id, string(domain.JobWaiting))
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.explainMiss(ctx, "remove job", id)
		}
		return nil, fmt.Errorf("remove job: %w", err)
	}
	return job, nil
}

func (r *JobRepository) ListByStatus(ctx context.Context, status domain.JobStatus, limit int) ([]domain.ParseJob, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+jobColumns+`
FROM parse_jobs
WHERE status = $1
ORDER BY created_at ASC, id ASC
LIMIT $2
`, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ParseJob, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return out, nil
}

func (r *JobRepository) CountByStatus(ctx context.Context) (map[domain.JobStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM parse_jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}
	defer rows.Close()

	counts := map[domain.JobStatus]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan job count: %w", err)
		}
		counts[domain.JobStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job counts: %w", err)
	}
	return counts, nil
}

// explainMiss tells a missing job apart from one in the wrong state.
func (r *JobRepository) explainMiss(ctx context.Context, op, id string) error {
	var status string
	err := r.db.QueryRowContext(ctx, `SELECT status FROM parse_jobs WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.WrapError(domain.ErrNotFound, op, fmt.Errorf("job %s", id))
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return domain.WrapError(domain.ErrConflict, op, fmt.Errorf("job %s is %s", id, status))
}

func scanJob(row rowScanner) (*domain.ParseJob, error) {
	var (
		job      domain.ParseJob
		status   string
		finished sql.NullTime
	)
	err := row.Scan(
		&job.ID, &job.Document.StorageKey, &job.Document.Path, &job.Document.FileType, &job.Document.FileName,
		&job.Document.UploaderID, &status, &job.Progress, &job.Attempts, &job.ResultID, &job.Error,
		&job.CreatedAt, &job.UpdatedAt, &finished,
	)
	if err != nil {
		return nil, err
	}
	job.Status = domain.JobStatus(status)
	if finished.Valid {
		t := finished.Time
		job.FinishedAt = &t
	}
	return &job, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
