package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kirillkom/resume-parser/internal/core/domain"
)

const maxListLimit = 1000

const resumeColumns = `id, uploader_id, parsed, confidence, metadata, created_at, updated_at`

type ResumeRepository struct {
	db *sql.DB
}

func NewResumeRepository(db *sql.DB) *ResumeRepository {
	return &ResumeRepository{db: db}
}

func (r *ResumeRepository) Save(ctx context.Context, res *domain.StoredResumeResult) error {
	parsed, metadata, err := marshalResult(res)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO resumes (`+resumeColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, res.ID, res.UploaderID, parsed, res.Confidence, metadata, res.CreatedAt, res.UpdatedAt)
	if err != nil {
		return domain.WrapError(domain.ErrPersistenceFailed, "insert resume", err)
	}
	return nil
}

func (r *ResumeRepository) Get(ctx context.Context, id string) (*domain.StoredResumeResult, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE id = $1`, id)
	res, err := scanResume(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get resume", fmt.Errorf("resume %s", id))
		}
		return nil, fmt.Errorf("scan resume: %w", err)
	}
	return res, nil
}

func (r *ResumeRepository) Update(ctx context.Context, res *domain.StoredResumeResult) error {
	parsed, metadata, err := marshalResult(res)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE resumes
SET parsed = $2, confidence = $3, metadata = $4, updated_at = $5
WHERE id = $1
`, res.ID, parsed, res.Confidence, metadata, res.UpdatedAt)
	if err != nil {
		return domain.WrapError(domain.ErrPersistenceFailed, "update resume", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update resume rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "update resume", fmt.Errorf("resume %s", res.ID))
	}
	return nil
}

func (r *ResumeRepository) ListByUploader(ctx context.Context, uploaderID string, limit int) ([]domain.StoredResumeResult, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+resumeColumns+`
FROM resumes
WHERE uploader_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`, uploaderID, limit)
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	defer rows.Close()

	out := make([]domain.StoredResumeResult, 0)
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, fmt.Errorf("scan resume: %w", err)
		}
		out = append(out, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resumes: %w", err)
	}
	return out, nil
}

func marshalResult(res *domain.StoredResumeResult) ([]byte, []byte, error) {
	parsed, err := json.Marshal(res.Parsed)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal parsed resume: %w", err)
	}
	metadata, err := json.Marshal(res.Metadata)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return parsed, metadata, nil
}

func scanResume(row rowScanner) (*domain.StoredResumeResult, error) {
	var res domain.StoredResumeResult
	var parsedRaw, metaRaw []byte
	if err := row.Scan(&res.ID, &res.UploaderID, &parsedRaw, &res.Confidence, &metaRaw, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return nil, err
	}
	res.Parsed = domain.NewParsedResume()
	if err := json.Unmarshal(parsedRaw, &res.Parsed); err != nil {
		return nil, fmt.Errorf("unmarshal parsed resume: %w", err)
	}
	if err := json.Unmarshal(metaRaw, &res.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return &res, nil
}
