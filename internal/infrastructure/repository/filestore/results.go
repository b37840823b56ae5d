package filestore

import (
	"context"
	"fmt"
	"sort"

	"github.com/kirillkom/resume-parser/internal/core/domain"
)

type ResultRepository struct {
	store *Store
}

func (r *ResultRepository) Save(ctx context.Context, result *domain.StoredResumeResult) error {
	snapshot := *result
	return r.store.mutate(ctx, func(d *document) error {
		if _, ok := d.Resumes[snapshot.ID]; ok {
			return domain.WrapError(domain.ErrConflict, "save result", fmt.Errorf("result %s exists", snapshot.ID))
		}
		d.Resumes[snapshot.ID] = snapshot
		return nil
	})
}

func (r *ResultRepository) Get(_ context.Context, id string) (*domain.StoredResumeResult, error) {
	var out *domain.StoredResumeResult
	err := r.store.read(func(d *document) error {
		res, ok := d.Resumes[id]
		if !ok {
			return domain.WrapError(domain.ErrNotFound, "get result", fmt.Errorf("result %s", id))
		}
		out = &res
		return nil
	})
	return out, err
}

func (r *ResultRepository) Update(ctx context.Context, result *domain.StoredResumeResult) error {
	snapshot := *result
	return r.store.mutate(ctx, func(d *document) error {
		if _, ok := d.Resumes[snapshot.ID]; !ok {
			return domain.WrapError(domain.ErrNotFound, "update result", fmt.Errorf("result %s", snapshot.ID))
		}
		d.Resumes[snapshot.ID] = snapshot
		return nil
	})
}

func (r *ResultRepository) ListByUploader(_ context.Context, uploaderID string, limit int) ([]domain.StoredResumeResult, error) {
	var out []domain.StoredResumeResult
	err := r.store.read(func(d *document) error {
		for _, res := range d.Resumes {
			if res.UploaderID == uploaderID {
				out = append(out, res)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
