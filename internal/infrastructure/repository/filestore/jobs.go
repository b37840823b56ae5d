package filestore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kirillkom/resume-parser/internal/core/domain"
)

type JobRepository struct {
	store *Store
}

func (r *JobRepository) Create(ctx context.Context, job *domain.ParseJob) error {
	snapshot := *job
	return r.store.mutate(ctx, func(d *document) error {
		if _, ok := d.Jobs[snapshot.ID]; ok {
			return domain.WrapError(domain.ErrConflict, "create job", fmt.Errorf("job %s exists", snapshot.ID))
		}
		d.Jobs[snapshot.ID] = snapshot
		return nil
	})
}

func (r *JobRepository) Get(_ context.Context, id string) (*domain.ParseJob, error) {
	var out *domain.ParseJob
	err := r.store.read(func(d *document) error {
		job, ok := d.Jobs[id]
		if !ok {
			return domain.WrapError(domain.ErrNotFound, "get job", fmt.Errorf("job %s", id))
		}
		out = &job
		return nil
	})
	return out, err
}

func (r *JobRepository) Claim(ctx context.Context, id string) (*domain.ParseJob, error) {
	var out domain.ParseJob
	err := r.store.mutate(ctx, func(d *document) error {
		job, ok := d.Jobs[id]
		if !ok {
			return domain.WrapError(domain.ErrNotFound, "claim job", fmt.Errorf("job %s", id))
		}
		if job.Status != domain.JobWaiting {
			return domain.WrapError(domain.ErrConflict, "claim job", fmt.Errorf("job %s is %s", id, job.Status))
		}
		job.Status = domain.JobActive
		job.UpdatedAt = time.Now().UTC()
		d.Jobs[id] = job
		out = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *JobRepository) Update(ctx context.Context, job *domain.ParseJob) error {
	snapshot := *job
	return r.store.mutate(ctx, func(d *document) error {
		if _, ok := d.Jobs[snapshot.ID]; !ok {
			return domain.WrapError(domain.ErrNotFound, "update job", fmt.Errorf("job %s", snapshot.ID))
		}
		d.Jobs[snapshot.ID] = snapshot
		return nil
	})
}

func (r *JobRepository) RemoveWaiting(ctx context.Context, id string) (*domain.ParseJob, error) {
	var out domain.ParseJob
	err := r.store.mutate(ctx, func(d *document) error {
		job, ok := d.Jobs[id]
		if !ok {
			return domain.WrapError(domain.ErrNotFound, "remove job", fmt.Errorf("job %s", id))
		}
		if job.Status != domain.JobWaiting {
			return domain.WrapError(domain.ErrConflict, "remove job", fmt.Errorf("job %s is %s", id, job.Status))
		}
		delete(d.Jobs, id)
		out = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByStatus returns jobs oldest first.
func (r *JobRepository) ListByStatus(_ context.Context, status domain.JobStatus, limit int) ([]domain.ParseJob, error) {
	var out []domain.ParseJob
	err := r.store.read(func(d *document) error {
		for _, job := range d.Jobs {
			if job.Status == status {
				out = append(out, job)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *JobRepository) CountByStatus(_ context.Context) (map[domain.JobStatus]int, error) {
	counts := map[domain.JobStatus]int{}
	err := r.store.read(func(d *document) error {
		for _, job := range d.Jobs {
			counts[job.Status]++
		}
		return nil
	})
	return counts, err
}
