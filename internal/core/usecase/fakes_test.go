package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/kirillkom/resume-parser/internal/core/domain"
	"github.com/kirillkom/resume-parser/internal/core/ports"
)

type jobStoreFake struct {
	mu        sync.Mutex
	jobs      map[string]domain.ParseJob
	progress  []int
	createErr error
	claimErr  error
	listErr   error
}

func newJobStoreFake(jobs ...domain.ParseJob) *jobStoreFake {
	f := &jobStoreFake{jobs: make(map[string]domain.ParseJob)}
	for _, j := range jobs {
		f.jobs[j.ID] = j
	}
	return f
}

func (f *jobStoreFake) Create(_ context.Context, job *domain.ParseJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.jobs[job.ID]; ok {
		return domain.WrapError(domain.ErrConflict, "create job", errors.New("duplicate"))
	}
	f.jobs[job.ID] = *job
	return nil
}

func (f *jobStoreFake) Get(_ context.Context, id string) (*domain.ParseJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get job", fmt.Errorf("job %s", id))
	}
	return &job, nil
}

func (f *jobStoreFake) Claim(_ context.Context, id string) (*domain.ParseJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	job, ok := f.jobs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "claim job", fmt.Errorf("job %s", id))
	}
	if job.Status != domain.JobWaiting {
		return nil, domain.WrapError(domain.ErrConflict, "claim job", fmt.Errorf("job %s is %s", id, job.Status))
	}
	job.Status = domain.JobActive
	f.jobs[id] = job
	return &job, nil
}

func (f *jobStoreFake) Update(_ context.Context, job *domain.ParseJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.jobs[job.ID]; !ok {
		return domain.WrapError(domain.ErrNotFound, "update job", fmt.Errorf("job %s", job.ID))
	}
	f.jobs[job.ID] = *job
	f.progress = append(f.progress, job.Progress)
	return nil
}

func (f *jobStoreFake) RemoveWaiting(_ context.Context, id string) (*domain.ParseJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "remove job", fmt.Errorf("job %s", id))
	}
	if job.Status != domain.JobWaiting {
		return nil, domain.WrapError(domain.ErrConflict, "remove job", fmt.Errorf("job %s is %s", id, job.Status))
	}
	delete(f.jobs, id)
	return &job, nil
}

func (f *jobStoreFake) ListByStatus(_ context.Context, status domain.JobStatus, limit int) ([]domain.ParseJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.ParseJob
	for _, j := range f.jobs {
		if j.Status == status {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *jobStoreFake) CountByStatus(context.Context) (map[domain.JobStatus]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[domain.JobStatus]int)
	for _, j := range f.jobs {
		out[j.Status]++
	}
	return out, nil
}

func (f *jobStoreFake) job(id string) domain.ParseJob {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jobs[id]
}

type resultStoreFake struct {
	mu      sync.Mutex
	results map[string]domain.StoredResumeResult
	saveErr error
}

func newResultStoreFake(results ...domain.StoredResumeResult) *resultStoreFake {
	f := &resultStoreFake{results: make(map[string]domain.StoredResumeResult)}
	for _, r := range results {
		f.results[r.ID] = r
	}
	return f
}

func (f *resultStoreFake) Save(_ context.Context, r *domain.StoredResumeResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.results[r.ID] = *r
	return nil
}

func (f *resultStoreFake) Get(_ context.Context, id string) (*domain.StoredResumeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.results[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get result", fmt.Errorf("result %s", id))
	}
	return &r, nil
}

func (f *resultStoreFake) Update(_ context.Context, r *domain.StoredResumeResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[r.ID] = *r
	return nil
}

func (f *resultStoreFake) ListByUploader(_ context.Context, uploaderID string, limit int) ([]domain.StoredResumeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.StoredResumeResult
	for _, r := range f.results {
		if r.UploaderID == uploaderID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *resultStoreFake) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.results)
}

type storageFake struct {
	mu      sync.Mutex
	files   map[string]string
	deleted []string
	saveErr error
}

func newStorageFake() *storageFake {
	return &storageFake{files: make(map[string]string)}
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[key] = string(raw)
	return nil
}

func (f *storageFake) Path(key string) string { return "/uploads/" + key }

func (f *storageFake) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[key]
	return ok, nil
}

func (f *storageFake) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, key)
	f.deleted = append(f.deleted, key)
	return nil
}

type queueFake struct {
	mu        sync.Mutex
	published []domain.ParseRequest
	err       error
}

func (f *queueFake) Publish(_ context.Context, req domain.ParseRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, req)
	return nil
}

func (f *queueFake) Subscribe(context.Context, int, ports.JobHandler) error {
	return errors.New("not implemented")
}

// extractorFake fails with errs[i] on call i (nil entries succeed) and then
// returns text.
type extractorFake struct {
	mu    sync.Mutex
	text  string
	errs  []error
	calls int
}

func (f *extractorFake) Extract(context.Context, string, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= len(f.errs) && f.errs[f.calls-1] != nil {
		return "", f.errs[f.calls-1]
	}
	return f.text, nil
}

type recognizerFake struct {
	entities []domain.Entity
	err      error
}

func (f *recognizerFake) Recognize(context.Context, string) ([]domain.Entity, error) {
	return f.entities, f.err
}

type validatorFake struct {
	err error
}

func (f *validatorFake) Validate(domain.ParsedResume) error { return f.err }

type observerFake struct {
	mu       sync.Mutex
	started  int
	finished []string
	attempts []int
	scores   []float64
}

func (f *observerFake) ObserveQueueLag(time.Duration) {}

func (f *observerFake) StartJob() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
}

func (f *observerFake) FinishJob(status string, _ time.Duration, attempts int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished = append(f.finished, status)
	f.attempts = append(f.attempts, attempts)
}

func (f *observerFake) ObserveConfidence(c float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scores = append(f.scores, c)
}
