// Package filestore keeps jobs and results in one JSON document on disk.
//
// Every mutation goes through a single writer goroutine, which applies it to
// the in-memory document and then writes a temp file that is renamed over the
// store file. Concurrent completions never interleave and a crash never
// leaves a partial file. The file is re-read when another process changed it;
// concurrent writers in different processes are not coordinated, so shared
// multi-process deployments should use the Postgres store.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kirillkom/resume-parser/internal/core/domain"
)

type document struct {
	Resumes map[string]domain.StoredResumeResult `json:"resumes"`
	Jobs    map[string]domain.ParseJob           `json:"jobs"`
}

type mutation struct {
	apply func(*document) error
	reply chan error
}

type Store struct {
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	doc     document
	modTime time.Time
	size    int64

	writes   chan mutation
	stop     chan struct{}
	finished chan struct{}
	once     sync.Once
}

func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	s := &Store{
		path:     path,
		logger:   logger,
		doc:      emptyDocument(),
		writes:   make(chan mutation),
		stop:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	if err := s.reloadLocked(true); err != nil {
		return nil, err
	}
	go s.writer()
	return s, nil
}

// Close stops the writer after pending mutations are applied.
func (s *Store) Close() error {
	s.once.Do(func() { close(s.stop) })
	<-s.finished
	return nil
}

func (s *Store) Jobs() *JobRepository {
	return &JobRepository{store: s}
}

func (s *Store) Results() *ResultRepository {
	return &ResultRepository{store: s}
}

func (s *Store) writer() {
	defer close(s.finished)
	for {
		select {
		case m := <-s.writes:
			m.reply <- s.applyAndPersist(m.apply)
		case <-s.stop:
			return
		}
	}
}

func (s *Store) applyAndPersist(apply func(*document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.reloadLocked(false); err != nil {
		return err
	}
	next := s.doc.clone()
	if err := apply(&next); err != nil {
		return err
	}
	if err := s.persistLocked(next); err != nil {
		return domain.WrapError(domain.ErrPersistenceFailed, "write store", err)
	}
	s.doc = next
	return nil
}

// mutate hands apply to the writer goroutine and waits for the outcome.
func (s *Store) mutate(ctx context.Context, apply func(*document) error) error {
	m := mutation{apply: apply, reply: make(chan error, 1)}
	select {
	case s.writes <- m:
	case <-s.stop:
		return domain.WrapError(domain.ErrPersistenceFailed, "write store", errors.New("store closed"))
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-m.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) read(fn func(*document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reloadLocked(false); err != nil {
		return err
	}
	return fn(&s.doc)
}

func (s *Store) persistLocked(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("rename store file: %w", err)
	}

	if info, err := os.Stat(s.path); err == nil {
		s.modTime, s.size = info.ModTime(), info.Size()
	}
	return nil
}

// reloadLocked re-reads the file when it changed since the last read or write.
func (s *Store) reloadLocked(force bool) error {
	info, err := os.Stat(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return domain.WrapError(domain.ErrPersistenceFailed, "stat store", err)
	}
	if !force && info.ModTime().Equal(s.modTime) && info.Size() == s.size {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return domain.WrapError(domain.ErrPersistenceFailed, "read store", err)
	}
	doc := emptyDocument()
	if len(data) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return domain.WrapError(domain.ErrPersistenceFailed, "decode store", err)
		}
	}
	if doc.Resumes == nil {
		doc.Resumes = map[string]domain.StoredResumeResult{}
	}
	if doc.Jobs == nil {
		doc.Jobs = map[string]domain.ParseJob{}
	}
	s.doc, s.modTime, s.size = doc, info.ModTime(), info.Size()
	if !force {
		s.logger.Debug("store_reloaded", "path", s.path, "jobs", len(doc.Jobs), "resumes", len(doc.Resumes))
	}
	return nil
}

func emptyDocument() document {
	return document{
		Resumes: map[string]domain.StoredResumeResult{},
		Jobs:    map[string]domain.ParseJob{},
	}
}

// clone copies the maps; values are replaced, never mutated in place.
func (d document) clone() document {
	out := document{
		Resumes: make(map[string]domain.StoredResumeResult, len(d.Resumes)),
		Jobs:    make(map[string]domain.ParseJob, len(d.Jobs)),
	}
	for k, v := range d.Resumes {
		out.Resumes[k] = v
	}
	for k, v := range d.Jobs {
		out.Jobs[k] = v
	}
	return out
}
