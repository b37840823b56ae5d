// Package memory is an in-process job queue for tests and single-binary runs.
package memory

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/resume-parser/internal/core/domain"
	"github.com/kirillkom/resume-parser/internal/core/ports"
)

const defaultCapacity = 1024

type Queue struct {
	ch     chan domain.ParseRequest
	logger *slog.Logger
}

func New(capacity int, logger *slog.Logger) *Queue {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{ch: make(chan domain.ParseRequest, capacity), logger: logger}
}

// Publish fails with domain.ErrTemporary when the buffer is full.
func (q *Queue) Publish(ctx context.Context, req domain.ParseRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q.ch <- req:
		return nil
	default:
		return domain.WrapError(domain.ErrTemporary, "memory publish", fmt.Errorf("queue full (%d)", cap(q.ch)))
	}
}

func (q *Queue) Len() int {
	return len(q.ch)
}

func (q *Queue) Subscribe(ctx context.Context, slots int, handler ports.JobHandler) error {
	if slots <= 0 {
		slots = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < slots; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case req := <-q.ch:
					if err := handler(gctx, req); err != nil {
						q.logger.Error("job_handler_failed", "backend", "memory", "job_id", req.JobID, "error", err)
					}
				}
			}
		})
	}
	return g.Wait()
}
