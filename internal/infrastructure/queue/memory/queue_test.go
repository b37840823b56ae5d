package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kirillkom/resume-parser/internal/core/domain"
)

func TestSubscribeBoundsConcurrencyBySlots(t *testing.T) {
	q := New(16, nil)
	for i := 0; i < 6; i++ {
		if err := q.Publish(context.Background(), domain.ParseRequest{JobID: string(rune('a' + i))}); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}

	var (
		inFlight, peak atomic.Int32
		mu             sync.Mutex
		seen           = map[string]bool{}
		wg             sync.WaitGroup
	)
	wg.Add(6)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- q.Subscribe(ctx, 2, func(_ context.Context, req domain.ParseRequest) error {
			defer wg.Done()
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			mu.Lock()
			seen[req.JobID] = true
			mu.Unlock()
			return errors.New("handler errors are logged only")
		})
	}()

	wg.Wait()
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if len(seen) != 6 {
		t.Fatalf("expected 6 handled jobs, got %d", len(seen))
	}
	if peak.Load() > 2 {
		t.Fatalf("expected at most 2 concurrent handlers, got %d", peak.Load())
	}
}

func TestPublishFullQueueIsTemporary(t *testing.T) {
	q := New(1, nil)
	if err := q.Publish(context.Background(), domain.ParseRequest{JobID: "a"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	err := q.Publish(context.Background(), domain.ParseRequest{JobID: "b"})
	if !errors.Is(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}
	if q.Len() != 1 {
		t.Fatalf("Len() = %d", q.Len())
	}
}
