package redis

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kirillkom/resume-parser/internal/core/domain"
)

func TestClassifyRedisError(t *testing.T) {
	if c := classifyRedisError(io.EOF); !c.Retryable {
		t.Fatalf("network error should be retryable: %+v", c)
	}
	if c := classifyRedisError(context.Canceled); c.Retryable || c.RecordFailure {
		t.Fatalf("context error should be ignored: %+v", c)
	}
}

func TestPublishUnreachableIsTemporary(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	q := New(client, "jobs", Options{})
	defer q.Close()

	err := q.Publish(context.Background(), domain.ParseRequest{JobID: "job-1"})
	if !errors.Is(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}
}

func TestSubscribeSurvivesUnreachableServer(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 20 * time.Millisecond,
		MaxRetries:  -1,
	})
	q := New(client, "jobs", Options{PollTimeout: 10 * time.Millisecond, ErrorPause: 5 * time.Millisecond})
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	called := false
	err := q.Subscribe(ctx, 2, func(context.Context, domain.ParseRequest) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if called {
		t.Fatal("handler must not run without messages")
	}
}
