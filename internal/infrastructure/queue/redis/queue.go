// Package redis is a list-backed job queue: producers LPUSH, worker slots BRPOP.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/resume-parser/internal/core/domain"
	"github.com/kirillkom/resume-parser/internal/core/ports"
	"github.com/kirillkom/resume-parser/internal/infrastructure/queue/codec"
	"github.com/kirillkom/resume-parser/internal/infrastructure/resilience"
)

const (
	defaultPollTimeout = 5 * time.Second
	defaultErrorPause  = time.Second
)

type Options struct {
	PollTimeout        time.Duration
	ErrorPause         time.Duration
	ResilienceExecutor *resilience.Executor
	Logger             *slog.Logger
}

type Queue struct {
	client   goredis.UniversalClient
	key      string
	opts     Options
	executor *resilience.Executor
	logger   *slog.Logger
}

// Dial parses a redis:// URL. The connection is lazy: an unreachable server
// surfaces as poll errors, not as a startup failure.
func Dial(url, key string, opts Options) (*Queue, error) {
	parsed, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return New(goredis.NewClient(parsed), key, opts), nil
}

func New(client goredis.UniversalClient, key string, opts Options) *Queue {
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = defaultPollTimeout
	}
	if opts.ErrorPause <= 0 {
		opts.ErrorPause = defaultErrorPause
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		client:   client,
		key:      key,
		opts:     opts,
		executor: opts.ResilienceExecutor,
		logger:   logger,
	}
}

func (q *Queue) Close() error {
	return q.client.Close()
}

func (q *Queue) Publish(ctx context.Context, req domain.ParseRequest) error {
	payload, err := codec.Encode(req)
	if err != nil {
		return err
	}
	call := func(ctx context.Context) error {
		if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
			return fmt.Errorf("redis lpush: %w", err)
		}
		return nil
	}

	if q.executor != nil {
		err = q.executor.Execute(ctx, "redis.publish", call, classifyRedisError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		return domain.WrapError(domain.ErrTemporary, "redis publish", err)
	}
	return nil
}

// Subscribe runs one BRPOP loop per slot until ctx is done. Connection errors
// are logged and retried after a pause; they never end the subscription.
func (q *Queue) Subscribe(ctx context.Context, slots int, handler ports.JobHandler) error {
	if slots <= 0 {
		slots = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	for slot := 0; slot < slots; slot++ {
		g.Go(func() error {
			q.poll(gctx, slot, handler)
			return nil
		})
	}
	return g.Wait()
}

func (q *Queue) poll(ctx context.Context, slot int, handler ports.JobHandler) {
	for ctx.Err() == nil {
		res, err := q.client.BRPop(ctx, q.opts.PollTimeout, q.key).Result()
		switch {
		case errors.Is(err, goredis.Nil):
			continue
		case err != nil:
			if ctx.Err() != nil {
				return
			}
			q.logger.Debug("queue_poll_failed", "backend", "redis", "slot", slot, "error", err)
			sleep(ctx, q.opts.ErrorPause)
			continue
		}
		if len(res) != 2 {
			continue
		}

		req, err := codec.Decode([]byte(res[1]))
		if err != nil {
			q.logger.Error("queue_message_dropped", "backend", "redis", "error", err)
			continue
		}
		if err := handler(ctx, req); err != nil {
			q.logger.Error("job_handler_failed", "backend", "redis", "job_id", req.JobID, "error", err)
		}
	}
}

func classifyRedisError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	var redisErr goredis.Error
	if errors.As(err, &redisErr) {
		// Server replies such as WRONGTYPE will not change on retry.
		return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
