package resilience

import (
	"context"
	"errors"
)

// RetryUnless retries every error except context cancellation and the given
// permanent kinds. All failures count against the breaker.
func RetryUnless(permanent ...error) ErrorClassifier {
	return func(err error) ErrorClassification {
		if err == nil {
			return ErrorClassification{}
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return ErrorClassification{Retryable: false, RecordFailure: false}
		}
		for _, kind := range permanent {
			if errors.Is(err, kind) {
				return ErrorClassification{Retryable: false, RecordFailure: true}
			}
		}
		return ErrorClassification{Retryable: true, RecordFailure: true}
	}
}

// Retry runs fn with RetryUnless(permanent...) as the classifier.
func (e *Executor) Retry(ctx context.Context, operation string, fn func(context.Context) error, permanent ...error) error {
	return e.Execute(ctx, operation, fn, RetryUnless(permanent...))
}
