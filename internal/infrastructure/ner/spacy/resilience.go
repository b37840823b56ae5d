package spacy

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/kirillkom/resume-parser/internal/core/domain"
	"github.com/kirillkom/resume-parser/internal/infrastructure/resilience"
)

type failureClass int

const (
	// failureFatal covers responses that repeat for every chunk, such as a
	// wrong path or a broken model.
	failureFatal failureClass = iota
	failureTransient
	// failureChunkRejected means the service refused this chunk only.
	failureChunkRejected
)

var statusClasses = map[int]failureClass{
	http.StatusRequestTimeout:        failureTransient,
	http.StatusTooManyRequests:       failureTransient,
	http.StatusInternalServerError:   failureTransient,
	http.StatusBadGateway:            failureTransient,
	http.StatusServiceUnavailable:    failureTransient,
	http.StatusGatewayTimeout:        failureTransient,
	http.StatusRequestEntityTooLarge: failureChunkRejected,
	http.StatusUnprocessableEntity:   failureChunkRejected,
}

// ServiceError is a non-2xx answer from the NER service.
type ServiceError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ServiceError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("ner service: %s", e.Status)
	}
	return fmt.Sprintf("ner service: %s: %s", e.Status, body)
}

func (e *ServiceError) class() failureClass {
	if c, ok := statusClasses[e.StatusCode]; ok {
		return c
	}
	return failureFatal
}

func isChunkRejected(err error) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr) && svcErr.class() == failureChunkRejected
}

// classifyNERError keeps chunk rejections away from the breaker: the service
// answered, so it is healthy.
func classifyNERError(err error) resilience.ErrorClassification {
	switch {
	case err == nil:
		return resilience.ErrorClassification{}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resilience.ErrorClassification{}
	case resilience.IsCircuitOpen(err):
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		switch svcErr.class() {
		case failureTransient:
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		case failureChunkRejected:
			return resilience.ErrorClassification{}
		default:
			return resilience.ErrorClassification{RecordFailure: true}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{RecordFailure: true}
}

// recognizeError tags failures a later call may not hit as ErrTemporary.
func recognizeError(err error) error {
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyNERError(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, "ner recognize", err)
	}
	return fmt.Errorf("ner recognize: %w", err)
}
