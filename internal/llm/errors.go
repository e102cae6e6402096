package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// FailureReason classifies why a model call produced no records.
type FailureReason string

const (
	ReasonNetwork     FailureReason = "network"
	ReasonTimeout     FailureReason = "timeout"
	ReasonMalformed   FailureReason = "malformed"
	ReasonStatus      FailureReason = "status"
	ReasonUnavailable FailureReason = "unavailable"
)

// ErrMalformed marks responses that could not be decoded into records.
var ErrMalformed = errors.New("malformed model response")

// ErrNoBackend is returned when no provider is configured.
var ErrNoBackend = errors.New("no extraction backend configured")

// ExtractionFailure is the single error type ExtractRecords returns.
type ExtractionFailure struct {
	Reason  FailureReason
	Backend string
	Err     error
}

func (e *ExtractionFailure) Error() string {
	if e.Backend == "" {
		return fmt.Sprintf("extraction failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction failed via %s (%s): %v", e.Backend, e.Reason, e.Err)
}

func (e *ExtractionFailure) Unwrap() error { return e.Err }

// StatusError is a non-2xx HTTP answer from a provider.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("non-2xx status %d: %s", e.Code, truncate(e.Body, 512))
}

// AsFailure wraps err in an ExtractionFailure, keeping an existing one as is.
func AsFailure(err error, backend string) *ExtractionFailure {
	if err == nil {
		return nil
	}
	var f *ExtractionFailure
	if errors.As(err, &f) {
		return f
	}
	return &ExtractionFailure{Reason: reasonFor(err), Backend: backend, Err: err}
}

func reasonFor(err error) FailureReason {
	var (
		netErr    net.Error
		statusErr *StatusError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return ReasonTimeout
	case errors.Is(err, ErrMalformed):
		return ReasonMalformed
	case errors.As(err, &statusErr):
		return ReasonStatus
	case errors.Is(err, ErrNoBackend):
		return ReasonUnavailable
	default:
		return ReasonNetwork
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
