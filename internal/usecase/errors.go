package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrorInvalidInput        ErrorCode = "INVALID_INPUT"
	ErrorOutOfScope          ErrorCode = "OUT_OF_SCOPE"
	ErrorUpstreamEmpty       ErrorCode = "UPSTREAM_EMPTY"
	ErrorUpstreamMalformed   ErrorCode = "UPSTREAM_MALFORMED"
	ErrorUpstreamUnreachable ErrorCode = "UPSTREAM_UNREACHABLE"
	ErrorInternal            ErrorCode = "INTERNAL_ERROR"
)

// Upstream reports whether the code describes a failed model call.
func (c ErrorCode) Upstream() bool {
	switch c {
	case ErrorUpstreamEmpty, ErrorUpstreamMalformed, ErrorUpstreamUnreachable:
		return true
	}
	return false
}

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Message is the client-facing text. Every upstream failure collapses into
// one generation error carrying the root cause.
func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	if e.Code.Upstream() {
		return "Error generating form: " + e.cause()
	}
	if e.Err != nil && e.Code == ErrorInvalidInput {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *Error) cause() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Reason
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

// InvalidInput builds a validation error for the transport boundary.
func InvalidInput(reason string, err error) *Error {
	return newError(ErrorInvalidInput, reason, err)
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}

// classifyModelError maps a failed model call to an unreachable error,
// keeping timeouts and rate limits visible in the reason.
func classifyModelError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(ErrorUpstreamUnreachable, "model_timeout", err)
	}
	if status, ok := upstreamStatusCode(err); ok && status == http.StatusTooManyRequests {
		return newError(ErrorUpstreamUnreachable, "model_rate_limited", err)
	}
	return newError(ErrorUpstreamUnreachable, "model_error", err)
}
