package hume

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"

	"humesync/pkg/errors"
)

// Failure classifies why a provider call did not succeed
type Failure string

const (
	FailureTimeout           Failure = "timeout"
	FailureConnection        Failure = "connection"
	FailureUnexpectedStatus  Failure = "unexpected_status"
	FailureMalformedBody     Failure = "malformed_body"
	FailureConflictExhausted Failure = "conflict_exhausted"
	FailureNoUpdates         Failure = "no_updates"
	FailureRateLimited       Failure = "rate_limited"
)

// Outcome is the caller-facing view of a provider call result
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeTransient Outcome = "transient"
	OutcomePermanent Outcome = "permanent"
)

// Error is returned by the Do* methods
type Error struct {
	Op         string
	Kind       Failure
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("hume %s: %s (status %d): %v", e.Op, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("hume %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// statusError builds the error for a non-success HTTP status
func statusError(op string, status int, body []byte) *Error {
	var sentinel error
	switch {
	case status == http.StatusNotFound:
		sentinel = errors.ErrNotFound
	case status == http.StatusConflict:
		sentinel = errors.ErrAlreadyExists
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		sentinel = errors.ErrUnauthorized
	case status == http.StatusTooManyRequests:
		sentinel = errors.ErrRateLimited
	case status >= 500:
		sentinel = errors.ErrUnavailable
	default:
		sentinel = errors.ErrUnexpectedStatus
	}
	return &Error{
		Op:         op,
		Kind:       FailureUnexpectedStatus,
		StatusCode: status,
		Body:       string(body),
		Err:        sentinel,
	}
}

// transportError builds the error for a request that got no response
func transportError(op string, err error) *Error {
	if isTimeout(err) {
		return &Error{Op: op, Kind: FailureTimeout, Err: errors.Wrap(errors.ErrTimeout, err.Error())}
	}
	return &Error{Op: op, Kind: FailureConnection, Err: errors.Wrap(errors.ErrUnavailable, err.Error())}
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

// IsConflict reports whether err is an HTTP 409 from the provider
func IsConflict(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.StatusCode == http.StatusConflict
}

// Classify maps a Do* error onto the outcome callers branch on
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	var e *Error
	if !errors.As(err, &e) {
		return OutcomePermanent
	}
	switch e.Kind {
	case FailureTimeout, FailureConnection, FailureRateLimited:
		return OutcomeTransient
	case FailureUnexpectedStatus:
		switch {
		case e.StatusCode == http.StatusNotFound:
			return OutcomeNotFound
		case e.StatusCode == http.StatusTooManyRequests, e.StatusCode >= 500:
			return OutcomeTransient
		}
	}
	return OutcomePermanent
}
