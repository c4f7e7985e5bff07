package errors

import (
	"errors"
	"fmt"
)

// Generic error types shared by every layer

var (
	// ErrNotFound indicates a resource was not found locally or remotely
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists indicates a resource with the same identity already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the remote provider rejected our credentials
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInternal indicates an internal error
	ErrInternal = errors.New("internal error")

	// ErrTimeout indicates an operation timeout
	ErrTimeout = errors.New("operation timeout")

	// ErrUnavailable indicates a dependency is unreachable
	ErrUnavailable = errors.New("service unavailable")
)

// Voice provider errors

var (
	// ErrUnexpectedStatus indicates the provider answered with a status we do not treat as success
	ErrUnexpectedStatus = errors.New("unexpected provider status")

	// ErrMalformedResponse indicates the provider body could not be decoded
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrConflictExhausted indicates every create attempt hit a name conflict
	ErrConflictExhausted = errors.New("name conflict retries exhausted")

	// ErrNoUpdates indicates an update call carried no fields
	ErrNoUpdates = errors.New("no updates provided")

	// ErrRateLimited indicates HTTP 429 or local throttling
	ErrRateLimited = errors.New("provider rate limited the request")
)

// Prompt errors

var (
	// ErrComposition indicates the composed prompt could not be produced
	ErrComposition = errors.New("prompt composition failed")
)

// Lock errors

var (
	// ErrLockLost indicates a lock expired and may now belong to another holder
	ErrLockLost = errors.New("lock no longer held")
)

// DomainError wraps an error with additional context
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error with field-specific details
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Unwrap lets callers match validation failures against ErrInvalidInput
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join wraps several errors into one
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
