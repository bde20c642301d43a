// Package apperrors defines the error taxonomy shared by all domains.
// Services return these types; the HTTP layer maps them to status codes.
package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError reports bad input shape or range, detected before any
// storage access (e.g. pagination bounds, unknown filter field).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError reports a uniqueness violation, whether pre-checked or
// detected by a storage constraint.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// UnauthorizedError reports a credential or token failure. The message is
// deliberately generic so callers cannot enumerate accounts.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string { return e.Message }

// NotFoundError reports that a referenced entity is absent for the caller's
// scope.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// BadRequestError reports a request that cannot be fulfilled without leaking
// internals about why.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string { return e.Message }

// RepositoryError wraps any lower-level storage failure together with the
// failing operation name. Callers never inspect driver error shapes directly.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string { return fmt.Sprintf("repository %s: %v", e.Op, e.Err) }
func (e *RepositoryError) Unwrap() error { return e.Err }

// UpstreamError wraps object-storage or signing failures.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("upstream %s: %v", e.Op, e.Err) }
func (e *UpstreamError) Unwrap() error { return e.Err }

// Constructors. Domain packages build their sentinel errors from these.

func Validation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(msg string) error {
	return &UnauthorizedError{Message: msg}
}

func NotFound(format string, args ...any) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

func BadRequest(msg string) error {
	return &BadRequestError{Message: msg}
}

func Repository(op string, err error) error {
	return &RepositoryError{Op: op, Err: err}
}

func Upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

func IsUnauthorized(err error) bool {
	var e *UnauthorizedError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsBadRequest(err error) bool {
	var e *BadRequestError
	return errors.As(err, &e)
}
