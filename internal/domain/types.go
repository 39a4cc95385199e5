// Package domain holds the failure taxonomy and result shape shared by the
// world and article services.
package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/codice-do-criador/codice/internal/permissions"
	"github.com/codice-do-criador/codice/pkg/interfaces"
)

// ErrNotFound is wrapped by every "not found" sentinel.
var ErrNotFound = errors.New("not found")

// NotFound returns a sentinel for a missing resource that unwraps to
// ErrNotFound, e.g. NotFound("worlds", "world").
func NotFound(pkg, resource string) error {
	return fmt.Errorf("%s: %s %w", pkg, resource, ErrNotFound)
}

// ValidationError is a failure the caller can correct. Message is safe to
// show to end users.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Invalid wraps sentinel in a ValidationError.
func Invalid(sentinel error, field, message string) error {
	return &ValidationError{Field: field, Message: message, Err: sentinel}
}

// Result is the uniform outcome of a mutating operation. Validation,
// authorization and not-found failures carry a message; storage failures
// carry a generic one.
type Result struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	ID      uuid.UUID `json:"id,omitempty"`
	Slug    string    `json:"slug,omitempty"`
}

const (
	MessagePermissionDenied = "You do not have permission to perform this action."
	MessageNotFound         = "The requested resource does not exist."
	MessageInternal         = "An internal error occurred. Please try again."
)

// Succeeded returns a success result.
func Succeeded(id uuid.UUID, slug, message string) Result {
	return Result{Success: true, ID: id, Slug: slug, Message: message}
}

// Failed converts err into a failure result. Errors that are not validation,
// authorization or not-found failures are logged under op and reported with
// MessageInternal.
func Failed(logger interfaces.Logger, op string, err error) Result {
	return Result{Message: Message(logger, op, err)}
}

// Message returns the user-facing text for err.
func Message(logger interfaces.Logger, op string, err error) string {
	var validation *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &validation):
		return validation.Message
	case errors.Is(err, permissions.ErrPermissionDenied):
		return MessagePermissionDenied
	case errors.Is(err, ErrNotFound):
		return MessageNotFound
	}
	if logger != nil {
		logger.Error(op+".failed", "error", err)
	}
	return MessageInternal
}

// IsInternal reports whether err would be reported as an internal failure.
func IsInternal(err error) bool {
	var validation *ValidationError
	return err != nil &&
		!errors.As(err, &validation) &&
		!errors.Is(err, permissions.ErrPermissionDenied) &&
		!errors.Is(err, ErrNotFound)
}
