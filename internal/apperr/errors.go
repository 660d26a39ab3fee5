// Package apperr holds the error kinds surfaced by the order workflows and
// their mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError means caller-supplied data violates a business rule.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError means a referenced entity does not exist.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// RuntimeError wraps an unexpected failure of the store, the mail transport
// or a payment adapter.
type RuntimeError struct {
	Message string
	Cause   error
}

func (e *RuntimeError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

func Validation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// Runtime wraps cause unless it already carries one of the kinds above, so
// the first classified error travels unchanged to the handler.
func Runtime(message string, cause error) error {
	if IsClassified(cause) {
		return cause
	}
	return &RuntimeError{Message: message, Cause: cause}
}

func IsClassified(err error) bool {
	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		runtimeErr    *RuntimeError
	)
	return errors.As(err, &validationErr) || errors.As(err, &notFoundErr) || errors.As(err, &runtimeErr)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// Status maps an error onto the HTTP status the handlers respond with.
func Status(err error) int {
	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text safe to return to clients.
func PublicMessage(err error) string {
	var runtimeErr *RuntimeError
	if errors.As(err, &runtimeErr) {
		return runtimeErr.Message
	}
	if IsClassified(err) {
		return err.Error()
	}
	return "internal server error"
}
