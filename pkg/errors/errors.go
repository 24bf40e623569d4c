package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict     = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	// Business-rule violations surfaced verbatim to the caller.
	ErrInvalidInput               = New("INVALID_INPUT", http.StatusUnprocessableEntity, "invalid time or container input")
	ErrIncompleteNewRecord        = New("INCOMPLETE_NEW_RECORD", http.StatusUnprocessableEntity, "new records require pricing and containers together")
	ErrMissingPricingOrContainers = New("MISSING_PRICING_OR_CONTAINERS", http.StatusUnprocessableEntity, "time updates require a pricing combination and a container value")
	ErrImmutableNonWorkingRecord  = New("IMMUTABLE_NON_WORKING_RECORD", http.StatusConflict, "only a status change is allowed on a non-working day")

	// Configuration gap requiring administrator action.
	ErrNoScheduleFound = New("NO_SCHEDULE_FOUND", http.StatusNotFound, "no working schedule configured at any scope")

	// Boundary failures. Callers see a generic message, details are logged.
	ErrExternalSystem = New("EXTERNAL_SYSTEM_ERROR", http.StatusBadGateway, "payroll system call failed")
	ErrPersistence    = New("PERSISTENCE_ERROR", http.StatusInternalServerError, "persistence operation failed")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
