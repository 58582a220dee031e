package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for classifying domain failures.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state transition")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
)

// DomainError wraps a sentinel with a human-readable message so handlers can
// map business failures to HTTP status codes without string matching.
type DomainError struct {
	Err     error
	Message string
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Unwrap() error { return e.Err }

// NewNotFoundError reports a missing entity by type and identifier.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s %s not found", entity, id),
	}
}

// NewInvalidStateError reports an illegal state machine transition.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{
		Err:     ErrInvalidState,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewConflictError reports a lost optimistic-lock race.
func NewConflictError(message string) *DomainError {
	return &DomainError{Err: ErrConflict, Message: message}
}

// NewValidationError reports invalid input caught at the domain boundary.
func NewValidationError(message string) *DomainError {
	return &DomainError{Err: ErrValidation, Message: message}
}

// IsNotFound reports whether err is a not-found domain error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err is an optimistic-lock conflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsInvalidState reports whether err is an illegal transition.
func IsInvalidState(err error) bool { return errors.Is(err, ErrInvalidState) }

// IsValidation reports whether err is a boundary validation failure.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
