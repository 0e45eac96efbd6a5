package models

import (
	"errors"
	"fmt"
)

// Shared error taxonomy. Store implementations map their native failures
// onto these sentinels so callers can classify with errors.Is without
// knowing which backend produced the failure.
var (
	// ErrValidation marks malformed input, caught before any store call.
	ErrValidation = errors.New("invalid input")

	// ErrNotAuthenticated marks an operation attempted without an active
	// identity, or a rejected credential/session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrInvalidCredentials is returned on login with a wrong email/password
	// pair. It matches ErrNotAuthenticated under errors.Is.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrNotAuthenticated)

	// ErrNotFound marks an operation targeting an id absent from memory or
	// from the backing store.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a duplicate account email or a concurrent
	// conflicting operation on the same record.
	ErrConflict = errors.New("conflict")

	// ErrTransport marks a network or backend availability failure.
	ErrTransport = errors.New("transport failure")

	// ErrRateLimited marks backend throttling.
	ErrRateLimited = errors.New("rate limited")

	// ErrPersistence marks a local-store serialization or driver failure
	// (guest mode only).
	ErrPersistence = errors.New("persistence failure")
)

// ValidationError carries the offending field alongside ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) succeed for ValidationError values.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
