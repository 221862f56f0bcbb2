package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// It also covers "exists but not owned by the caller" so ownership
	// checks never leak resource existence.
	ErrNotFound = errors.New("resource not found")
	// ErrUnauthorized signals a missing or invalid owner principal.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidInput covers missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict signals a uniqueness violation, most commonly a duplicate
	// username within one application.
	ErrConflict = errors.New("conflict")
	// ErrIdempotencyConflict is returned when an Idempotency-Key is replayed
	// with a different request payload.
	ErrIdempotencyConflict = errors.New("idempotency conflict")
	// ErrVarReadOnly rejects overwriting a user var stored with read_only set.
	ErrVarReadOnly = errors.New("user var is read-only")
)
