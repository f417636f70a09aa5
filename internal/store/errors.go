package store

import "errors"

// Sentinel errors the API layer maps onto HTTP statuses. Wrap them with
// fmt.Errorf("...: %w", Err...) so callers can errors.Is on the category.
var (
	// ErrNotFound means a referenced room, course, user or booking does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation means the request was malformed or missing required fields.
	ErrValidation = errors.New("validation failed")
	// ErrConflict means the requested slot overlaps an existing booking or
	// maintenance period. The caller should re-fetch availability and retry
	// with a different slot.
	ErrConflict = errors.New("slot conflict")
	// ErrInvalidTransition means the booking status change is not allowed.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrForbidden means the actor may not perform the operation on this record.
	ErrForbidden = errors.New("forbidden")
)
