package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyQuery indicates a degenerate query at an outer boundary.
	// Inside the engine an empty query is a silent no-op, never an error.
	ErrEmptyQuery = errors.New("empty query")

	// ErrStoreClosed indicates the message store has been closed.
	ErrStoreClosed = errors.New("store closed")

	// ErrNoHistory indicates the requested conversation has no stored
	// history to search.
	ErrNoHistory = errors.New("no history for conversation")
)
