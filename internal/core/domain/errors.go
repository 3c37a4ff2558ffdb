package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist or has expired.
	ErrNotFound = errors.New("not found")

	// ErrNotLoaded indicates a document is not present in the document store.
	// The caller should load it before requesting sections or searching.
	ErrNotLoaded = errors.New("document not loaded")

	// ErrSectionNotFound indicates a section selector matched nothing in a
	// loaded document. The caller should consult the table of contents.
	ErrSectionNotFound = errors.New("section not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates a configuration constraint was violated at
	// construction time. This is fatal at startup, never at runtime.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUpstreamUnavailable indicates the upstream API failed transiently
	// (timeout, connection error, 5xx). Counted by the circuit breaker.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
