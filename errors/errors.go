package errors

import "errors"

// Sentinel errors for common failure conditions. Callers wrap these with
// fmt.Errorf("...: %w", Err...) and match with errors.Is.
var (
	// ErrTransport indicates an HTTP or network-level failure.
	ErrTransport = errors.New("transport failure")

	// ErrUpstreamStatus indicates a non-success HTTP status from an upstream service.
	ErrUpstreamStatus = errors.New("upstream returned non-success status")

	// ErrDecode indicates a malformed or unexpected response shape.
	ErrDecode = errors.New("response decode failure")

	// ErrNotFound indicates that a store path or table is absent.
	ErrNotFound = errors.New("resource not found")

	// ErrLookup indicates a relational query failure.
	ErrLookup = errors.New("lookup failure")

	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = errors.New("invalid input")
)
