package main

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured means the provider credentials are absent. This
	// is fatal at startup and a 500 if it somehow surfaces per request.
	ErrNotConfigured = errors.New("verification provider credentials not configured")

	// ErrNotFound means the provider has no data for the given
	// transaction reference.
	ErrNotFound = errors.New("unknown transaction reference")

	// ErrBadRequest means a required parameter was missing from the
	// caller's request.
	ErrBadRequest = errors.New("missing required parameter")
)

// UpstreamError carries the provider's HTTP status and body so the
// relay can surface the original status to the caller where possible.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.Status, e.Body)
}
