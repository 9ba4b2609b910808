package fetch

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure patterns. These allow errors.Is()
// checks while the typed errors below carry the details.
var (
	// ErrNotFound is returned when no schema exists for a URI.
	ErrNotFound = errors.New("schema not found")

	// ErrUnsupportedScheme is returned when no fetcher handles a URI scheme.
	ErrUnsupportedScheme = errors.New("unsupported URI scheme")
)

// NotFoundError indicates that a URI has no schema behind it.
type NotFoundError struct {
	URI string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("schema not found: %s", e.URI)
}

// Is implements error matching for errors.Is() checks.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// UnsupportedSchemeError indicates a URI whose scheme no fetcher serves.
type UnsupportedSchemeError struct {
	URI string
}

func (e *UnsupportedSchemeError) Error() string {
	return fmt.Sprintf("unsupported URI scheme: %s", e.URI)
}

// Is implements error matching for errors.Is() checks.
func (e *UnsupportedSchemeError) Is(target error) bool {
	return target == ErrUnsupportedScheme
}

// StatusError indicates a non-success HTTP response.
type StatusError struct {
	URI        string
	Status     string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %s fetching %s", e.Status, e.URI)
}

// SizeLimitExceededError indicates a response body larger than the
// configured limit.
type SizeLimitExceededError struct {
	Limit int64
	Read  int64
}

func (e *SizeLimitExceededError) Error() string {
	return fmt.Sprintf("size limit of %d bytes exceeded after reading %d bytes", e.Limit, e.Read)
}
