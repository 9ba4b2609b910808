package fetch

import (
	"context"
	"strings"
)

// Map is an in-memory Fetcher keyed by exact URI. It backs tests and
// embedded schema sets.
type Map map[string]string

// Fetch implements Fetcher.
func (m Map) Fetch(_ context.Context, uri string) (string, error) {
	if text, ok := m[uri]; ok {
		return text, nil
	}
	return "", &NotFoundError{URI: uri}
}

// Mux routes fetches to other fetchers by URI scheme.
type Mux map[string]Fetcher

// Fetch implements Fetcher, dispatching on the scheme prefix of the URI.
func (m Mux) Fetch(ctx context.Context, uri string) (string, error) {
	scheme, _, found := strings.Cut(uri, ":")
	if !found {
		return "", &UnsupportedSchemeError{URI: uri}
	}
	f, ok := m[scheme]
	if !ok {
		return "", &UnsupportedSchemeError{URI: uri}
	}
	return f.Fetch(ctx, uri)
}

// Default returns the fetcher the registry uses when none is configured:
// HTTP(S) with retries plus local files.
func Default() Fetcher {
	h := NewHTTP()
	return Mux{
		"http":  h,
		"https": h,
		"file":  NewFile(),
	}
}
