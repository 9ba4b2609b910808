// Package fetch retrieves raw schema text for a URI. Implementations cover
// HTTP(S) with retries and size limits, local files, and in-memory maps;
// Mux composes them by scheme.
package fetch

import "context"

// Fetcher retrieves the raw text of a schema document. A transport, IO or
// status failure is returned as an error; an empty string with a nil error
// means the document exists but has no content.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (string, error)
}
