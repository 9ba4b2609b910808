// Package schema defines the value types produced by schema loading and
// reference resolution: a parsed-but-unresolved document, a fully
// dereferenced document, and the identifier normalization that decides
// when two schema URIs name the same document.
package schema

import (
	"net/url"
	"strings"
)

// Unresolved is a parsed schema document whose $ref keywords have not been
// dereferenced yet. Content is the generic JSON tree (map[string]any,
// []any, scalars). Errors collects load and parse failures in the order
// they were observed. Immutable once created.
type Unresolved struct {
	Content any
	Errors  []string
}

// NewUnresolved builds an unresolved schema. A nil content is replaced by
// an empty object so failed loads still carry a usable placeholder tree.
func NewUnresolved(content any, errs []string) *Unresolved {
	if content == nil {
		content = map[string]any{}
	}
	return &Unresolved{Content: content, Errors: errs}
}

// Resolved is a schema tree in which every reachable $ref has been replaced
// by merged content. Errors concatenates load errors, dialect warnings and
// reference-resolution errors in discovery order.
type Resolved struct {
	Content any
	Errors  []string
}

// NewResolved builds a resolved schema.
func NewResolved(content any, errs []string) *Resolved {
	if content == nil {
		content = map[string]any{}
	}
	return &Resolved{Content: content, Errors: errs}
}

// NormalizeID returns the canonical form of a schema identifier: scheme and
// host are lowercased and a trailing fragment marker is stripped. Dot
// segments are deliberately left alone; identifier equality is plain string
// equality of normalized forms. Unparseable identifiers are returned as
// given.
func NormalizeID(id string) string {
	id = strings.TrimSuffix(id, "#")
	parsed, err := url.Parse(id)
	if err != nil || parsed.Scheme == "" {
		return id
	}
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	return parsed.String()
}

// IsAbsoluteURI reports whether ref carries a scheme, i.e. it does not need
// to be resolved against a base document location first.
func IsAbsoluteURI(ref string) bool {
	parsed, err := url.Parse(ref)
	return err == nil && parsed.Scheme != ""
}

// DeepCopy clones a generic JSON tree. Resolution mutates trees in place;
// copying at every merge point keeps handle caches pristine and keeps the
// working tree acyclic, so traversal always terminates.
func DeepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = DeepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = DeepCopy(val)
		}
		return out
	default:
		return v
	}
}
