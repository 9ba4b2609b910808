package parser

import "net/url"

// URLResolver is the default PathResolver, built on net/url reference
// resolution. It is permissive: anything that fails to parse is returned
// unchanged rather than reported, matching the best-effort contract of the
// registry.
type URLResolver struct{}

// ResolveRelative resolves ref against base per RFC 3986.
func (URLResolver) ResolveRelative(ref, base string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}
