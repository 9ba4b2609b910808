// Package parser covers the document-side collaborators of the schema
// registry: turning raw schema text into generic JSON trees and reading
// already-parsed user documents.
package parser

// PathResolver resolves a relative reference against a base document
// location. The registry uses it for relative $ref targets and for
// relative $schema properties inside user documents.
type PathResolver interface {
	ResolveRelative(ref, base string) string
}

// ParsedDocument is a user document the host editor has already parsed.
// The registry needs only a narrow view of it: the root-level $schema
// property, and the document's own notion of which schema sections apply
// to which of its nodes.
type ParsedDocument interface {
	// SchemaProperty returns the string value of a root-level "$schema"
	// property, when the root is an object carrying one.
	SchemaProperty() (string, bool)

	// GetMatchingSchemas reports every section of the resolved schema
	// content that applies to some node of the document.
	GetMatchingSchemas(resolvedContent any) []SchemaMatch
}

// SchemaMatch ties a document location to the schema section governing it.
// Inverted marks sections that apply in a negated context ("not"); callers
// interested in positive matches filter these out.
type SchemaMatch struct {
	Schema   map[string]any
	Path     []string
	Inverted bool
}
