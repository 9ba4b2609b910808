package registry

import (
	"context"

	"github.com/reglet-dev/reglet-schema/parser"
	"github.com/reglet-dev/reglet-schema/schema"
)

// SchemaService is the public surface of the schema registry.
type SchemaService interface {
	// SetContributions replaces the built-in schemas and associations
	// shipped by the host.
	SetContributions(schemas []SchemaContribution, associations []AssociationContribution)

	// RegisterExternal registers a schema identifier, optionally with file
	// patterns and inline content.
	RegisterExternal(id string, globs []string, content any) *SchemaHandle

	// RegisterExternalStruct registers a schema reflected from a Go value.
	RegisterExternalStruct(id string, globs []string, model any) (*SchemaHandle, error)

	// UnregisterExternal removes one externally registered schema.
	UnregisterExternal(id string)

	// ClearExternal removes all external schemas and reseeds contributions.
	ClearExternal()

	// Schemas lists registered identifiers, optionally filtered by scheme.
	Schemas(scheme string) []string

	// ResolvedForResource resolves the schema applicable to a resource,
	// honoring a $schema property of the (optional) parsed document.
	ResolvedForResource(ctx context.Context, resource string, doc parser.ParsedDocument) (*schema.Resolved, error)

	// ResolvedForID resolves a schema by identifier; nil when unknown.
	ResolvedForID(ctx context.Context, id string) (*schema.Resolved, error)

	// MatchingSchemas reports the schema sections applying to a document,
	// against an explicitly named or supplied schema, or the one associated
	// with the resource.
	MatchingSchemas(ctx context.Context, resource string, doc parser.ParsedDocument, schemaID string, explicit any) ([]parser.SchemaMatch, error)

	// OnResourceChange invalidates caches affected by a changed document,
	// reporting whether any cached state was cleared.
	OnResourceChange(id string) bool
}

// Registry must satisfy the full service surface.
var _ SchemaService = (*Registry)(nil)
