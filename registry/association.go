package registry

import (
	"github.com/reglet-dev/reglet-schema/patterns"
	"github.com/reglet-dev/reglet-schema/schema"
)

// FilePatternAssociation binds an ordered glob list to the schemas that
// apply to matching resources. A malformed pattern list leaves the
// association matching nothing rather than everything.
type FilePatternAssociation struct {
	matcher *patterns.Matcher
	ids     []string
}

func newFilePatternAssociation(globs, ids []string) *FilePatternAssociation {
	normalized := make([]string, 0, len(ids))
	for _, id := range ids {
		normalized = append(normalized, schema.NormalizeID(id))
	}
	return &FilePatternAssociation{matcher: patterns.New(globs), ids: normalized}
}

// Matches reports whether the association covers path.
func (a *FilePatternAssociation) Matches(path string) bool {
	return a.matcher.Matches(path)
}

// SchemaIDs returns the normalized target identifiers in registration
// order.
func (a *FilePatternAssociation) SchemaIDs() []string {
	return a.ids
}
