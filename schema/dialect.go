package schema

// Dialect identifies a recognized JSON Schema draft declared via $schema.
type Dialect int

const (
	// DialectUnknown covers absent or unrecognized $schema values; they are
	// ignored during resolution.
	DialectUnknown Dialect = iota
	DialectDraft03
	DialectDraft04
	DialectDraft06
	DialectDraft07
	Dialect201909
	Dialect202012
)

// Meta-schema identifiers in normalized form (trailing "#" stripped).
var dialectIDs = map[string]Dialect{
	"http://json-schema.org/draft-03/schema":       DialectDraft03,
	"http://json-schema.org/draft-04/schema":       DialectDraft04,
	"http://json-schema.org/draft-06/schema":       DialectDraft06,
	"http://json-schema.org/draft-07/schema":       DialectDraft07,
	"https://json-schema.org/draft/2019-09/schema": Dialect201909,
	"https://json-schema.org/draft/2020-12/schema": Dialect202012,
}

// DialectOf maps a $schema value to its dialect. The value is normalized
// before lookup so "http://json-schema.org/draft-07/schema#" and the bare
// form are treated alike.
func DialectOf(id string) Dialect {
	return dialectIDs[NormalizeID(id)]
}
