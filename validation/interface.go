// Package validation offers an optional sanity check for schema content:
// hosts can lint a schema before contributing or registering it, so broken
// schemas are caught at the source instead of surfacing as resolution
// noise in every document that matches them.
package validation

// SchemaChecker verifies that schema content is itself a well-formed JSON
// Schema document.
type SchemaChecker interface {
	// Check compiles the schema content registered under id and reports
	// the compile diagnostics as data, never as a fault.
	Check(id string, content any) *Result
}

// Result holds the outcome of one schema check.
type Result struct {
	Valid  bool
	Errors []string
}
