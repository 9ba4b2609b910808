package validation

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Checker implements SchemaChecker on top of a real JSON Schema compiler.
type Checker struct{}

// NewChecker creates a schema checker.
func NewChecker() *Checker {
	return &Checker{}
}

// Check compiles content as a JSON Schema document. Compilation failures
// come back as error strings on the result; only a content value that
// cannot be marshaled at all is an error in the Go sense, and even that is
// folded into the result.
func (c *Checker) Check(id string, content any) *Result {
	if id == "" {
		id = "inline://schema.json"
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return &Result{Errors: []string{fmt.Sprintf("schema content is not JSON-marshalable: %v", err)}}
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(id, bytes.NewReader(raw)); err != nil {
		return &Result{Errors: []string{err.Error()}}
	}
	if _, err := compiler.Compile(id); err != nil {
		return &Result{Errors: []string{err.Error()}}
	}
	return &Result{Valid: true}
}
