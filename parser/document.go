package parser

import (
	"sort"
	"strconv"

	"github.com/reglet-dev/reglet-schema/schema"
)

// JSONDocument is a ParsedDocument backed by a plain JSON tree. Hosts with
// their own document layer (positions, syntax trees) supply their own
// implementation; this one serves embedders and tests.
type JSONDocument struct {
	root any
}

// NewJSONDocument parses text into a document. JSONC comments are allowed.
func NewJSONDocument(text string) (*JSONDocument, error) {
	root, err := ParseJSON(text)
	if err != nil {
		return nil, err
	}
	return &JSONDocument{root: root}, nil
}

// NewJSONDocumentFromTree wraps an already-parsed tree.
func NewJSONDocumentFromTree(root any) *JSONDocument {
	return &JSONDocument{root: root}
}

// Root returns the document's root node.
func (d *JSONDocument) Root() any {
	return d.root
}

// SchemaProperty implements ParsedDocument.
func (d *JSONDocument) SchemaProperty() (string, bool) {
	obj, ok := d.root.(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := obj["$schema"].(string)
	return s, ok
}

// GetMatchingSchemas implements ParsedDocument by walking the document and
// the resolved schema side by side, descending through properties, items
// and the combining keywords. Sections reached under "not" are reported as
// inverted.
func (d *JSONDocument) GetMatchingSchemas(resolvedContent any) []SchemaMatch {
	var out []SchemaMatch
	matchNode(d.root, resolvedContent, nil, false, &out)
	return out
}

func matchNode(node, sch any, path []string, inverted bool, out *[]SchemaMatch) {
	schMap, ok := sch.(map[string]any)
	if !ok {
		return
	}
	*out = append(*out, SchemaMatch{
		Schema:   schMap,
		Path:     append([]string(nil), path...),
		Inverted: inverted,
	})

	for _, keyword := range []string{"allOf", "anyOf", "oneOf"} {
		if branches, ok := schMap[keyword].([]any); ok {
			for _, branch := range branches {
				matchNode(node, branch, path, inverted, out)
			}
		}
	}
	if not, ok := schMap["not"]; ok {
		matchNode(node, not, path, !inverted, out)
	}

	switch n := node.(type) {
	case map[string]any:
		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if sub := schema.Step(schMap, k); sub != nil {
				matchNode(n[k], sub, append(path, k), inverted, out)
			}
		}
	case []any:
		for i, v := range n {
			segment := strconv.Itoa(i)
			if sub := schema.Step(schMap, segment); sub != nil {
				matchNode(v, sub, append(path, segment), inverted, out)
			}
		}
	}
}
