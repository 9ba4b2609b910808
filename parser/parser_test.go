package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/reglet-schema/parser"
)

func Test_ParseJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		want    any
		wantErr string
	}{
		{
			name: "plain object",
			text: `{"type": "object"}`,
			want: map[string]any{"type": "object"},
		},
		{
			name: "line comments blanked",
			text: "{\n  // picks the port\n  \"port\": 8080\n}",
			want: map[string]any{"port": float64(8080)},
		},
		{
			name: "block comment blanked",
			text: `{"a": /* inline */ 1}`,
			want: map[string]any{"a": float64(1)},
		},
		{
			name: "comment markers inside strings kept",
			text: `{"url": "https://example.com/a", "glob": "/* keep */"}`,
			want: map[string]any{"url": "https://example.com/a", "glob": "/* keep */"},
		},
		{
			name:    "syntax error reports offset",
			text:    `{"a": }`,
			wantErr: "parse error at offset",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := parser.ParseJSON(tc.text)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func Test_ParseSchemaText_ExtensionSelectsCodec(t *testing.T) {
	t.Parallel()

	yamlText := "type: object\nrequired:\n  - name\n"
	got, err := parser.ParseSchemaText("https://example.com/schema.yaml", yamlText)
	require.NoError(t, err)
	obj, ok := got.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", obj["type"])
	assert.Equal(t, []any{"name"}, obj["required"])

	got, err = parser.ParseSchemaText("https://example.com/schema.json?v=2#frag", `{"type": "string"}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"type": "string"}, got)

	// query string must not confuse the extension check
	_, err = parser.ParseSchemaText("https://example.com/schema.yml?raw=1", "type: number\n")
	require.NoError(t, err)
}

func Test_URLResolver_ResolveRelative(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ref  string
		base string
		want string
	}{
		{
			name: "sibling file",
			ref:  "base.json",
			base: "https://example.com/schemas/root.json",
			want: "https://example.com/schemas/base.json",
		},
		{
			name: "parent directory",
			ref:  "../common/defs.json",
			base: "https://example.com/schemas/v1/root.json",
			want: "https://example.com/common/defs.json",
		},
		{
			name: "absolute ref passes through",
			ref:  "https://other.example/s.json",
			base: "https://example.com/root.json",
			want: "https://other.example/s.json",
		},
		{
			name: "ref with fragment",
			ref:  "defs.json#/definitions/port",
			base: "https://example.com/schemas/root.json",
			want: "https://example.com/schemas/defs.json#/definitions/port",
		},
	}

	var resolver parser.URLResolver
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, resolver.ResolveRelative(tc.ref, tc.base))
		})
	}
}

func Test_JSONDocument_SchemaProperty(t *testing.T) {
	t.Parallel()

	doc, err := parser.NewJSONDocument(`{"$schema": "https://example.com/meta.json", "a": 1}`)
	require.NoError(t, err)
	got, ok := doc.SchemaProperty()
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/meta.json", got)

	doc, err = parser.NewJSONDocument(`[1, 2, 3]`)
	require.NoError(t, err)
	_, ok = doc.SchemaProperty()
	assert.False(t, ok)
}

func Test_JSONDocument_GetMatchingSchemas(t *testing.T) {
	t.Parallel()

	sch := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
			"tags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
	}
	doc := parser.NewJSONDocumentFromTree(map[string]any{
		"name": "demo",
		"tags": []any{"a", "b"},
	})

	matches := doc.GetMatchingSchemas(sch)

	paths := make(map[string]bool, len(matches))
	for _, m := range matches {
		key := ""
		for _, seg := range m.Path {
			key += "/" + seg
		}
		paths[key] = true
		assert.False(t, m.Inverted)
	}
	assert.True(t, paths[""], "root match")
	assert.True(t, paths["/name"])
	assert.True(t, paths["/tags"])
	assert.True(t, paths["/tags/0"])
	assert.True(t, paths["/tags/1"])
}

func Test_JSONDocument_GetMatchingSchemas_CombinatorsAndNot(t *testing.T) {
	t.Parallel()

	sch := map[string]any{
		"allOf": []any{
			map[string]any{"title": "branch-a"},
			map[string]any{"title": "branch-b"},
		},
		"not": map[string]any{"title": "excluded"},
	}
	doc := parser.NewJSONDocumentFromTree(map[string]any{"x": 1})

	matches := doc.GetMatchingSchemas(sch)

	var titles []string
	var invertedTitles []string
	for _, m := range matches {
		title, _ := m.Schema["title"].(string)
		if m.Inverted {
			invertedTitles = append(invertedTitles, title)
		} else if title != "" {
			titles = append(titles, title)
		}
	}
	assert.ElementsMatch(t, []string{"branch-a", "branch-b"}, titles)
	assert.Equal(t, []string{"excluded"}, invertedTitles)
}
