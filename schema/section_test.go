package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reglet-dev/reglet-schema/schema"
)

func configSchema() *schema.Resolved {
	return &schema.Resolved{Content: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"server": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"port": map[string]any{"type": "integer"},
				},
			},
			"tuple": map[string]any{
				"type":  "array",
				"items": []any{map[string]any{"const": "first"}, map[string]any{"const": "second"}},
			},
			"list": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"patternProperties": map[string]any{
			"^x-": map[string]any{"description": "extension"},
		},
		"additionalProperties": map[string]any{"type": "boolean"},
	}}
}

func Test_Section(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path []string
		want any
	}{
		{
			name: "named property",
			path: []string{"server", "port"},
			want: map[string]any{"type": "integer"},
		},
		{
			name: "pattern property",
			path: []string{"x-vendor"},
			want: map[string]any{"description": "extension"},
		},
		{
			name: "additionalProperties fallback",
			path: []string{"anything"},
			want: map[string]any{"type": "boolean"},
		},
		{
			name: "tuple items by index",
			path: []string{"tuple", "1"},
			want: map[string]any{"const": "second"},
		},
		{
			name: "tuple index out of range",
			path: []string{"tuple", "5"},
			want: nil,
		},
		{
			name: "shared items schema for any index",
			path: []string{"list", "17"},
			want: map[string]any{"type": "string"},
		},
		{
			name: "empty path returns root",
			path: nil,
			want: configSchema().Content,
		},
		{
			name: "dead end below a scalar schema",
			path: []string{"server", "port", "deeper"},
			want: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := configSchema().Section(tc.path...)
			assert.Equal(t, tc.want, got)
		})
	}
}

func Test_Step_PropertiesWinOverPatterns(t *testing.T) {
	t.Parallel()

	node := map[string]any{
		"properties": map[string]any{
			"x-exact": map[string]any{"title": "named"},
		},
		"patternProperties": map[string]any{
			"^x-": map[string]any{"title": "pattern"},
		},
	}
	got := schema.Step(node, "x-exact")
	assert.Equal(t, map[string]any{"title": "named"}, got)
}

func Test_Step_NonObjectNode(t *testing.T) {
	t.Parallel()

	assert.Nil(t, schema.Step("scalar", "any"))
	assert.Nil(t, schema.Step(nil, "any"))
}
