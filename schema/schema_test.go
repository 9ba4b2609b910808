package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/reglet-schema/schema"
)

func Test_NormalizeID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		id   string
		want string
	}{
		{
			name: "trailing fragment marker stripped",
			id:   "http://json-schema.org/draft-07/schema#",
			want: "http://json-schema.org/draft-07/schema",
		},
		{
			name: "scheme and host lowercased",
			id:   "HTTP://Example.COM/schema.json",
			want: "http://example.com/schema.json",
		},
		{
			name: "path case preserved",
			id:   "https://example.com/Schemas/Config.JSON",
			want: "https://example.com/Schemas/Config.JSON",
		},
		{
			name: "dot segments untouched",
			id:   "https://example.com/a/../b.json",
			want: "https://example.com/a/../b.json",
		},
		{
			name: "scheme-less identifier returned as given",
			id:   "relative/path.json",
			want: "relative/path.json",
		},
		{
			name: "unparseable identifier returned as given",
			id:   "http://exa mple.com/%zz",
			want: "http://exa mple.com/%zz",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, schema.NormalizeID(tc.id))
		})
	}
}

func Test_NormalizeID_EquivalentFormsCollapse(t *testing.T) {
	t.Parallel()

	a := schema.NormalizeID("HTTPS://Example.com/s.json#")
	b := schema.NormalizeID("https://example.com/s.json")
	assert.Equal(t, a, b)
}

func Test_IsAbsoluteURI(t *testing.T) {
	t.Parallel()

	assert.True(t, schema.IsAbsoluteURI("https://example.com/s.json"))
	assert.True(t, schema.IsAbsoluteURI("file:///tmp/s.json"))
	assert.False(t, schema.IsAbsoluteURI("definitions/base.json"))
	assert.False(t, schema.IsAbsoluteURI("#/definitions/base"))
}

func Test_NewUnresolved_NilContentBecomesEmptyObject(t *testing.T) {
	t.Parallel()

	u := schema.NewUnresolved(nil, []string{"boom"})
	require.NotNil(t, u.Content)
	assert.Equal(t, map[string]any{}, u.Content)
	assert.Equal(t, []string{"boom"}, u.Errors)
}

func Test_DeepCopy_IsIndependent(t *testing.T) {
	t.Parallel()

	src := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tags": []any{"a", "b"},
		},
	}
	cp := schema.DeepCopy(src).(map[string]any)
	cp["properties"].(map[string]any)["tags"].([]any)[0] = "mutated"
	cp["type"] = "array"

	assert.Equal(t, "object", src["type"])
	assert.Equal(t, "a", src["properties"].(map[string]any)["tags"].([]any)[0])
}

func Test_DialectOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		id   string
		want schema.Dialect
	}{
		{name: "draft-03", id: "http://json-schema.org/draft-03/schema#", want: schema.DialectDraft03},
		{name: "draft-04 bare", id: "http://json-schema.org/draft-04/schema", want: schema.DialectDraft04},
		{name: "draft-07", id: "http://json-schema.org/draft-07/schema#", want: schema.DialectDraft07},
		{name: "2019-09", id: "https://json-schema.org/draft/2019-09/schema", want: schema.Dialect201909},
		{name: "2020-12", id: "https://json-schema.org/draft/2020-12/schema", want: schema.Dialect202012},
		{name: "unknown", id: "https://example.com/my-meta-schema", want: schema.DialectUnknown},
		{name: "empty", id: "", want: schema.DialectUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, schema.DialectOf(tc.id))
		})
	}
}
