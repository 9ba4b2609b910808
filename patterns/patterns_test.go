package patterns_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reglet-dev/reglet-schema/patterns"
)

func Test_Matcher_IncludeExclude(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		path     string
		want     bool
	}{
		{
			name:     "simple include",
			patterns: []string{"*.json"},
			path:     "a.json",
			want:     true,
		},
		{
			name:     "later exclusion overrides earlier inclusion",
			patterns: []string{"*.json", "!*.private.json"},
			path:     "a.private.json",
			want:     false,
		},
		{
			name:     "exclusion leaves other paths included",
			patterns: []string{"*.json", "!*.private.json"},
			path:     "a.json",
			want:     true,
		},
		{
			name:     "later inclusion overrides exclusion",
			patterns: []string{"!*.json", "a.json"},
			path:     "a.json",
			want:     true,
		},
		{
			name:     "matches in nested directories",
			patterns: []string{"*.json"},
			path:     "some/deep/dir/a.json",
			want:     true,
		},
		{
			name:     "globstar pattern",
			patterns: []string{"config/**/*.json"},
			path:     "project/config/env/dev.json",
			want:     true,
		},
		{
			name:     "brace expansion",
			patterns: []string{"*.{yaml,yml}"},
			path:     "pipeline.yml",
			want:     true,
		},
		{
			name:     "leading separator is stripped",
			patterns: []string{"/settings.json"},
			path:     "home/settings.json",
			want:     true,
		},
		{
			name:     "backslash paths are normalized",
			patterns: []string{"*.json"},
			path:     `c:\work\a.json`,
			want:     true,
		},
		{
			name:     "no pattern matches",
			patterns: []string{"*.json"},
			path:     "a.yaml",
			want:     false,
		},
		{
			name:     "empty pattern list",
			patterns: nil,
			path:     "a.json",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := patterns.New(tt.patterns)
			assert.Equal(t, tt.want, m.Matches(tt.path))
		})
	}
}

func Test_Matcher_MalformedPatternDisablesMatcher(t *testing.T) {
	// a malformed pattern must degrade the matcher to matching nothing,
	// never to matching everything
	m := patterns.New([]string{"*.json", "[unclosed"})
	assert.True(t, m.Empty())
	assert.False(t, m.Matches("a.json"))
}

func Test_Matcher_EmptyPatternsSkipped(t *testing.T) {
	m := patterns.New([]string{"", "!", "/", "*.json"})
	assert.False(t, m.Empty())
	assert.True(t, m.Matches("a.json"))
	assert.False(t, m.Matches("a.yaml"))
}
