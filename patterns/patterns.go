// Package patterns compiles ordered include/exclude glob lists into a
// single path predicate, as used for file-to-schema associations.
package patterns

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

type rule struct {
	glob    string
	include bool
}

// Matcher evaluates a fixed list of glob patterns against normalized paths.
// The last pattern that matches a path decides the outcome, so a later
// exclusion overrides an earlier inclusion.
type Matcher struct {
	rules []rule
}

// New compiles the given patterns. A leading "!" marks an exclusion, one
// leading path separator after the marker is stripped, and empty patterns
// are skipped. Each pattern is anchored so that it matches any path ending
// in it, with globstar and brace semantics. If any pattern is malformed the
// whole matcher degrades to matching nothing: a broken association must
// never match everything.
func New(globs []string) *Matcher {
	m := &Matcher{}
	for _, g := range globs {
		include := true
		if strings.HasPrefix(g, "!") {
			include = false
			g = g[1:]
		}
		g = strings.TrimPrefix(g, "/")
		if g == "" {
			continue
		}
		if !strings.HasPrefix(g, "**/") {
			g = "**/" + g
		}
		if !doublestar.ValidatePattern(g) {
			return &Matcher{}
		}
		m.rules = append(m.rules, rule{glob: g, include: include})
	}
	return m
}

// Matches reports whether path matches the pattern list. Paths are
// normalized to forward slashes before evaluation. Returns false when no
// pattern matches.
func (m *Matcher) Matches(path string) bool {
	path = strings.ReplaceAll(path, "\\", "/")
	include := false
	for _, r := range m.rules {
		if ok, _ := doublestar.Match(r.glob, path); ok {
			include = r.include
		}
	}
	return include
}

// Empty reports whether the matcher has no usable patterns, either because
// none were given or because compilation failed.
func (m *Matcher) Empty() bool {
	return len(m.rules) == 0
}
