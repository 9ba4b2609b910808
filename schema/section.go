package schema

import (
	"regexp"
	"sort"
	"strconv"
)

// Section descends from the resolved root through the given path segments
// and returns the schema node governing that location, or nil when no rule
// applies. Each step tries, in order: a named entry in "properties", the
// first "patternProperties" entry whose regex matches the segment,
// "additionalProperties" when it is itself a schema object, and finally
// "items" (indexed when items is an array, shared otherwise) for numeric
// segments.
func (r *Resolved) Section(path ...string) any {
	node := r.Content
	for _, segment := range path {
		node = Step(node, segment)
		if node == nil {
			return nil
		}
	}
	return node
}

// Step applies one segment of a section lookup to a schema node. Returns
// nil when the node is not an object or no rule covers the segment.
func Step(node any, segment string) any {
	obj, ok := node.(map[string]any)
	if !ok {
		return nil
	}
	if props, ok := obj["properties"].(map[string]any); ok {
		if sub, ok := props[segment]; ok {
			return sub
		}
	}
	if pats, ok := obj["patternProperties"].(map[string]any); ok {
		// Go maps are unordered; sort for a deterministic "first" entry.
		keys := make([]string, 0, len(pats))
		for k := range pats {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, pattern := range keys {
			re, err := regexp.Compile(pattern)
			if err != nil {
				continue
			}
			if re.MatchString(segment) {
				return pats[pattern]
			}
		}
	}
	if add, ok := obj["additionalProperties"].(map[string]any); ok {
		return add
	}
	if index, err := strconv.Atoi(segment); err == nil {
		switch items := obj["items"].(type) {
		case []any:
			if index >= 0 && index < len(items) {
				return items[index]
			}
		case map[string]any:
			return items
		}
	}
	return nil
}
