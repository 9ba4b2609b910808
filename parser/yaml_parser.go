package parser

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

// ParseYAML parses YAML schema text into a generic tree. Mappings decode to
// map[string]any so the result is shape-compatible with parsed JSON.
func ParseYAML(text string) (any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("yaml parse error: %w", err)
	}
	return v, nil
}
