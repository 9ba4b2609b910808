package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ParseJSON parses JSON or JSONC text into a generic tree. Comments are
// blanked out before decoding so reported byte offsets still refer to the
// original text.
func ParseJSON(text string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(stripComments(text)), &v); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, fmt.Errorf("parse error at offset %d: %w", syntaxErr.Offset, err)
		}
		return nil, err
	}
	return v, nil
}

// ParseSchemaText parses the raw text of a schema document fetched from
// uri, choosing the codec by file extension: .yaml/.yml documents go
// through the YAML parser, everything else is treated as JSON/JSONC.
func ParseSchemaText(uri, text string) (any, error) {
	path := uri
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		return ParseYAML(text)
	}
	return ParseJSON(text)
}

// stripComments replaces // and /* */ comments outside string literals with
// spaces, preserving offsets and line breaks.
func stripComments(text string) string {
	out := []byte(text)
	inString := false
	for i := 0; i < len(out); i++ {
		c := out[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '/':
			if i+1 >= len(out) {
				break
			}
			switch out[i+1] {
			case '/':
				for i < len(out) && out[i] != '\n' && out[i] != '\r' {
					out[i] = ' '
					i++
				}
			case '*':
				out[i], out[i+1] = ' ', ' '
				i += 2
				for i < len(out) {
					if out[i] == '*' && i+1 < len(out) && out[i+1] == '/' {
						out[i], out[i+1] = ' ', ' '
						i++
						break
					}
					if out[i] != '\n' && out[i] != '\r' {
						out[i] = ' '
					}
					i++
				}
			}
		}
	}
	return string(out)
}
