package parser

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

func ParseYAMLDocument(reader io.Reader) (any, error) {
	var data any
	decoder := yaml.NewDecoder(reader)

	if err := decoder.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse YAML report: %w", err)
	}

	return normalize(data), nil
}

// normalize rewrites YAML values into the shapes encoding/json produces, so
// every report reaches the extractor with string-keyed maps and float64 numbers.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = normalize(child)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[fmt.Sprint(k)] = normalize(child)
		}
		return out
	case []any:
		for i, child := range t {
			t[i] = normalize(child)
		}
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	default:
		return v
	}
}
