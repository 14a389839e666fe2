package parser

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ParseDocument decodes a report document in the given format (json or yaml).
func ParseDocument(reader io.Reader, format string) (any, error) {
	switch strings.ToLower(format) {
	case "json":
		return ParseJSONDocument(reader)
	case "yaml", "yml":
		return ParseYAMLDocument(reader)
	default:
		return nil, fmt.Errorf("unsupported report format: %s (supported: json, yaml)", format)
	}
}

// ParseFile opens path and decodes it according to its extension.
func ParseFile(path string) (any, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var format string
	switch ext {
	case ".json":
		format = "json"
	case ".yaml", ".yml":
		format = "yaml"
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .json, .yaml, .yml)", ext)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	return ParseDocument(file, format)
}
