package parser

import (
	"encoding/json"
	"fmt"
	"io"
)

func ParseJSONDocument(reader io.Reader) (any, error) {
	var data any
	decoder := json.NewDecoder(reader)

	if err := decoder.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse JSON report: %w", err)
	}

	return data, nil
}
