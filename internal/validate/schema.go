package validate

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// reportSchema only pins down the fields whose shape the gate relies on; the
// metric payload itself is judged by the extractor.
const reportSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "name":    {"type": "string"},
    "metrics": {"type": "object"}
  }
}`

var compiledSchema *gojsonschema.Schema

func init() {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(reportSchema))
	if err != nil {
		panic(fmt.Sprintf("invalid report schema: %v", err))
	}
	compiledSchema = schema
}

// structuralErrors validates doc against the report schema.
func structuralErrors(doc map[string]any) []string {
	result, err := compiledSchema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return []string{fmt.Sprintf("failed to validate report structure: %v", err)}
	}
	if result.Valid() {
		return nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return errs
}
