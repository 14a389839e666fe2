package extract

import (
	"errors"
	"sort"

	"github.com/imishinist/perfdiff/internal/models"
)

var (
	ErrNotObject = errors.New("report must be a JSON object")
	ErrNoMetrics = errors.New("no valid numeric metrics found")
)

// reservedKeys are top-level report fields that are never metrics.
var reservedKeys = map[string]bool{
	"name":      true,
	"timestamp": true,
}

type Result struct {
	Format   Format         `json:"format"`
	Metrics  models.Metrics `json:"metrics"`
	Warnings []string       `json:"warnings"`
}

// Extract converts a decoded report document into a flat metric map. It only
// fails when doc is not an object or when no valid metric survives; every
// other anomaly becomes a warning. The returned Result is never nil.
func Extract(doc any) (*Result, error) {
	result := &Result{Metrics: models.Metrics{}, Warnings: []string{}}

	obj, ok := doc.(map[string]any)
	if !ok {
		return result, ErrNotObject
	}

	c := &coercer{}
	result.Format = Detect(obj)

	switch result.Format {
	case FormatSimple:
		metrics := obj["metrics"].(map[string]any)
		for _, name := range sortedKeys(metrics) {
			if v, ok := c.value(name, metrics[name]); ok {
				result.Metrics[name] = v
			}
		}
	case FormatFlat:
		for _, name := range sortedKeys(obj) {
			if reservedKeys[name] {
				continue
			}
			if _, numeric := asNumber(obj[name]); !numeric {
				continue
			}
			if v, ok := c.value(name, obj[name]); ok {
				result.Metrics[name] = v
			}
		}
	case FormatNested:
		extractNested(obj["metrics"].(map[string]any), result.Metrics, c)
	}

	aggregateChecks(obj, result.Metrics)

	if c.warnings != nil {
		result.Warnings = c.warnings
	}
	if len(result.Metrics) == 0 {
		return result, ErrNoMetrics
	}
	return result, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
