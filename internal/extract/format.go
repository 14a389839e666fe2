package extract

// Format identifies which report shape a document uses.
type Format int

const (
	FormatUnknown Format = iota
	// FormatSimple documents carry a {"metrics": {name: number}} map.
	FormatSimple
	// FormatFlat documents hold metrics as top-level numeric fields.
	FormatFlat
	// FormatNested documents come from a statistical test runner, where each
	// metric is a {type, values, thresholds} bundle.
	FormatNested
)

func (f Format) String() string {
	switch f {
	case FormatSimple:
		return "simple"
	case FormatFlat:
		return "flat"
	case FormatNested:
		return "nested"
	default:
		return "unknown"
	}
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

var nestedMetricTypes = map[string]bool{
	"rate": true, "trend": true, "counter": true, "gauge": true,
}

// Detect decides the document format before any extraction runs. A metrics
// object holding no number at all loses to a numeric top level; when neither
// side has numbers it still counts as simple so the dropped values are reported.
func Detect(doc map[string]any) Format {
	metrics, hasMetrics := doc["metrics"].(map[string]any)
	hasMetrics = hasMetrics && len(metrics) > 0
	if hasMetrics {
		if isNested(metrics) {
			return FormatNested
		}
		if anyNumber(metrics) {
			return FormatSimple
		}
	}

	if numericShare(doc) > 0.5 {
		return FormatFlat
	}
	if hasMetrics {
		return FormatSimple
	}

	return FormatUnknown
}

func anyNumber(m map[string]any) bool {
	for _, v := range m {
		if _, ok := asNumber(v); ok {
			return true
		}
	}
	return false
}

func isNested(metrics map[string]any) bool {
	for _, v := range metrics {
		bundle, ok := v.(map[string]any)
		if !ok {
			return false
		}
		typ, _ := bundle["type"].(string)
		if !nestedMetricTypes[typ] {
			return false
		}
		if _, ok := bundle["values"].(map[string]any); !ok {
			return false
		}
	}
	return true
}

// numericShare is the fraction of non-reserved top-level keys holding numbers.
func numericShare(doc map[string]any) float64 {
	total, numeric := 0, 0
	for k, v := range doc {
		if reservedKeys[k] {
			continue
		}
		total++
		if _, ok := asNumber(v); ok {
			numeric++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(numeric) / float64(total)
}
