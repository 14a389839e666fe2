package extract

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Metric names matching this pattern cannot be negative.
var positivePattern = regexp.MustCompile(`(?i)time|latency|throughput|cpu|memory|size|count|rate`)

// asNumber reports the finite numeric value of v, accepting numeric strings.
func asNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

type coercer struct {
	warnings []string
}

func (c *coercer) warnf(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

// value validates a raw metric value. Dropped values are recorded as warnings.
func (c *coercer) value(name string, v any) (float64, bool) {
	f, ok := asNumber(v)
	if !ok {
		switch t := v.(type) {
		case nil:
			c.warnf("metric %q: null value dropped", name)
		case string:
			c.warnf("metric %q: non-numeric value %q dropped", name, t)
		case float64, float32, int, int64, json.Number:
			c.warnf("metric %q: non-finite value dropped", name)
		default:
			c.warnf("metric %q: unsupported value type %T dropped", name, v)
		}
		return 0, false
	}

	if f < 0 && positivePattern.MatchString(name) {
		c.warnf("metric %q: negative value %g coerced to %g", name, f, -f)
		f = -f
	}
	return f, true
}
