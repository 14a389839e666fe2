package insight

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/valyala/fastjson"

	"github.com/imishinist/perfdiff/internal/models"
)

const unstructuredType = "unstructured"

// fromValue converts one array element. Fields with an unexpected type are
// coerced where a reading is obvious; keys without a typed field are kept in
// Extra so nothing the producer said is lost.
func fromValue(v *fastjson.Value) models.Insight {
	obj, err := v.Object()
	if err != nil {
		return models.Insight{
			Type:        unstructuredType,
			Severity:    models.SeverityLow,
			Title:       "Unstructured insight",
			Description: textOf(v),
			Extra:       map[string]json.RawMessage{"raw": v.MarshalTo(nil)},
		}
	}

	var in models.Insight
	obj.Visit(func(key []byte, field *fastjson.Value) {
		switch k := string(key); k {
		case "type":
			in.Type = textOf(field)
		case "severity":
			in.Severity = models.Severity(strings.ToLower(strings.TrimSpace(textOf(field))))
		case "confidence":
			in.Confidence = confidenceOf(field)
		case "title":
			in.Title = textOf(field)
		case "description":
			in.Description = textOf(field)
		case "affected_metrics":
			in.AffectedMetrics = stringsOf(field)
		case "actionable_steps":
			in.ActionableSteps = stringsOf(field)
		case "source", "generated_at":
			// stamped by the recoverer
		default:
			if in.Extra == nil {
				in.Extra = make(map[string]json.RawMessage)
			}
			in.Extra[k] = field.MarshalTo(nil)
		}
	})
	return in
}

// textOf returns strings unquoted and any other value as its JSON text.
func textOf(v *fastjson.Value) string {
	if v == nil || v.Type() == fastjson.TypeNull {
		return ""
	}
	if v.Type() == fastjson.TypeString {
		return string(v.GetStringBytes())
	}
	return string(v.MarshalTo(nil))
}

func stringsOf(v *fastjson.Value) []string {
	switch v.Type() {
	case fastjson.TypeArray:
		items, _ := v.Array()
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s := textOf(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case fastjson.TypeNull:
		return nil
	default:
		if s := textOf(v); s != "" {
			return []string{s}
		}
		return nil
	}
}

// confidenceOf reads a 0-1 confidence. Values in (1, 100] are read as
// percentages.
func confidenceOf(v *fastjson.Value) float64 {
	var f float64
	switch v.Type() {
	case fastjson.TypeNumber:
		f = v.GetFloat64()
	case fastjson.TypeString:
		s := strings.TrimSuffix(strings.TrimSpace(string(v.GetStringBytes())), "%")
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	return clampConfidence(f)
}

func clampConfidence(f float64) float64 {
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f > 1 && f <= 100:
		return f / 100
	case f > 1:
		return 1
	}
	return f
}

// ensureSerializable drops anything encoding/json would refuse so the result
// can always be marshalled.
func ensureSerializable(insights []models.Insight) []models.Insight {
	for i := range insights {
		if math.IsNaN(insights[i].Confidence) || math.IsInf(insights[i].Confidence, 0) {
			insights[i].Confidence = 0
		}
		for k, raw := range insights[i].Extra {
			if !json.Valid(raw) {
				delete(insights[i].Extra, k)
			}
		}
	}
	return insights
}
