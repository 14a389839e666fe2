package models

import (
	"encoding/json"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Insight is a structured finding about a comparison, either recovered from
// generated text or built locally from rules.
type Insight struct {
	Type            string   `json:"type"`
	Severity        Severity `json:"severity"`
	Confidence      float64  `json:"confidence"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	AffectedMetrics []string `json:"affected_metrics"`
	ActionableSteps []string `json:"actionable_steps,omitempty"`
	Source          string   `json:"source,omitempty"`
	GeneratedAt     string   `json:"generated_at,omitempty"`

	// Extra holds keys the producer emitted that have no field above.
	Extra map[string]json.RawMessage `json:"-"`
}

type insightFields Insight

func (i Insight) MarshalJSON() ([]byte, error) {
	fields := insightFields(i)
	if fields.AffectedMetrics == nil {
		fields.AffectedMetrics = []string{}
	}
	known, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	if len(i.Extra) == 0 {
		return known, nil
	}

	merged := make(map[string]json.RawMessage, len(i.Extra)+9)
	for k, v := range i.Extra {
		if json.Valid(v) {
			merged[k] = v
		}
	}
	var base map[string]json.RawMessage
	if err := json.Unmarshal(known, &base); err != nil {
		return nil, err
	}
	for k, v := range base {
		merged[k] = v
	}
	return json.Marshal(merged)
}

func (i *Insight) UnmarshalJSON(data []byte) error {
	var fields insightFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range insightKeys {
		delete(all, k)
	}
	if len(all) > 0 {
		fields.Extra = all
	}
	*i = Insight(fields)
	return nil
}

var insightKeys = []string{
	"type", "severity", "confidence", "title", "description",
	"affected_metrics", "actionable_steps", "source", "generated_at",
}

// IsInsightKey reports whether key maps to a typed Insight field.
func IsInsightKey(key string) bool {
	for _, k := range insightKeys {
		if k == key {
			return true
		}
	}
	return false
}
