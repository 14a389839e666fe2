package models

// Metrics maps a metric name to a finite numeric value.
type Metrics map[string]float64

// PerformanceReport is a sanitized report produced by the validation gate.
type PerformanceReport struct {
	Name      string  `json:"name"`
	Timestamp string  `json:"timestamp"`
	Metrics   Metrics `json:"metrics"`
}

// Keys returns the metric names of the report in no particular order.
func (r *PerformanceReport) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, 0, len(r.Metrics))
	for key := range r.Metrics {
		keys = append(keys, key)
	}
	return keys
}

// Value returns the metric value, or nil when the report does not carry it.
func (r *PerformanceReport) Value(key string) *float64 {
	if r == nil {
		return nil
	}
	v, ok := r.Metrics[key]
	if !ok {
		return nil
	}
	return &v
}
