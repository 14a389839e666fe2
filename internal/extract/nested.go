package extract

import (
	"strings"
)

// fieldSpec pulls one statistical field out of a nested metric bundle.
type fieldSpec struct {
	Source string // key inside the bundle's values, e.g. "p(95)"
	Key    string // flat metric name
}

type nestedSpec struct {
	Metric string
	Fields []fieldSpec
	// Thresholds flattens the bundle's threshold results into <metric>_threshold_ok.
	Thresholds bool
}

// stats builds field specs named prefix_<stat><unit>, so "p(95)" with prefix
// "lcp" and unit "_ms" becomes "lcp_p95_ms".
func stats(prefix, unit string, sources ...string) []fieldSpec {
	fields := make([]fieldSpec, 0, len(sources))
	for _, source := range sources {
		stat := strings.NewReplacer("(", "", ")", "", ".", "_").Replace(source)
		fields = append(fields, fieldSpec{Source: source, Key: prefix + "_" + stat + unit})
	}
	return fields
}

// nestedTable is the allow-list of runner metrics worth comparing. Anything
// else in a nested document (custom per-check metrics, tagged sub-metrics) is
// ignored.
var nestedTable = []nestedSpec{
	{Metric: "http_req_duration", Fields: stats("http_req_duration", "_ms", "avg", "med", "p(90)", "p(95)", "max"), Thresholds: true},
	{Metric: "http_req_waiting", Fields: stats("http_req_waiting", "_ms", "avg", "p(95)")},
	{Metric: "http_req_connecting", Fields: stats("http_req_connecting", "_ms", "avg")},
	{Metric: "http_req_tls_handshaking", Fields: stats("http_req_tls_handshaking", "_ms", "avg")},
	{Metric: "http_req_blocked", Fields: stats("http_req_blocked", "_ms", "avg", "p(95)")},
	{Metric: "http_req_failed", Fields: []fieldSpec{{"rate", "http_req_failed_rate"}}, Thresholds: true},
	{Metric: "http_reqs", Fields: []fieldSpec{{"count", "http_reqs_count"}, {"rate", "throughput_rps"}}},
	{Metric: "iterations", Fields: []fieldSpec{{"count", "iterations_count"}, {"rate", "iterations_rps"}}},
	{Metric: "iteration_duration", Fields: stats("iteration_duration", "_ms", "avg", "p(95)")},
	{Metric: "vus_max", Fields: []fieldSpec{{"max", "vus_max"}, {"value", "vus_max"}}},
	{Metric: "data_received", Fields: []fieldSpec{{"count", "data_received_bytes"}}},
	{Metric: "data_sent", Fields: []fieldSpec{{"count", "data_sent_bytes"}}},
	{Metric: "checks", Fields: []fieldSpec{{"rate", "checks_pass_rate"}}, Thresholds: true},
	{Metric: "browser_web_vital_lcp", Fields: stats("lcp", "_ms", "avg", "p(95)")},
	{Metric: "browser_web_vital_fcp", Fields: stats("fcp", "_ms", "avg", "p(95)")},
	{Metric: "browser_web_vital_inp", Fields: stats("inp", "_ms", "avg", "p(95)")},
	{Metric: "browser_web_vital_ttfb", Fields: stats("ttfb", "_ms", "avg", "p(95)")},
	{Metric: "browser_web_vital_fid", Fields: stats("fid", "_ms", "avg", "p(95)")},
	{Metric: "browser_web_vital_cls", Fields: stats("cls", "", "avg", "p(95)")},
	{Metric: "browser_http_req_duration", Fields: stats("browser_req_duration", "_ms", "avg", "p(95)")},
	{Metric: "browser_http_req_failed", Fields: []fieldSpec{{"rate", "browser_req_failed_rate"}}},
}

func extractNested(metrics map[string]any, out map[string]float64, c *coercer) {
	for _, entry := range nestedTable {
		bundle, ok := metrics[entry.Metric].(map[string]any)
		if !ok {
			continue
		}
		values, _ := bundle["values"].(map[string]any)

		for _, field := range entry.Fields {
			if _, done := out[field.Key]; done {
				continue
			}
			raw, ok := values[field.Source]
			if !ok {
				continue
			}
			if v, ok := c.value(field.Key, raw); ok {
				out[field.Key] = v
			}
		}

		if entry.Thresholds {
			if ok, found := thresholdsOK(bundle); found {
				key := entry.Metric + "_threshold_ok"
				out[key] = 0
				if ok {
					out[key] = 1
				}
			}
		}
	}
}

// thresholdsOK reports whether every threshold in the bundle passed. found is
// false when the bundle has no thresholds.
func thresholdsOK(bundle map[string]any) (ok bool, found bool) {
	thresholds, _ := bundle["thresholds"].(map[string]any)
	if len(thresholds) == 0 {
		return false, false
	}
	ok = true
	for _, raw := range thresholds {
		result, _ := raw.(map[string]any)
		passed, _ := result["ok"].(bool)
		if !passed {
			ok = false
		}
	}
	return ok, true
}

type checkTally struct {
	checks int
	passes float64
	fails  float64
}

// aggregateChecks sums check passes and fails across root_group and all of its
// nested groups.
func aggregateChecks(doc map[string]any, out map[string]float64) {
	root, ok := doc["root_group"].(map[string]any)
	if !ok {
		return
	}
	var tally checkTally
	tally.walk(root)
	if tally.checks == 0 {
		return
	}

	out["checks_total_passes"] = tally.passes
	out["checks_total_fails"] = tally.fails
	out["checks_success_rate"] = 0
	if total := tally.passes + tally.fails; total > 0 {
		out["checks_success_rate"] = tally.passes / total
	}
}

func (t *checkTally) walk(group map[string]any) {
	for _, check := range children(group["checks"]) {
		passes, okP := asNumber(check["passes"])
		fails, okF := asNumber(check["fails"])
		if !okP && !okF {
			continue
		}
		t.checks++
		t.passes += passes
		t.fails += fails
	}
	for _, sub := range children(group["groups"]) {
		t.walk(sub)
	}
}

// children accepts both the array and the name-keyed map encodings runners use.
func children(v any) []map[string]any {
	var out []map[string]any
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
	case map[string]any:
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
	}
	return out
}
