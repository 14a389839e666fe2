package extract

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imishinist/perfdiff/internal/models"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
		want Format
	}{
		{
			name: "simple",
			doc:  map[string]any{"name": "a", "metrics": map[string]any{"throughput": 500.0}},
			want: FormatSimple,
		},
		{
			name: "simple with string values",
			doc:  map[string]any{"metrics": map[string]any{"throughput": "500"}},
			want: FormatSimple,
		},
		{
			name: "nested",
			doc: map[string]any{"metrics": map[string]any{
				"http_reqs": map[string]any{"type": "counter", "contains": "default", "values": map[string]any{"count": 10.0}},
			}},
			want: FormatNested,
		},
		{
			name: "nested with unknown type is simple",
			doc: map[string]any{"metrics": map[string]any{
				"http_reqs": map[string]any{"type": "histogram", "values": map[string]any{"count": 10.0}},
			}},
			want: FormatSimple,
		},
		{
			name: "metrics object without numbers loses to numeric top level",
			doc:  map[string]any{"metrics": map[string]any{"foo": map[string]any{"avg": 1.0}}, "latency": 5.0, "cpu": 3.0},
			want: FormatFlat,
		},
		{
			name: "mixed metrics object is simple",
			doc:  map[string]any{"metrics": map[string]any{"foo": map[string]any{"avg": 1.0}, "bar": 2.0}, "latency": 5.0, "cpu": 3.0},
			want: FormatSimple,
		},
		{
			name: "flat majority numeric",
			doc:  map[string]any{"name": "a", "timestamp": "2024-01-01", "latency": 10.0, "rps": "40", "host": "x"},
			want: FormatFlat,
		},
		{
			name: "flat half numeric is unknown",
			doc:  map[string]any{"latency": 10.0, "host": "x"},
			want: FormatUnknown,
		},
		{
			name: "empty metrics falls through to flat check",
			doc:  map[string]any{"metrics": map[string]any{}, "latency": 10.0, "cpu": 3.0},
			want: FormatFlat,
		},
		{
			name: "empty",
			doc:  map[string]any{},
			want: FormatUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.doc))
		})
	}
}

func TestExtractSimpleRoundTrip(t *testing.T) {
	doc := map[string]any{
		"name":      "baseline",
		"timestamp": "2024-01-01T00:00:00Z",
		"metrics": map[string]any{
			"responseTimeAvg": 100.0,
			"throughput":      500.0,
			"errorRate":       0.01,
		},
	}

	result, err := Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, FormatSimple, result.Format)
	assert.Equal(t, models.Metrics{"responseTimeAvg": 100, "throughput": 500, "errorRate": 0.01}, result.Metrics)
	assert.Empty(t, result.Warnings)
}

func TestExtractSimpleCoercion(t *testing.T) {
	doc := map[string]any{
		"metrics": map[string]any{
			"responseTime": "120.5",
			"memoryUsage":  -256.0,
			"delta":        -3.0,
			"label":        "fast",
			"flag":         true,
			"missing":      nil,
			"bogus":        "NaN",
			"inf":          math.Inf(1),
		},
	}

	result, err := Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, models.Metrics{"responseTime": 120.5, "memoryUsage": 256, "delta": -3}, result.Metrics)
	assert.Len(t, result.Warnings, 6)
	assert.Contains(t, result.Warnings, `metric "memoryUsage": negative value -256 coerced to 256`)
	assert.Contains(t, result.Warnings, `metric "label": non-numeric value "fast" dropped`)
	assert.Contains(t, result.Warnings, `metric "flag": unsupported value type bool dropped`)
	assert.Contains(t, result.Warnings, `metric "missing": null value dropped`)
	assert.Contains(t, result.Warnings, `metric "inf": non-finite value dropped`)
}

func TestExtractFlat(t *testing.T) {
	doc := map[string]any{
		"name":            "run-42",
		"timestamp":       1700000000000.0,
		"responseTimeAvg": 150.0,
		"throughput":      "480",
		"host":            "ci-runner",
	}

	result, err := Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, FormatFlat, result.Format)
	assert.Equal(t, models.Metrics{"responseTimeAvg": 150, "throughput": 480}, result.Metrics)
	assert.Empty(t, result.Warnings)
}

func TestExtractFlatBesideNonNumericMetrics(t *testing.T) {
	doc := map[string]any{
		"metrics": map[string]any{"foo": map[string]any{"avg": 1.0}},
		"latency": 5.0,
		"cpu":     3.0,
	}

	result, err := Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, FormatFlat, result.Format)
	assert.Equal(t, models.Metrics{"latency": 5, "cpu": 3}, result.Metrics)
	assert.Empty(t, result.Warnings)
}

func TestExtractNestedWebVital(t *testing.T) {
	doc := map[string]any{
		"metrics": map[string]any{
			"browser_web_vital_lcp": map[string]any{
				"type":     "trend",
				"contains": "time",
				"values":   map[string]any{"avg": 1650.0, "p(95)": 1800.0, "min": 900.0},
			},
		},
	}

	result, err := Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, FormatNested, result.Format)
	assert.Equal(t, models.Metrics{"lcp_avg_ms": 1650, "lcp_p95_ms": 1800}, result.Metrics)
}

func TestExtractNestedAllowListAndThresholds(t *testing.T) {
	doc := map[string]any{
		"metrics": map[string]any{
			"http_req_duration": map[string]any{
				"type": "trend", "contains": "time",
				"values": map[string]any{"avg": 210.5, "med": 190.0, "p(90)": 300.0, "p(95)": 350.0, "max": 900.0, "min": 50.0},
				"thresholds": map[string]any{
					"p(95)<500": map[string]any{"ok": true},
					"avg<200":   map[string]any{"ok": false},
				},
			},
			"http_req_failed": map[string]any{
				"type": "rate", "contains": "default",
				"values":     map[string]any{"rate": 0.02, "passes": 2.0, "fails": 98.0},
				"thresholds": map[string]any{"rate<0.05": map[string]any{"ok": true}},
			},
			"http_reqs": map[string]any{
				"type": "counter", "contains": "default",
				"values": map[string]any{"count": 1000.0, "rate": 33.3},
			},
			"vus_max": map[string]any{
				"type": "gauge", "contains": "default",
				"values": map[string]any{"value": 20.0, "min": 20.0, "max": 20.0},
			},
			"group_duration{group:::login}": map[string]any{
				"type": "trend", "contains": "time",
				"values": map[string]any{"avg": 12.0},
			},
		},
	}

	result, err := Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, models.Metrics{
		"http_req_duration_avg_ms":       210.5,
		"http_req_duration_med_ms":       190,
		"http_req_duration_p90_ms":       300,
		"http_req_duration_p95_ms":       350,
		"http_req_duration_max_ms":       900,
		"http_req_duration_threshold_ok": 0,
		"http_req_failed_rate":           0.02,
		"http_req_failed_threshold_ok":   1,
		"http_reqs_count":                1000,
		"throughput_rps":                 33.3,
		"vus_max":                        20,
	}, result.Metrics)
	assert.Empty(t, result.Warnings)
}

func TestExtractChecksAggregate(t *testing.T) {
	doc := map[string]any{
		"metrics": map[string]any{
			"iterations": map[string]any{"type": "counter", "values": map[string]any{"count": 10.0, "rate": 1.0}},
		},
		"root_group": map[string]any{
			"name": "",
			"checks": []any{
				map[string]any{"name": "status is 200", "passes": 90.0, "fails": 10.0},
			},
			"groups": []any{
				map[string]any{
					"name": "login",
					"checks": map[string]any{
						"has token": map[string]any{"name": "has token", "passes": 45.0, "fails": 5.0},
					},
				},
			},
		},
	}

	result, err := Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, 135.0, result.Metrics["checks_total_passes"])
	assert.Equal(t, 15.0, result.Metrics["checks_total_fails"])
	assert.InDelta(t, 0.9, result.Metrics["checks_success_rate"], 1e-9)
	assert.Equal(t, 10.0, result.Metrics["iterations_count"])
	assert.Equal(t, 1.0, result.Metrics["iterations_rps"])
}

func TestExtractFailures(t *testing.T) {
	result, err := Extract([]any{1.0, 2.0})
	assert.ErrorIs(t, err, ErrNotObject)
	require.NotNil(t, result)

	result, err = Extract(map[string]any{"metrics": map[string]any{"a": "x"}})
	assert.ErrorIs(t, err, ErrNoMetrics)
	assert.Len(t, result.Warnings, 1)

	_, err = Extract(map[string]any{"name": "only strings", "host": "x"})
	assert.ErrorIs(t, err, ErrNoMetrics)
}
