package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imishinist/perfdiff/internal/models"
)

func testResult() *models.ComparisonResult {
	b, c, pct := 100.0, 150.0, 50.0
	only := 3.0
	return &models.ComparisonResult{
		Diffs: []models.MetricDiff{
			{Key: "responseTimeAvg", Baseline: &b, Current: &c, Pct: &pct, Trend: models.TrendWorse},
			{Key: "errors", Baseline: &only, Trend: models.TrendUnknown},
		},
		Summary: models.Summary{Total: 2, Worse: 1, Unknown: 1},
	}
}

func TestObserve(t *testing.T) {
	c := NewCollectors()
	c.Observe(testResult())

	families, err := c.Gatherer().Gather()
	require.NoError(t, err)

	got := map[string]int{}
	for _, f := range families {
		got[f.GetName()] = len(f.GetMetric())
	}
	assert.Equal(t, map[string]int{
		"perfdiff_metric_value":          3,
		"perfdiff_metric_change_percent": 1,
		"perfdiff_trend_total":           4,
	}, got)
}

func TestWriteTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "perfdiff.prom")

	require.NoError(t, WriteTextfile(path, testResult()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `perfdiff_metric_value{metric="responseTimeAvg",side="current"} 150`)
	assert.Contains(t, string(data), `perfdiff_trend_total{trend="worse"} 1`)
	assert.Contains(t, string(data), `perfdiff_metric_change_percent{metric="responseTimeAvg"} 50`)
	assert.NotContains(t, string(data), `metric="errors",side="current"`)
}

func TestWriteTextfileMissingDir(t *testing.T) {
	err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "out.prom"), testResult())
	assert.ErrorContains(t, err, "failed to write metrics textfile")
}
