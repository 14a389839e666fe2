package mlflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/databricks/databricks-sdk-go/service/ml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imishinist/perfdiff/internal/config"
	"github.com/imishinist/perfdiff/internal/models"
)

type fakeExperiments struct {
	mu        sync.Mutex
	created   []ml.CreateRun
	metrics   []ml.LogMetric
	params    []ml.LogParam
	updates   []ml.UpdateRun
	createErr error
	// metricErr fails LogMetric for keys with this prefix.
	metricErr string
	paramErr  string
}

func (f *fakeExperiments) CreateRun(_ context.Context, req ml.CreateRun) (*ml.CreateRunResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	return &ml.CreateRunResponse{Run: &ml.Run{Info: &ml.RunInfo{RunId: "run-1"}}}, nil
}

func (f *fakeExperiments) LogMetric(_ context.Context, req ml.LogMetric) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.metricErr != "" && strings.HasPrefix(req.Key, f.metricErr) {
		return errors.New("rejected")
	}
	f.metrics = append(f.metrics, req)
	return nil
}

func (f *fakeExperiments) LogParam(_ context.Context, req ml.LogParam) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.Key == f.paramErr {
		return errors.New("rejected")
	}
	f.params = append(f.params, req)
	return nil
}

func (f *fakeExperiments) UpdateRun(_ context.Context, req ml.UpdateRun) (*ml.UpdateRunResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, req)
	return &ml.UpdateRunResponse{}, nil
}

var created = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func testResult() *models.ComparisonResult {
	b, c, pct := 100.0, 150.0, 50.0
	only := 7.0
	return &models.ComparisonResult{
		ID:        "cmp-1",
		CreatedAt: created,
		Baseline:  &models.PerformanceReport{Name: "main"},
		Current:   &models.PerformanceReport{Name: "feature"},
		Diffs: []models.MetricDiff{
			{Key: "responseTimeAvg", Baseline: &b, Current: &c, Pct: &pct, Trend: models.TrendWorse},
			{Key: "lcp_p95_ms", Current: &only, Trend: models.TrendUnknown},
		},
		Summary: models.Summary{Total: 2, Worse: 1, Unknown: 1},
	}
}

func newTestClient(api *fakeExperiments) *Client {
	c := newClient(api, &config.Config{ExperimentID: "7", TrackingURI: "http://localhost:5000"}, nil)
	c.now = func() time.Time { return created }
	return c
}

func TestRecord(t *testing.T) {
	api := &fakeExperiments{}

	require.NoError(t, newTestClient(api).Record(context.Background(), testResult()))

	require.Len(t, api.created, 1)
	run := api.created[0]
	assert.Equal(t, "7", run.ExperimentId)
	assert.Equal(t, "compare-main-vs-feature", run.RunName)
	tags := map[string]string{}
	for _, tag := range run.Tags {
		tags[tag.Key] = tag.Value
	}
	assert.Equal(t, "1", tags["perfdiff.summary.worse"])
	assert.Equal(t, "cmp-1", tags["perfdiff.comparison_id"])
	assert.Equal(t, "compare-main-vs-feature", tags["mlflow.runName"])

	params := map[string]string{}
	for _, p := range api.params {
		params[p.Key] = p.Value
	}
	assert.Equal(t, map[string]string{
		"baseline_name": "main",
		"current_name":  "feature",
		"comparison_id": "cmp-1",
	}, params)

	metrics := map[string]float64{}
	for _, m := range api.metrics {
		assert.Equal(t, "run-1", m.RunId)
		assert.Equal(t, created.UnixMilli(), m.Timestamp)
		metrics[m.Key] = m.Value
	}
	assert.Equal(t, map[string]float64{
		"baseline/responseTimeAvg": 100,
		"current/responseTimeAvg":  150,
		"pct/responseTimeAvg":      50,
		"current/lcp_p95_ms":       7,
	}, metrics)

	require.Len(t, api.updates, 1)
	assert.Equal(t, ml.UpdateRunStatusFinished, api.updates[0].Status)
}

func TestRecordMarksRunFailed(t *testing.T) {
	api := &fakeExperiments{metricErr: "pct/"}

	err := newTestClient(api).Record(context.Background(), testResult())

	assert.ErrorContains(t, err, "failed to log metric pct/responseTimeAvg")
	assert.Len(t, api.metrics, 3)
	require.Len(t, api.updates, 1)
	assert.Equal(t, ml.UpdateRunStatusFailed, api.updates[0].Status)
}

func TestRecordParamFailureKeepsLogging(t *testing.T) {
	api := &fakeExperiments{paramErr: "current_name"}

	err := newTestClient(api).Record(context.Background(), testResult())

	assert.ErrorContains(t, err, "failed to log param current_name")
	assert.Len(t, api.params, 2)
	assert.Len(t, api.metrics, 4)
	require.Len(t, api.updates, 1)
	assert.Equal(t, ml.UpdateRunStatusFailed, api.updates[0].Status)
}

func TestRecordCreateRunError(t *testing.T) {
	api := &fakeExperiments{createErr: errors.New("unauthorized")}

	err := newTestClient(api).Record(context.Background(), testResult())

	assert.ErrorContains(t, err, "failed to create run")
	assert.Empty(t, api.metrics)
	assert.Empty(t, api.updates)
}

func TestMetricKey(t *testing.T) {
	assert.Equal(t, "pct/http_req_duration_p_95_", metricKey("pct/http_req_duration_p(95)"))
	assert.Equal(t, "current/Time to First Byte", metricKey("current/Time to First Byte"))
}

func TestNewClientRequiresExperiment(t *testing.T) {
	_, err := NewClient(&config.Config{TrackingURI: "http://localhost:5000"}, nil)
	assert.ErrorContains(t, err, "experiment ID is required")
}
