package insight

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imishinist/perfdiff/internal/diff"
	"github.com/imishinist/perfdiff/internal/models"
)

func newTestRecoverer() *Recoverer {
	r := NewRecoverer(nil)
	r.now = func() time.Time { return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC) }
	return r
}

func TestRecoverDirectArray(t *testing.T) {
	raw := `[{"type":"regression","severity":"high","confidence":0.8,"title":"Latency up","description":"p95 grew","affected_metrics":["http_req_duration_p95_ms"],"actionable_steps":["profile"]}]`

	insights := newTestRecoverer().Recover(raw, nil)

	require.Len(t, insights, 1)
	assert.Equal(t, models.Insight{
		Type:            "regression",
		Severity:        models.SeverityHigh,
		Confidence:      0.8,
		Title:           "Latency up",
		Description:     "p95 grew",
		AffectedMetrics: []string{"http_req_duration_p95_ms"},
		ActionableSteps: []string{"profile"},
		Source:          SourceDirect,
		GeneratedAt:     "2024-06-01T10:00:00.000Z",
	}, insights[0])
}

func TestRecoverArraySubstring(t *testing.T) {
	raw := `Here are insights: [{"title":"X","severity":"high"}] - hope this helps!`

	insights := newTestRecoverer().Recover(raw, nil)

	require.Len(t, insights, 1)
	assert.Equal(t, "X", insights[0].Title)
	assert.Equal(t, models.SeverityHigh, insights[0].Severity)
	assert.Equal(t, SourceArraySubstring, insights[0].Source)
}

func TestRecoverTypePattern(t *testing.T) {
	raw := "Notes [see below]\n```json\n" +
		`[{"type":"regression","title":"Y","description":"uses [brackets] inside"}]` +
		"\n```\nAlso consider [1]."

	insights := newTestRecoverer().Recover(raw, nil)

	require.Len(t, insights, 1)
	assert.Equal(t, "Y", insights[0].Title)
	assert.Equal(t, "uses [brackets] inside", insights[0].Description)
	assert.Equal(t, SourceTypePattern, insights[0].Source)
}

func TestRecoverFieldScrape(t *testing.T) {
	raw := `{"title": "Slow \"checkout\"", "severity": "High", "description": "checkout_response_time grew", truncated`

	insights := newTestRecoverer().Recover(raw, nil)

	require.Len(t, insights, 1)
	in := insights[0]
	assert.Equal(t, `Slow "checkout"`, in.Title)
	assert.Equal(t, models.SeverityHigh, in.Severity)
	assert.Equal(t, "performance", in.Type)
	assert.Equal(t, 0.7, in.Confidence)
	assert.Equal(t, "checkout_response_time grew", in.Description)
	assert.Equal(t, []string{"checkout_response_time"}, in.AffectedMetrics)
	assert.NotEmpty(t, in.ActionableSteps)
	assert.Equal(t, SourceFieldScrape, in.Source)
}

func TestRecoverFallback(t *testing.T) {
	baseline := &models.PerformanceReport{Metrics: models.Metrics{"responseTimeAvg": 100, "throughput": 500}}
	current := &models.PerformanceReport{Metrics: models.Metrics{"responseTimeAvg": 150, "throughput": 500}}
	diffs := diff.Diff(baseline, current).Diffs

	insights := newTestRecoverer().Recover("The run looked mostly fine to me.", diffs)

	require.Len(t, insights, 1)
	assert.Equal(t, "parsing_issue", insights[0].Type)
	assert.Equal(t, models.SeverityMedium, insights[0].Severity)
	assert.Equal(t, SourceFallback, insights[0].Source)
	assert.Equal(t, []string{"responseTimeAvg"}, insights[0].AffectedMetrics)
	assert.Contains(t, insights[0].Description, "The run looked mostly fine to me.")
}

func TestRecoverEmptyString(t *testing.T) {
	insights := newTestRecoverer().Recover("", nil)

	require.Len(t, insights, 1)
	assert.Equal(t, "parsing_issue", insights[0].Type)
	assert.Equal(t, []string{}, insights[0].AffectedMetrics)
}

func TestRecoverLenientElements(t *testing.T) {
	raw := `[{"type":"regression","severity":"HIGH","confidence":"85%","title":"T","affected_metrics":"latency","source":"model","custom":{"a":1}}, "free text", 42]`

	insights := newTestRecoverer().Recover(raw, nil)

	require.Len(t, insights, 3)
	first := insights[0]
	assert.Equal(t, models.SeverityHigh, first.Severity)
	assert.InDelta(t, 0.85, first.Confidence, 1e-9)
	assert.Equal(t, []string{"latency"}, first.AffectedMetrics)
	assert.Equal(t, SourceDirect, first.Source)
	require.Contains(t, first.Extra, "custom")
	assert.JSONEq(t, `{"a":1}`, string(first.Extra["custom"]))

	encoded, err := json.Marshal(first)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"custom":{"a":1}`)

	assert.Equal(t, unstructuredType, insights[1].Type)
	assert.Equal(t, "free text", insights[1].Description)
	assert.Equal(t, unstructuredType, insights[2].Type)
	assert.Equal(t, "42", insights[2].Description)
}

func TestRecoverIsTotal(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"null",
		"{}",
		"[]",
		"[[[",
		"]]][[[",
		`[1, "two", null, {"title": 3}]`,
		`{"severity": "low"}`,
		"plain prose without any structure",
		strings.Repeat("x", 2000),
	}

	r := newTestRecoverer()
	for _, raw := range inputs {
		t.Run(fmt.Sprintf("%.20q", raw), func(t *testing.T) {
			insights := r.Recover(raw, nil)
			require.NotEmpty(t, insights)
			for _, in := range insights {
				assert.NotEmpty(t, in.Source)
				assert.NotNil(t, in.AffectedMetrics)
			}
			_, err := json.Marshal(insights)
			assert.NoError(t, err)
		})
	}
}

func TestScrapeMetricNames(t *testing.T) {
	raw := `"affected_metrics": ["lcp_p95_ms", "cls_avg"], "metric_key": "ttfb_avg_ms", cpu_usage rose and lcp_p95_ms again`
	assert.Equal(t, []string{"lcp_p95_ms", "cls_avg", "ttfb_avg_ms", "cpu_usage"}, scrapeMetricNames(raw))

	var many []string
	for i := 0; i < 12; i++ {
		many = append(many, fmt.Sprintf("m%d_usage", i))
	}
	assert.Len(t, scrapeMetricNames(strings.Join(many, " ")), maxScrapedMetrics)
}

func TestMatchingBracket(t *testing.T) {
	s := `[{"a":"]"},[1]] tail`
	assert.Equal(t, strings.Index(s, " tail")-1, matchingBracket(s, 0))
	assert.Equal(t, -1, matchingBracket(`[[1]`, 0))
}
