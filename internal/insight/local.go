package insight

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/imishinist/perfdiff/internal/diff"
	"github.com/imishinist/perfdiff/internal/models"
	"github.com/imishinist/perfdiff/internal/timeutils"
)

const (
	highSeverityPct   = 20.0
	mediumSeverityPct = 10.0
	ruleConfidence    = 0.9
	maxListedMetrics  = 10
)

// LocalInsights derives insights from the diffs alone. It is used when no
// generator is configured or generation fails, and never returns an empty
// list.
func LocalInsights(diffs []models.MetricDiff) []models.Insight {
	generatedAt := timeutils.Format(time.Now())
	var out []models.Insight

	for _, d := range diff.Regressions(diffs) {
		out = append(out, regression(d))
	}

	improved := keysWithTrend(diffs, models.TrendImproved)
	if len(improved) > 0 {
		out = append(out, models.Insight{
			Type:            "improvement",
			Severity:        models.SeverityLow,
			Confidence:      ruleConfidence,
			Title:           fmt.Sprintf("%d metric(s) improved", len(improved)),
			Description:     fmt.Sprintf("Improved beyond the noise floor: %s.", listed(improved)),
			AffectedMetrics: capped(improved),
		})
	}

	missing := keysWithTrend(diffs, models.TrendUnknown)
	if len(missing) > 0 {
		out = append(out, models.Insight{
			Type:            "coverage",
			Severity:        models.SeverityLow,
			Confidence:      1,
			Title:           fmt.Sprintf("%d metric(s) present in only one report", len(missing)),
			Description:     fmt.Sprintf("These metrics cannot be compared: %s.", listed(missing)),
			AffectedMetrics: capped(missing),
			ActionableSteps: []string{"Make sure both runs collect the same metrics"},
		})
	}

	if len(out) == 0 {
		out = append(out, models.Insight{
			Type:        "summary",
			Severity:    models.SeverityLow,
			Confidence:  ruleConfidence,
			Title:       "No significant changes detected",
			Description: fmt.Sprintf("All %d compared metric(s) stayed within the noise floor.", len(diffs)),
		})
	}

	for i := range out {
		out[i].Source = SourceRules
		out[i].GeneratedAt = generatedAt
		if out[i].AffectedMetrics == nil {
			out[i].AffectedMetrics = []string{}
		}
	}
	return out
}

func regression(d models.MetricDiff) models.Insight {
	pct := 0.0
	if d.Pct != nil {
		pct = math.Abs(*d.Pct)
	}

	severity := models.SeverityLow
	switch {
	case pct >= highSeverityPct:
		severity = models.SeverityHigh
	case pct >= mediumSeverityPct:
		severity = models.SeverityMedium
	}

	return models.Insight{
		Type:       "regression",
		Severity:   severity,
		Confidence: ruleConfidence,
		Title:      fmt.Sprintf("%s regressed by %.1f%%", d.Label, pct),
		Description: fmt.Sprintf("%s moved from %g to %g; %s values are better.",
			d.Label, deref(d.Baseline), deref(d.Current), d.BetterWhen),
		AffectedMetrics: []string{d.Key},
		ActionableSteps: []string{
			fmt.Sprintf("Review changes between the two runs that could affect %s", d.Label),
			"Re-run the test to rule out environmental noise",
		},
	}
}

func keysWithTrend(diffs []models.MetricDiff, t models.Trend) []string {
	return lo.FilterMap(diffs, func(d models.MetricDiff, _ int) (string, bool) {
		return d.Key, d.Trend == t
	})
}

func capped(keys []string) []string {
	if len(keys) > maxListedMetrics {
		return keys[:maxListedMetrics]
	}
	return keys
}

func listed(keys []string) string {
	s := strings.Join(capped(keys), ", ")
	if len(keys) > maxListedMetrics {
		s += fmt.Sprintf(" and %d more", len(keys)-maxListedMetrics)
	}
	return s
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
