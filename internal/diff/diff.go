package diff

import (
	"sort"

	"github.com/samber/lo"

	"github.com/imishinist/perfdiff/internal/models"
	"github.com/imishinist/perfdiff/internal/trend"
)

// Diff compares two reports over the union of their metric names. Metrics
// present on one side only yield a record with the other side nil and an
// unknown trend. Records are ordered by key.
func Diff(baseline, current *models.PerformanceReport) models.Comparison {
	keys := lo.Union(baseline.Keys(), current.Keys())
	sort.Strings(keys)

	comparison := models.Comparison{
		Diffs: make([]models.MetricDiff, 0, len(keys)),
	}

	for _, key := range keys {
		b, c := baseline.Value(key), current.Value(key)
		classification := trend.Classify(key, b, c)

		comparison.Diffs = append(comparison.Diffs, models.MetricDiff{
			Key:        key,
			Label:      Label(key),
			Baseline:   b,
			Current:    c,
			Change:     classification.Change,
			Pct:        classification.Pct,
			BetterWhen: classification.BetterWhen,
			Trend:      classification.Trend,
		})
		comparison.Summary.Add(classification.Trend)
	}

	return comparison
}

// Regressions returns the diffs whose trend is worse, largest relative change
// first.
func Regressions(diffs []models.MetricDiff) []models.MetricDiff {
	worse := lo.Filter(diffs, func(d models.MetricDiff, _ int) bool {
		return d.Trend == models.TrendWorse
	})
	sort.SliceStable(worse, func(i, j int) bool {
		return magnitude(worse[i]) > magnitude(worse[j])
	})
	return worse
}

func magnitude(d models.MetricDiff) float64 {
	if d.Pct == nil {
		return 0
	}
	if *d.Pct < 0 {
		return -*d.Pct
	}
	return *d.Pct
}
