package trend

import (
	"math"
	"regexp"

	"github.com/imishinist/perfdiff/internal/models"
)

// NoiseFloorPct is the smallest relative change, in percent, treated as a real
// improvement or regression.
const NoiseFloorPct = 5.0

var (
	higherIsBetter = regexp.MustCompile(`(?i)throughput|rps|tps|success|pass`)
	lowerIsBetter  = regexp.MustCompile(`(?i)latency|response|time|p\d+|error|fail|cpu|mem(ory)?`)
)

type Classification struct {
	BetterWhen models.BetterWhen
	Trend      models.Trend
	Change     *float64
	Pct        *float64
	// Inferred is false when the name matched neither direction pattern and
	// fell back to lower-is-better.
	Inferred bool
}

// Direction infers whether higher or lower values of a metric are better from
// its name alone.
func Direction(key string) (models.BetterWhen, bool) {
	if higherIsBetter.MatchString(key) {
		return models.BetterWhenHigher, true
	}
	return models.BetterWhenLower, lowerIsBetter.MatchString(key)
}

// PercentChange returns change relative to baseline in percent, or 0 when the
// baseline is exactly zero.
func PercentChange(baseline, current float64) float64 {
	if baseline == 0 {
		return 0
	}
	return (current - baseline) / baseline * 100
}

// Classify decides whether a metric improved, got worse or stayed the same.
// A nil side means the metric is absent from that report.
func Classify(key string, baseline, current *float64) Classification {
	betterWhen, inferred := Direction(key)
	c := Classification{
		BetterWhen: betterWhen,
		Trend:      models.TrendUnknown,
		Inferred:   inferred,
	}
	if baseline == nil || current == nil {
		return c
	}

	change := *current - *baseline
	pct := PercentChange(*baseline, *current)
	c.Change = &change
	c.Pct = &pct

	switch {
	case math.Abs(pct) < NoiseFloorPct:
		c.Trend = models.TrendSame
	case betterWhen == models.BetterWhenLower && change < 0:
		c.Trend = models.TrendImproved
	case betterWhen == models.BetterWhenHigher && change > 0:
		c.Trend = models.TrendImproved
	default:
		c.Trend = models.TrendWorse
	}
	return c
}
