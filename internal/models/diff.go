package models

import "time"

type BetterWhen string

const (
	BetterWhenLower  BetterWhen = "lower"
	BetterWhenHigher BetterWhen = "higher"
)

type Trend string

const (
	TrendImproved Trend = "improved"
	TrendWorse    Trend = "worse"
	TrendSame     Trend = "same"
	TrendUnknown  Trend = "unknown"
)

// MetricDiff compares one metric across the baseline and current reports.
// Baseline or Current is nil when the metric is absent from that side.
type MetricDiff struct {
	Key        string     `json:"key"`
	Label      string     `json:"label"`
	Baseline   *float64   `json:"baseline"`
	Current    *float64   `json:"current"`
	Change     *float64   `json:"change"`
	Pct        *float64   `json:"pct"`
	BetterWhen BetterWhen `json:"betterWhen"`
	Trend      Trend      `json:"trend"`
}

type Summary struct {
	Total    int `json:"total"`
	Improved int `json:"improved"`
	Worse    int `json:"worse"`
	Same     int `json:"same"`
	Unknown  int `json:"unknown"`
}

// Add tallies a single trend.
func (s *Summary) Add(t Trend) {
	s.Total++
	switch t {
	case TrendImproved:
		s.Improved++
	case TrendWorse:
		s.Worse++
	case TrendSame:
		s.Same++
	default:
		s.Unknown++
	}
}

type Comparison struct {
	Diffs   []MetricDiff `json:"diffs"`
	Summary Summary      `json:"summary"`
}

type ReportWarnings struct {
	Baseline []string `json:"baseline,omitempty"`
	Current  []string `json:"current,omitempty"`
}

type ComparisonResult struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	Baseline  *PerformanceReport `json:"baseline"`
	Current   *PerformanceReport `json:"current"`
	Diffs     []MetricDiff       `json:"diffs"`
	Summary   Summary            `json:"summary"`
	Insights  []Insight          `json:"insights,omitempty"`
	Warnings  ReportWarnings     `json:"warnings"`
}
