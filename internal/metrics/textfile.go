package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/imishinist/perfdiff/internal/models"
)

// Collectors for one comparison, registered on a private registry so each
// export contains only that comparison.
type Collectors struct {
	registry *prometheus.Registry

	value  *prometheus.GaugeVec
	change *prometheus.GaugeVec
	trends *prometheus.GaugeVec
}

func NewCollectors() *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		value: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "perfdiff_metric_value",
			Help: "Metric value in the baseline or current report",
		}, []string{"metric", "side"}),
		change: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "perfdiff_metric_change_percent",
			Help: "Relative change of a metric from baseline to current, in percent",
		}, []string{"metric"}),
		trends: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "perfdiff_trend_total",
			Help: "Number of metrics per trend",
		}, []string{"trend"}),
	}
	c.registry.MustRegister(c.value, c.change, c.trends)
	return c
}

// Observe sets every gauge from result.
func (c *Collectors) Observe(result *models.ComparisonResult) {
	for _, d := range result.Diffs {
		if d.Baseline != nil {
			c.value.WithLabelValues(d.Key, "baseline").Set(*d.Baseline)
		}
		if d.Current != nil {
			c.value.WithLabelValues(d.Key, "current").Set(*d.Current)
		}
		if d.Pct != nil {
			c.change.WithLabelValues(d.Key).Set(*d.Pct)
		}
	}

	s := result.Summary
	c.trends.WithLabelValues(string(models.TrendImproved)).Set(float64(s.Improved))
	c.trends.WithLabelValues(string(models.TrendWorse)).Set(float64(s.Worse))
	c.trends.WithLabelValues(string(models.TrendSame)).Set(float64(s.Same))
	c.trends.WithLabelValues(string(models.TrendUnknown)).Set(float64(s.Unknown))
}

func (c *Collectors) Gatherer() prometheus.Gatherer {
	return c.registry
}

// WriteTextfile writes result in the node exporter textfile format.
func WriteTextfile(path string, result *models.ComparisonResult) error {
	c := NewCollectors()
	c.Observe(result)
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
