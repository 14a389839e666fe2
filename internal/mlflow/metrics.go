package mlflow

import (
	"context"
	"fmt"
	"regexp"

	"github.com/databricks/databricks-sdk-go/service/ml"
	"go.uber.org/zap"

	"github.com/imishinist/perfdiff/internal/models"
)

// Characters MLflow rejects in metric keys.
var invalidKeyChars = regexp.MustCompile(`[^A-Za-z0-9_\-./ ]`)

func metricKey(key string) string {
	return invalidKeyChars.ReplaceAllString(key, "_")
}

func (c *Client) LogMetric(ctx context.Context, runID string, metric models.Metric) error {
	logMetric := ml.LogMetric{
		RunId:     runID,
		Key:       metricKey(metric.Key),
		Value:     metric.Value,
		Timestamp: metric.Timestamp.UnixMilli(),
		Step:      metric.Step,
	}
	if metric.Timestamp.IsZero() {
		logMetric.Timestamp = c.now().UnixMilli()
	}

	if err := c.experiments.LogMetric(ctx, logMetric); err != nil {
		return fmt.Errorf("failed to log metric %s: %w", metric.Key, err)
	}
	return nil
}

// LogMetrics logs every metric and returns the first error after trying all
// of them.
func (c *Client) LogMetrics(ctx context.Context, runID string, metrics []models.Metric) error {
	var firstErr error
	for _, metric := range metrics {
		if err := c.LogMetric(ctx, runID, metric); err != nil {
			c.logger.Warn("failed to log metric", zap.String("metric", metric.Key), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
