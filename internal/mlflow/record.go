package mlflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/databricks/databricks-sdk-go/service/ml"
	"go.uber.org/zap"

	"github.com/imishinist/perfdiff/internal/models"
)

// Record stores a comparison as one MLflow run. The run is marked FAILED when
// any param or metric could not be logged.
func (c *Client) Record(ctx context.Context, result *models.ComparisonResult) error {
	baselineName, currentName := reportName(result.Baseline), reportName(result.Current)

	run, err := c.CreateRun(ctx, &models.RunConfig{
		ExperimentID: c.config.ExperimentID,
		RunName:      fmt.Sprintf("compare-%s-vs-%s", baselineName, currentName),
		Tags:         summaryTags(result),
		Description: fmt.Sprintf("%s compared against %s: %d worse, %d improved, %d unchanged",
			currentName, baselineName, result.Summary.Worse, result.Summary.Improved, result.Summary.Same),
	})
	if err != nil {
		return err
	}
	c.logger.Debug("created MLflow run", zap.String("run_id", run.RunID), zap.String("run_name", run.RunName))

	var errs []error
	for _, p := range []models.Parameter{
		{Key: "baseline_name", Value: baselineName},
		{Key: "current_name", Value: currentName},
		{Key: "comparison_id", Value: result.ID},
	} {
		if err := c.logParam(ctx, run.RunID, p); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.LogMetrics(ctx, run.RunID, comparisonMetrics(result)); err != nil {
		errs = append(errs, err)
	}

	status := models.RunStatusFinished
	if len(errs) > 0 {
		status = models.RunStatusFailed
	}
	if err := c.UpdateRun(ctx, run.RunID, status); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Client) logParam(ctx context.Context, runID string, p models.Parameter) error {
	err := c.experiments.LogParam(ctx, ml.LogParam{RunId: runID, Key: p.Key, Value: p.Value})
	if err != nil {
		c.logger.Warn("failed to log param", zap.String("param", p.Key), zap.Error(err))
		return fmt.Errorf("failed to log param %s: %w", p.Key, err)
	}
	return nil
}

func reportName(r *models.PerformanceReport) string {
	if r == nil || r.Name == "" {
		return "report"
	}
	return r.Name
}

func summaryTags(result *models.ComparisonResult) map[string]string {
	s := result.Summary
	return map[string]string{
		"perfdiff.comparison_id":    result.ID,
		"perfdiff.summary.total":    strconv.Itoa(s.Total),
		"perfdiff.summary.improved": strconv.Itoa(s.Improved),
		"perfdiff.summary.worse":    strconv.Itoa(s.Worse),
		"perfdiff.summary.same":     strconv.Itoa(s.Same),
		"perfdiff.summary.unknown":  strconv.Itoa(s.Unknown),
	}
}

func comparisonMetrics(result *models.ComparisonResult) []models.Metric {
	var metrics []models.Metric
	add := func(prefix, key string, v *float64) {
		if v == nil {
			return
		}
		metrics = append(metrics, models.Metric{
			Key:       prefix + "/" + key,
			Value:     *v,
			Timestamp: result.CreatedAt,
		})
	}
	for _, d := range result.Diffs {
		add("baseline", d.Key, d.Baseline)
		add("current", d.Key, d.Current)
		add("pct", d.Key, d.Pct)
	}
	return metrics
}
