package mlflow

import (
	"context"
	"fmt"

	"github.com/databricks/databricks-sdk-go/service/ml"

	"github.com/imishinist/perfdiff/internal/models"
)

func (c *Client) CreateRun(ctx context.Context, config *models.RunConfig) (*models.RunInfo, error) {
	if config.ExperimentID == "" {
		return nil, fmt.Errorf("experiment ID must be provided")
	}

	startTime := c.now()
	runName := config.RunName
	if runName == "" {
		runName = "run-" + startTime.Format("2006-01-02-15-04-05")
	}

	tags := make([]ml.RunTag, 0, len(config.Tags)+2)
	for key, value := range config.Tags {
		tags = append(tags, ml.RunTag{
			Key:   key,
			Value: value,
		})
	}
	tags = append(tags, ml.RunTag{
		Key:   "mlflow.runName",
		Value: runName,
	})
	if config.Description != "" {
		tags = append(tags, ml.RunTag{
			Key:   "mlflow.note.content",
			Value: config.Description,
		})
	}

	resp, err := c.experiments.CreateRun(ctx, ml.CreateRun{
		ExperimentId: config.ExperimentID,
		RunName:      runName,
		StartTime:    startTime.UnixMilli(),
		Tags:         tags,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	if resp == nil || resp.Run == nil || resp.Run.Info == nil {
		return nil, fmt.Errorf("failed to create run: empty response")
	}

	return &models.RunInfo{
		RunID:        resp.Run.Info.RunId,
		ExperimentID: config.ExperimentID,
		RunName:      runName,
		StartTime:    startTime,
	}, nil
}

func (c *Client) UpdateRun(ctx context.Context, runID string, status models.RunStatus) error {
	mlStatus := ml.UpdateRunStatusFinished
	if status == models.RunStatusFailed {
		mlStatus = ml.UpdateRunStatusFailed
	}

	_, err := c.experiments.UpdateRun(ctx, ml.UpdateRun{
		RunId:   runID,
		Status:  mlStatus,
		EndTime: c.now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	return nil
}
