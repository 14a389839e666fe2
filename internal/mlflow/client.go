package mlflow

import (
	"context"
	"fmt"
	"time"

	"github.com/databricks/databricks-sdk-go"
	"github.com/databricks/databricks-sdk-go/service/ml"
	"go.uber.org/zap"

	"github.com/imishinist/perfdiff/internal/config"
)

// experimentsAPI is the part of the MLflow experiments service the recorder
// uses.
type experimentsAPI interface {
	CreateRun(ctx context.Context, request ml.CreateRun) (*ml.CreateRunResponse, error)
	LogMetric(ctx context.Context, request ml.LogMetric) error
	LogParam(ctx context.Context, request ml.LogParam) error
	UpdateRun(ctx context.Context, request ml.UpdateRun) (*ml.UpdateRunResponse, error)
}

type Client struct {
	experiments experimentsAPI
	config      *config.Config
	logger      *zap.Logger
	now         func() time.Time
}

func NewClient(cfg *config.Config, logger *zap.Logger) (*Client, error) {
	if cfg.TrackingURI == "" {
		return nil, fmt.Errorf("tracking URI is required")
	}
	if cfg.ExperimentID == "" {
		return nil, fmt.Errorf("experiment ID is required")
	}

	var databricksConfig *databricks.Config

	if cfg.IsDatabricks() {
		databricksConfig = &databricks.Config{}

		// Handle different Databricks URI formats
		if cfg.TrackingURI == "databricks" {
			if cfg.DatabricksHost != "" {
				databricksConfig.Host = cfg.DatabricksHost
			}
		} else if profile := cfg.GetDatabricksProfile(); profile != "" {
			databricksConfig.Profile = profile
		} else {
			databricksConfig.Host = cfg.TrackingURI
		}

		// Token overrides profile
		if cfg.DatabricksToken != "" {
			databricksConfig.Token = cfg.DatabricksToken
		}

		if databricksConfig.Host == "" && databricksConfig.Profile == "" {
			return nil, fmt.Errorf("Databricks host or profile is required when using Databricks MLflow. Set DATABRICKS_HOST environment variable, use a full Databricks URL as tracking URI, or specify a profile with databricks://{profile}")
		}
	} else {
		// Plain MLflow servers ignore the token but the SDK requires one.
		databricksConfig = &databricks.Config{
			Host:  cfg.TrackingURI,
			Token: "dummy-token-for-regular-mlflow",
		}
	}

	client, err := databricks.NewWorkspaceClient(databricksConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create MLflow client: %w", err)
	}

	return newClient(client.Experiments, cfg, logger), nil
}

func newClient(experiments experimentsAPI, cfg *config.Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		experiments: experiments,
		config:      cfg,
		logger:      logger,
		now:         time.Now,
	}
}
