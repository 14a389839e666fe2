package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/imishinist/perfdiff/internal/cache"
	"github.com/imishinist/perfdiff/internal/config"
	"github.com/imishinist/perfdiff/internal/history"
	"github.com/imishinist/perfdiff/internal/insight"
	"github.com/imishinist/perfdiff/internal/llm"
	"github.com/imishinist/perfdiff/internal/mlflow"
)

// newCache returns the configured response cache and a function releasing it.
func newCache(cfg *config.Config) (cache.Cache, func()) {
	switch cfg.CacheBackend {
	case config.CacheRedis:
		r := cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})
		return r, func() {
			if err := r.Close(); err != nil {
				logger.Debug("failed to close redis client", zap.Error(err))
			}
		}
	case config.CacheNone:
		return cache.Nop{}, func() {}
	default:
		return cache.NewMemory(cfg.CacheTTL), func() {}
	}
}

// newInsightService wires the generator when an endpoint is configured;
// otherwise insights come from the local rules.
func newInsightService(cfg *config.Config) (*insight.Service, func(), error) {
	if !cfg.LLMEnabled() {
		return insight.NewService(nil, nil, logger), func() {}, nil
	}

	client, err := llm.NewClient(llm.Config{
		Endpoint: cfg.LLMEndpoint,
		APIKey:   cfg.LLMAPIKey,
		Model:    cfg.LLMModel,
		Timeout:  cfg.LLMTimeout,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	c, closeCache := newCache(cfg)
	return insight.NewService(client, c, logger), closeCache, nil
}

// newRecorder returns nil when no history sink is configured.
func newRecorder(cfg *config.Config) (history.Recorder, error) {
	var recorders history.Multi

	if cfg.HistoryFile != "" {
		recorders = append(recorders, history.NewFileRecorder(cfg.HistoryFile))
	}

	if cfg.MLflowEnabled() {
		client, err := mlflow.NewClient(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create MLflow client: %w", err)
		}
		recorders = append(recorders, client)
	}

	if len(recorders) == 0 {
		return nil, nil
	}
	return recorders, nil
}
