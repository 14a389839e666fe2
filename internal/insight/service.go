package insight

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/imishinist/perfdiff/internal/cache"
	"github.com/imishinist/perfdiff/internal/models"
)

const cachePrefix = "perfdiff:insights:"

// Generator produces free-form text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Request struct {
	SystemContext string              `json:"system_context"`
	Diffs         []models.MetricDiff `json:"diffs"`
}

// Service produces insights for a comparison. It prefers the generator,
// caches its raw responses and falls back to LocalInsights on any failure.
type Service struct {
	generator Generator
	cache     cache.Cache
	breaker   *gobreaker.CircuitBreaker
	recoverer *Recoverer
	logger    *zap.Logger
}

// NewService returns a Service. A nil generator makes every call use the
// local rules; a nil cache disables caching.
func NewService(generator Generator, c cache.Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = cache.Nop{}
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "insight-generator",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	return &Service{
		generator: generator,
		cache:     c,
		breaker:   breaker,
		recoverer: NewRecoverer(logger),
		logger:    logger,
	}
}

// Analyze always returns at least one insight.
func (s *Service) Analyze(ctx context.Context, req Request) []models.Insight {
	if s.generator == nil {
		return LocalInsights(req.Diffs)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		s.logger.Warn("failed to encode insight request", zap.Error(err))
		return LocalInsights(req.Diffs)
	}
	key := cache.Key(cachePrefix, payload)

	raw, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("failed to read insight cache", zap.Error(err))
	}
	if hit {
		s.logger.Debug("insight cache hit", zap.String("key", key))
		return s.recoverer.Recover(raw, req.Diffs)
	}

	raw, err = s.generate(ctx, BuildPrompt(req.SystemContext, req.Diffs))
	if err != nil {
		s.logger.Warn("insight generation failed; using local rules", zap.Error(err))
		return LocalInsights(req.Diffs)
	}

	if err := s.cache.Set(ctx, key, raw); err != nil {
		s.logger.Warn("failed to write insight cache", zap.Error(err))
	}
	return s.recoverer.Recover(raw, req.Diffs)
}

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	out, err := s.breaker.Execute(func() (interface{}, error) {
		return s.generator.Generate(ctx, prompt)
	})
	if err != nil {
		return "", err
	}
	raw, ok := out.(string)
	if !ok {
		return "", errors.New("generator returned a non-text response")
	}
	return raw, nil
}
