package compare

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/imishinist/perfdiff/internal/diff"
	"github.com/imishinist/perfdiff/internal/history"
	"github.com/imishinist/perfdiff/internal/insight"
	"github.com/imishinist/perfdiff/internal/models"
	"github.com/imishinist/perfdiff/internal/parser"
	"github.com/imishinist/perfdiff/internal/validate"
)

// Analyzer produces insights for a comparison.
type Analyzer interface {
	Analyze(ctx context.Context, req insight.Request) []models.Insight
}

// Input is one side of a comparison: an already decoded Document, or a Path
// to a JSON or YAML file. Name is used when the report does not carry one.
type Input struct {
	Name     string
	Path     string
	Document any
}

type Request struct {
	Baseline      Input
	Current       Input
	SystemContext string
	// Insights requests analysis of the diffs.
	Insights bool
}

type Service struct {
	validator *validate.Validator
	analyzer  Analyzer
	recorder  history.Recorder
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewService returns a Service. analyzer and recorder may be nil.
func NewService(analyzer Analyzer, recorder history.Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		validator: validate.NewValidator(nil),
		analyzer:  analyzer,
		recorder:  recorder,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Compare validates both reports, diffs them and optionally attaches
// insights. It returns a *ValidationError when either report is invalid.
// Recording failures are logged and do not fail the comparison.
func (s *Service) Compare(ctx context.Context, req Request) (*models.ComparisonResult, error) {
	var baseline, current validate.Result

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		baseline, err = s.load(gctx, req.Baseline, SideBaseline)
		return err
	})
	g.Go(func() error {
		var err error
		current, err = s.load(gctx, req.Current, SideCurrent)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	invalid := map[string][]string{}
	if !baseline.Valid {
		invalid[SideBaseline] = baseline.Errors
	}
	if !current.Valid {
		invalid[SideCurrent] = current.Errors
	}
	if len(invalid) > 0 {
		return nil, &ValidationError{Reports: invalid}
	}

	comparison := diff.Diff(baseline.Sanitized, current.Sanitized)
	result := &models.ComparisonResult{
		ID:        s.newID(),
		CreatedAt: s.now().UTC(),
		Baseline:  baseline.Sanitized,
		Current:   current.Sanitized,
		Diffs:     comparison.Diffs,
		Summary:   comparison.Summary,
		Warnings: models.ReportWarnings{
			Baseline: baseline.Warnings,
			Current:  current.Warnings,
		},
	}
	s.logger.Info("compared reports",
		zap.String("id", result.ID),
		zap.Int("metrics", result.Summary.Total),
		zap.Int("worse", result.Summary.Worse),
		zap.Int("improved", result.Summary.Improved))

	if req.Insights && s.analyzer != nil {
		result.Insights = s.analyzer.Analyze(ctx, insight.Request{
			SystemContext: req.SystemContext,
			Diffs:         result.Diffs,
		})
	}

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, result); err != nil {
			s.logger.Warn("failed to record comparison", zap.String("id", result.ID), zap.Error(err))
		}
	}

	return result, nil
}

func (s *Service) load(ctx context.Context, in Input, side string) (validate.Result, error) {
	if err := ctx.Err(); err != nil {
		return validate.Result{}, err
	}

	doc := in.Document
	if doc == nil {
		if in.Path == "" {
			return validate.Result{}, fmt.Errorf("%s report: no file or document given", side)
		}
		parsed, err := parser.ParseFile(in.Path)
		if err != nil {
			return validate.Result{}, fmt.Errorf("failed to load %s report: %w", side, err)
		}
		doc = parsed
	}

	name := in.Name
	if name == "" {
		name = side
	}
	result := s.validator.Validate(doc, name)
	for _, w := range result.Warnings {
		s.logger.Debug("report warning", zap.String("side", side), zap.String("warning", w))
	}
	return result, nil
}
