package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/pagescore/internal/audit"
	"github.com/nao1215/pagescore/internal/extract"
	"github.com/nao1215/pagescore/internal/model"
	"github.com/nao1215/pagescore/internal/score"
)

// Renderer assembles the full markup of a page from its stored fields.
// Implementations should honour ctx; an empty string is a valid result.
type Renderer interface {
	Render(ctx context.Context, page model.PageRecord, site model.SiteSettings, menus []model.Menu) (string, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, page model.PageRecord, site model.SiteSettings, menus []model.Menu) (string, error)

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, page model.PageRecord, site model.SiteSettings, menus []model.Menu) (string, error) {
	return f(ctx, page, site, menus)
}

// ErrRenderTimeout is recorded when a render exceeds the step timeout.
var ErrRenderTimeout = errors.New("render timed out")

// RenderStep renders the page markup.
// Render failures never stop the pipeline: the markup stays empty and the
// failure is recorded on the analysis.
type RenderStep struct {
	renderer Renderer
	site     model.SiteSettings
	menus    []model.Menu
	timeout  time.Duration
	logger   *slog.Logger
}

// RenderStepOption configures a RenderStep.
type RenderStepOption func(*RenderStep)

// WithRenderTimeout bounds each render call. Zero disables the bound.
func WithRenderTimeout(d time.Duration) RenderStepOption {
	return func(s *RenderStep) {
		s.timeout = d
	}
}

// WithRenderLogger sets a custom logger for the render step.
func WithRenderLogger(logger *slog.Logger) RenderStepOption {
	return func(s *RenderStep) {
		s.logger = logger
	}
}

// NewRenderStep creates a render step. A nil renderer uses the page content
// as the markup.
func NewRenderStep(renderer Renderer, site model.SiteSettings, menus []model.Menu, opts ...RenderStepOption) *RenderStep {
	s := &RenderStep{
		renderer: renderer,
		site:     site,
		menus:    menus,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *RenderStep) Name() string {
	return "render"
}

// Do renders the page unless it carries precomputed metrics.
func (s *RenderStep) Do(ctx context.Context, analysis *model.PageAnalysis) error {
	if analysis.Page.Metrics != nil {
		return nil
	}
	if s.renderer == nil {
		analysis.Markup = analysis.Page.Content
		return nil
	}

	markup, err := s.render(ctx, analysis.Page)
	if err != nil {
		s.logger.Warn("render failed, analysing empty markup",
			"slug", analysis.Page.Slug,
			"error", err,
		)
		analysis.AddError("render: " + err.Error())
		analysis.Markup = ""
		return nil
	}
	analysis.Markup = markup
	return nil
}

type renderResult struct {
	markup string
	err    error
}

// render calls the renderer on its own goroutine so that a panic or a
// renderer ignoring ctx cannot stall the page past the timeout.
func (s *RenderStep) render(ctx context.Context, page model.PageRecord) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	done := make(chan renderResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- renderResult{err: fmt.Errorf("renderer panic: %v", r)}
			}
		}()
		markup, err := s.renderer.Render(ctx, page, s.site, s.menus)
		done <- renderResult{markup: markup, err: err}
	}()

	select {
	case res := <-done:
		return res.markup, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ErrRenderTimeout
		}
		return "", ctx.Err()
	}
}

// ExtractStep turns the rendered markup into metrics.
type ExtractStep struct {
	extractor *extract.Extractor
}

// NewExtractStep creates an extract step.
func NewExtractStep(extractor *extract.Extractor) *ExtractStep {
	return &ExtractStep{extractor: extractor}
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do fills analysis.Metrics, preferring a precomputed snapshot.
func (s *ExtractStep) Do(_ context.Context, analysis *model.PageAnalysis) error {
	if analysis.Page.Metrics != nil {
		analysis.Metrics = *analysis.Page.Metrics
		return nil
	}
	analysis.Metrics = s.extractor.Extract(analysis.Markup, analysis.Page)
	return nil
}

// EvaluateStep applies the issue rules to the metrics.
type EvaluateStep struct {
	evaluator *audit.Evaluator
}

// NewEvaluateStep creates an evaluate step.
func NewEvaluateStep(evaluator *audit.Evaluator) *EvaluateStep {
	return &EvaluateStep{evaluator: evaluator}
}

// Name returns the step name.
func (s *EvaluateStep) Name() string {
	return "evaluate"
}

// Do fills analysis.Issues and analysis.Tally.
func (s *EvaluateStep) Do(_ context.Context, analysis *model.PageAnalysis) error {
	analysis.Issues, analysis.Tally = s.evaluator.Evaluate(analysis.Metrics)
	return nil
}

// ScoreStep computes the score and optimization tier.
type ScoreStep struct {
	weights score.Weights
}

// NewScoreStep creates a score step.
func NewScoreStep(weights score.Weights) *ScoreStep {
	return &ScoreStep{weights: weights}
}

// Name returns the step name.
func (s *ScoreStep) Name() string {
	return "score"
}

// Do fills analysis.Score and analysis.Tier.
func (s *ScoreStep) Do(_ context.Context, analysis *model.PageAnalysis) error {
	analysis.Score = score.Calculate(analysis.Tally, s.weights)
	analysis.Tier = score.Tier(analysis.Score, analysis.Tally.Critical)
	return nil
}
