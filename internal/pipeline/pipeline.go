package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/pagescore/internal/model"
)

// Step is one stage of the per-page analysis: render, extract, evaluate
// or score. Each step reads what earlier steps stored on the analysis and
// adds its own result.
type Step interface {
	// Do runs the step. A page-level problem that should not stop the
	// report is recorded with analysis.AddError and reported as nil.
	Do(ctx context.Context, analysis *model.PageAnalysis) error

	// Name identifies the step in logs and recorded errors.
	Name() string
}

// Pipeline runs an ordered list of steps against a single page.
// A Pipeline is not safe for concurrent use; the batch processor builds
// one per page.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger

	// continueOnError keeps later steps running after a step fails.
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger. slog.Default is used otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError lets later steps run after a failed one.
// The failure is still recorded on the analysis.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New returns an empty Pipeline. Add steps with AddStep or AddSteps.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends step to the end of the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends steps in the given order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step against analysis in order.
//
// The context is checked between steps only. A failing step is recorded
// as "<step>: <error>" on the analysis; unless the pipeline continues on
// error, that error is returned and the remaining steps are skipped.
func (p *Pipeline) Execute(ctx context.Context, analysis *model.PageAnalysis) error {
	page := pageAttr(analysis)

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("page analysis cancelled", page, "step", step.Name(), "reason", err)
			return err
		}

		start := time.Now()
		err := step.Do(ctx, analysis)
		elapsed := time.Since(start)

		if err == nil {
			p.logger.Debug("step done", page, "step", step.Name(), "elapsed", elapsed)
			continue
		}

		p.logger.Error("step failed", page, "step", step.Name(), "elapsed", elapsed, "error", err)
		analysis.AddError(fmt.Sprintf("%s: %v", step.Name(), err))
		if !p.continueOnError {
			return err
		}
	}
	return nil
}

// StepCount reports how many steps the pipeline holds.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames lists step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, 0, len(p.steps))
	for _, step := range p.steps {
		names = append(names, step.Name())
	}
	return names
}

// pageAttr groups the fields that identify a page in log records.
func pageAttr(analysis *model.PageAnalysis) slog.Attr {
	return slog.Group("page",
		slog.Int("index", analysis.Index),
		slog.String("slug", analysis.Page.Slug),
	)
}
