package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/pagescore/internal/audit"
	"github.com/nao1215/pagescore/internal/extract"
	"github.com/nao1215/pagescore/internal/model"
	"github.com/nao1215/pagescore/internal/score"
)

// IssuePreviewSize is the number of issue messages shown in list views.
const IssuePreviewSize = 3

// ScoreResolver returns the last known score for a page identifier.
// current is the score just computed; resolvers return it when they have
// no history for the page.
type ScoreResolver interface {
	PreviousScore(ctx context.Context, identifier string, current int) (int, error)
}

// ScoreResolverFunc adapts a function to the ScoreResolver interface.
type ScoreResolverFunc func(ctx context.Context, identifier string, current int) (int, error)

// PreviousScore calls f.
func (f ScoreResolverFunc) PreviousScore(ctx context.Context, identifier string, current int) (int, error) {
	return f(ctx, identifier, current)
}

// Recorder observes compiled reports, for example to export metrics.
type Recorder interface {
	RecordReport(report *model.Report, elapsed time.Duration)
}

// Compiler runs the per-page analysis for a page set and folds the results
// into a report. A Compiler holds no state between Compile calls.
type Compiler struct {
	renderer      Renderer
	site          model.SiteSettings
	menus         []model.Menu
	resolver      ScoreResolver
	weights       score.Weights
	thresholds    audit.Thresholds
	concurrency   int
	renderTimeout time.Duration
	clock         func() time.Time
	newRunID      func() string
	logger        *slog.Logger
	recorder      Recorder
}

// CompilerOption configures a Compiler.
type CompilerOption func(*Compiler)

// WithRenderer sets the page renderer. Without one, page content is
// analysed as-is.
func WithRenderer(r Renderer) CompilerOption {
	return func(c *Compiler) {
		c.renderer = r
	}
}

// WithSite sets the site settings and menus passed to the renderer.
func WithSite(site model.SiteSettings, menus []model.Menu) CompilerOption {
	return func(c *Compiler) {
		c.site = site
		c.menus = menus
	}
}

// WithResolver sets the previous-score resolver. Without one, the previous
// score equals the current score.
func WithResolver(r ScoreResolver) CompilerOption {
	return func(c *Compiler) {
		c.resolver = r
	}
}

// WithWeights sets the score weight table.
func WithWeights(w score.Weights) CompilerOption {
	return func(c *Compiler) {
		c.weights = w
	}
}

// WithThresholds sets the rule thresholds.
func WithThresholds(th audit.Thresholds) CompilerOption {
	return func(c *Compiler) {
		c.thresholds = th
	}
}

// WithCompilerConcurrency sets the number of pages analysed in parallel.
func WithCompilerConcurrency(n int) CompilerOption {
	return func(c *Compiler) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithCompilerRenderTimeout bounds each render call.
func WithCompilerRenderTimeout(d time.Duration) CompilerOption {
	return func(c *Compiler) {
		c.renderTimeout = d
	}
}

// WithClock sets the time source used for scan timestamps.
func WithClock(clock func() time.Time) CompilerOption {
	return func(c *Compiler) {
		c.clock = clock
	}
}

// WithRunIDGenerator sets the function that names each run.
func WithRunIDGenerator(gen func() string) CompilerOption {
	return func(c *Compiler) {
		c.newRunID = gen
	}
}

// WithCompilerLogger sets the logger.
func WithCompilerLogger(logger *slog.Logger) CompilerOption {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// WithRecorder sets a recorder notified after each compile.
func WithRecorder(r Recorder) CompilerOption {
	return func(c *Compiler) {
		c.recorder = r
	}
}

// NewCompiler creates a Compiler with default weights and thresholds.
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{
		weights:     score.DefaultWeights(),
		thresholds:  audit.DefaultThresholds(),
		concurrency: DefaultConcurrency,
		clock:       time.Now,
		newRunID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// newPipeline builds the per-page step sequence.
func (c *Compiler) newPipeline(extractor *extract.Extractor, evaluator *audit.Evaluator) func() *Pipeline {
	return func() *Pipeline {
		p := New(WithLogger(c.logger), WithContinueOnError(true))
		p.AddSteps(
			NewRenderStep(c.renderer, c.site, c.menus,
				WithRenderTimeout(c.renderTimeout),
				WithRenderLogger(c.logger),
			),
			NewExtractStep(extractor),
			NewEvaluateStep(evaluator),
			NewScoreStep(c.weights),
		)
		return p
	}
}

// Compile analyses every page and returns the report. Per-page failures are
// recorded on the page entry; only context cancellation returns an error.
func (c *Compiler) Compile(ctx context.Context, pages []model.PageRecord) (*model.Report, error) {
	start := time.Now()
	extractor := extract.NewExtractor(extract.WithLogger(c.logger))
	evaluator := audit.NewEvaluator(c.thresholds)

	bp := NewBatchProcessor(
		c.newPipeline(extractor, evaluator),
		WithConcurrency(c.concurrency),
		WithBatchLogger(c.logger),
	)
	analyses, err := bp.ProcessBatch(ctx, pages)
	if err != nil {
		return nil, fmt.Errorf("analyse pages: %w", err)
	}

	scannedAt := c.clock()
	report := model.NewReport(c.newRunID(), scannedAt)
	identifiers := AssignIdentifiers(pages)

	report.Pages = make([]model.PageReportEntry, 0, len(analyses))
	for i, analysis := range analyses {
		entry := buildEntry(identifiers[i], analysis, scannedAt)
		entry.PreviousScore = c.previousScore(ctx, &entry)
		entry.ScoreDelta = entry.Score - entry.PreviousScore
		report.Pages = append(report.Pages, entry)
	}
	report.IndexPages()
	report.Stats = Aggregate(report.Pages, scannedAt)

	elapsed := time.Since(start)
	c.logger.Info("report compiled",
		"run_id", report.RunID,
		"pages", report.Stats.TotalPages,
		"average_score", report.Stats.AverageScore,
		"elapsed", elapsed,
	)
	if c.recorder != nil {
		c.recorder.RecordReport(report, elapsed)
	}
	return report, nil
}

// previousScore resolves the previous score, falling back to the current
// score on a missing resolver, a resolver error or a resolver panic.
func (c *Compiler) previousScore(ctx context.Context, entry *model.PageReportEntry) (prev int) {
	if c.resolver == nil {
		return entry.Score
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("score resolver panicked", "identifier", entry.Identifier, "panic", r)
			prev = entry.Score
		}
	}()

	prev, err := c.resolver.PreviousScore(ctx, entry.Identifier, entry.Score)
	if err != nil {
		c.logger.Warn("previous score unavailable",
			"identifier", entry.Identifier,
			"error", err,
		)
		return entry.Score
	}
	return prev
}

// buildEntry converts a finished analysis into its report entry.
func buildEntry(identifier string, a *model.PageAnalysis, scannedAt time.Time) model.PageReportEntry {
	page := a.Page
	details := make([]model.IssueDetail, 0, len(a.Issues))
	preview := make([]string, 0, IssuePreviewSize)
	for i, issue := range a.Issues {
		details = append(details, model.NewIssueDetail(issue))
		if i < IssuePreviewSize {
			preview = append(preview, issue.Message)
		}
	}

	return model.PageReportEntry{
		Identifier:    identifier,
		ID:            page.ID,
		Title:         page.DisplayTitle(),
		Slug:          page.Slug,
		Path:          page.Path(),
		Template:      page.TemplateName(),
		Score:         a.Score,
		PreviousScore: a.Score,
		Tier:          a.Tier,
		TierLabel:     a.Tier.Label(),
		FilterKey:     a.Tier.FilterKey(),
		BadgeClass:    a.Tier.BadgeClass(),
		Tally:         a.Tally,
		Warnings:      a.Tally.Warnings(),
		LastScanned:   scannedAt,
		UpdatedAt:     page.UpdatedAt,
		Status:        StatusText(a.Tally),
		Summary:       SummaryText(a.Score, a.Tier, a.Tally),
		IssuePreview:  preview,
		Issues:        details,
		Metrics:       a.Metrics,
		Error:         strings.Join(a.Errors, "; "),
	}
}

// Aggregate folds page entries into fleet statistics.
func Aggregate(entries []model.PageReportEntry, lastScan time.Time) model.ReportAggregate {
	agg := model.ReportAggregate{
		TotalPages: len(entries),
		LastScan:   lastScan,
	}

	sum := 0
	for _, e := range entries {
		sum += e.Score
		agg.CriticalIssueCount += e.Tally.Critical
		agg.TotalIssueCount += e.Tally.Total
		switch e.Tier {
		case model.TierOptimised:
			agg.OptimizedPageCount++
		case model.TierNeedsImprovement:
			agg.NeedsWorkCount++
		default:
			agg.CriticalPageCount++
		}
	}
	if agg.TotalPages > 0 {
		agg.AverageScore = int(math.Round(float64(sum) / float64(agg.TotalPages)))
	}

	agg.FilterCounts = model.FilterCounts{
		All:       agg.TotalPages,
		Critical:  agg.CriticalPageCount,
		NeedsWork: agg.NeedsWorkCount,
		Optimized: agg.OptimizedPageCount,
	}
	return agg
}

// StatusText returns the short status shown next to a page.
func StatusText(t model.ViolationTally) string {
	switch {
	case t.Total == 0:
		return "No issues found"
	case t.Critical > 0:
		return plural(t.Critical, "critical issue", "critical issues")
	case t.Serious > 0:
		return plural(t.Serious, "serious issue", "serious issues")
	default:
		return plural(t.Warnings(), "warning", "warnings")
	}
}

// SummaryText returns the one-line page summary.
func SummaryText(s int, tier model.OptimizationTier, t model.ViolationTally) string {
	if t.Total == 0 {
		return fmt.Sprintf("%s with a score of %d. No issues found.", tier.Label(), s)
	}

	parts := make([]string, 0, 3)
	if t.Critical > 0 {
		parts = append(parts, plural(t.Critical, "critical issue", "critical issues"))
	}
	if t.Serious > 0 {
		parts = append(parts, plural(t.Serious, "serious issue", "serious issues"))
	}
	if w := t.Warnings(); w > 0 {
		parts = append(parts, plural(w, "warning", "warnings"))
	}
	return fmt.Sprintf("%s with a score of %d. %s.", tier.Label(), s, strings.Join(parts, ", "))
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return "1 " + singular
	}
	return fmt.Sprintf("%d %s", n, pluralForm)
}
