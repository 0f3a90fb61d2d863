package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/pagescore/internal/model"
)

// DefaultConcurrency is the number of pages analysed at the same time.
const DefaultConcurrency = 8

// BatchProcessor analyses many pages concurrently.
// Results keep the input order regardless of completion order.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each page.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of pages in flight.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent pages.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor. pipelineFactory is called
// once per page so that pipeline state never leaks between pages.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch analyses pages concurrently and returns one analysis per page,
// in input order. A page whose pipeline fails still has its analysis in the
// result with the failure recorded on it. The error is non-nil only when the
// context was cancelled; pages not started by then have nil entries.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, pages []model.PageRecord) ([]*model.PageAnalysis, error) {
	results := make([]*model.PageAnalysis, len(pages))
	var mu sync.Mutex

	err := bp.ProcessBatchWithCallback(ctx, pages, func(analysis *model.PageAnalysis) {
		mu.Lock()
		results[analysis.Index] = analysis
		mu.Unlock()
	})
	return results, err
}

// ProcessBatchWithCallback analyses pages and calls callback for each
// completed page. The callback runs on the worker goroutine, so it must be
// safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	pages []model.PageRecord,
	callback func(analysis *model.PageAnalysis),
) error {
	bp.logger.Debug("starting batch processing",
		"total_pages", len(pages),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, page := range pages {
		i, page := i, page
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			analysis := model.NewPageAnalysis(i, page)
			p := bp.pipelineFactory()
			if err := p.Execute(gctx, analysis); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				bp.logger.Warn("page analysis failed",
					"slug", page.Slug,
					"index", i,
					"error", err,
				)
			}

			callback(analysis)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		// Pages skipped by the loop never reach the group.
		err = ctx.Err()
	}

	bp.logger.Debug("batch processing complete",
		"total_pages", len(pages),
		"elapsed", time.Since(startTime),
	)

	return err
}
