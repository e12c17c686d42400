package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/hashstatic/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of documents processed at once when
// WithConcurrency is not given.
const DefaultConcurrency = 4

// BatchProcessor handles concurrent processing of multiple documents.
// It uses errgroup to manage goroutines and respect concurrency limits.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each document.
	// Pipelines built by one factory normally share a Fingerprinter.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent runs.
	concurrency int

	// base overrides the base directory of every run when set.
	base string

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

// WithConcurrency sets the maximum number of concurrent runs.
// Values below one are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithBatchBase resolves the references of every document against dir
// instead of each document's own directory.
func WithBatchBase(dir string) BatchOption {
	return func(b *BatchProcessor) {
		b.base = dir
	}
}

// NewBatchProcessor creates a new BatchProcessor.
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

// ProcessBatch runs every document through its own pipeline.
//
// Runs are returned in the order of documents, including failed ones; a
// failure is recorded on its run and does not stop the others. The error
// is non-nil only when the context was cancelled, in which case runs that
// never started are nil.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, documents []string) ([]*model.Run, error) {
	bp.logger.Debug("starting batch processing",
		"total_documents", len(documents),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Each goroutine owns one slot, so no lock is needed.
	runs := make([]*model.Run, len(documents))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, document := range documents {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Debug("processing document",
				"document", document,
				"index", i+1,
				"total", len(documents),
			)

			run := model.NewRun(document, bp.base)
			err := bp.pipelineFactory().Execute(ctx, run)
			runs[i] = run

			if err != nil {
				// Recorded on the run; the other documents continue.
				bp.logger.Warn("document failed",
					"document", document,
					"error", err,
				)
				return nil
			}

			bp.logger.Debug("document completed",
				"document", document,
				"renamed", len(run.Renamed()),
			)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Debug("batch processing complete",
		"total_documents", len(documents),
		"elapsed", time.Since(startTime),
	)

	return runs, err
}
