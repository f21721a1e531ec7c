package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/threadscan/internal/config"
	"golang.org/x/sync/errgroup"
)

// BatchProcessor runs one pipeline per job configuration.
type BatchProcessor struct {
	// pipelineFactory creates a fresh pipeline for each job.
	pipelineFactory func() *Pipeline

	concurrency int
	logger      *slog.Logger
	onComplete  func(job *Job, index int)

	mu sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of jobs running at once.
// Default is 1.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithOnComplete registers a callback invoked after each job finishes.
// Calls are serialized.
func WithOnComplete(fn func(job *Job, index int)) BatchOption {
	return func(b *BatchProcessor) {
		b.onComplete = fn
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     1,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch runs every configuration and returns the jobs in input order.
// A failing job does not stop the others; its error is kept in Job.Err. The
// returned error is only set when the batch itself was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, configs []*config.Config) ([]*Job, error) {
	bp.logger.Info("starting batch processing",
		"total_jobs", len(configs),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	jobs := make([]*Job, len(configs))
	for i, cfg := range configs {
		jobs[i] = NewJob(cfg)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				job.fail(err)
				return err
			}

			bp.logger.Info("running job",
				"source", job.Config.Source,
				"index", i+1,
				"total", len(jobs),
			)

			if err := bp.pipelineFactory().Execute(gctx, job); err != nil {
				bp.logger.Warn("job failed",
					"source", job.Config.Source,
					"error", err,
				)
			}

			if bp.onComplete != nil {
				bp.mu.Lock()
				bp.onComplete(job, i)
				bp.mu.Unlock()
			}
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch processing complete",
		"total_jobs", len(jobs),
		"elapsed", time.Since(startTime),
	)
	if err == nil {
		err = ctx.Err()
	}
	return jobs, err
}
