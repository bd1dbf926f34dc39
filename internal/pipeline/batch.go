package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/classifurlr/internal/model"
)

// DefaultConcurrency is the number of sessions classified at once by default.
const DefaultConcurrency = 4

// BatchProcessor classifies many sessions concurrently.
type BatchProcessor struct {
	pipeline    *Pipeline
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the logger for batch-level messages.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets how many sessions are classified at once.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor returns a processor classifying with p.
func NewBatchProcessor(p *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipeline:    p,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch classifies sessions and returns their verdicts in input
// order. Sessions not started before ctx is canceled have a nil verdict and
// the context error is returned.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, sessions []model.SessionData) ([]*model.Classification, error) {
	results := make([]*model.Classification, len(sessions))
	err := bp.ProcessBatchWithCallback(ctx, sessions, func(c *model.Classification, i int) {
		// Each index is written by exactly one goroutine.
		results[i] = c
	})
	return results, err
}

// ProcessBatchWithCallback classifies sessions and calls callback with each
// verdict and its input index as soon as it is ready. callback is called
// from several goroutines.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	sessions []model.SessionData,
	callback func(c *model.Classification, index int),
) error {
	bp.logger.Info("starting batch classification",
		"total_sessions", len(sessions),
		"concurrency", bp.concurrency,
	)
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, data := range sessions {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Debug("classifying session", "url", data.URL, "index", i+1, "total", len(sessions))
			callback(bp.pipeline.Classify(ctx, data), i)
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch classification complete",
		"total_sessions", len(sessions),
		"elapsed", time.Since(start),
	)
	return err
}
