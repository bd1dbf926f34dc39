package config

import (
	"fmt"
	"log/slog"

	"github.com/nao1215/classifurlr/internal/classifier"
	"github.com/nao1215/classifurlr/internal/content"
	"github.com/nao1215/classifurlr/internal/filter"
	"github.com/nao1215/classifurlr/internal/pipeline"
)

// NewExtractor builds the shared body extractor.
func (c *Config) NewExtractor(logger *slog.Logger) (*content.Extractor, error) {
	bodies, err := content.NewExtractor(c.CacheSize, content.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCacheSize, err)
	}
	return bodies, nil
}

// BuildFilters instantiates the filter chain in configured order.
func (c *Config) BuildFilters(bodies *content.Extractor, logger *slog.Logger) ([]filter.Filter, error) {
	filters := make([]filter.Filter, 0, len(c.Filters))
	for _, name := range c.Filters {
		switch normalizeName(name) {
		case FilterRelevance:
			filters = append(filters, filter.NewRelevance(logger))
		case FilterInconclusive:
			filters = append(filters, filter.NewInconclusive(bodies, logger))
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, name)
		}
	}
	return filters, nil
}

// BuildClassifiers instantiates every weighted classifier, in the
// default battery order.
func (c *Config) BuildClassifiers(bodies *content.Extractor, logger *slog.Logger) ([]pipeline.WeightedClassifier, error) {
	out := make([]pipeline.WeightedClassifier, 0, len(c.Weights))
	for _, slug := range classifier.Slugs() {
		w, ok := c.Weights[slug]
		if !ok {
			continue
		}
		cl, err := classifier.New(slug, bodies, classifier.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		out = append(out, pipeline.WeightedClassifier{Classifier: cl, Weight: w})
	}
	return out, nil
}

// NewPipeline validates the configuration and assembles the
// classification pipeline it describes.
func (c *Config) NewPipeline(logger *slog.Logger) (*pipeline.Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	bodies, err := c.NewExtractor(logger)
	if err != nil {
		return nil, err
	}
	filters, err := c.BuildFilters(bodies, logger)
	if err != nil {
		return nil, err
	}
	classifiers, err := c.BuildClassifiers(bodies, logger)
	if err != nil {
		return nil, err
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithRollup(c.Rollup()),
	}
	if c.Parallel {
		opts = append(opts, pipeline.WithParallel(c.Workers))
	}
	return pipeline.New(filters, classifiers, opts...)
}

// NewBatchProcessor assembles the pipeline and wraps it for
// classifying several sessions at once.
func (c *Config) NewBatchProcessor(logger *slog.Logger) (*pipeline.BatchProcessor, error) {
	p, err := c.NewPipeline(logger)
	if err != nil {
		return nil, err
	}
	return pipeline.NewBatchProcessor(p,
		pipeline.WithBatchLogger(logger),
		pipeline.WithConcurrency(c.BatchSize),
	), nil
}
