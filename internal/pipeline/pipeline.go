package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/classifurlr/internal/classifier"
	"github.com/nao1215/classifurlr/internal/filter"
	"github.com/nao1215/classifurlr/internal/har"
	"github.com/nao1215/classifurlr/internal/model"
)

// Name is the name reported by page and session verdicts.
const Name = "Classification Pipeline"

// Descriptor describes the pipeline itself, the producer of page and
// session verdicts.
func Descriptor() model.Descriptor {
	return model.Descriptor{
		Name:        Name,
		Description: "Classifies by passing data through multiple classifiers and weighing their results",
		Version:     model.DefaultVersion,
	}
}

// Pipeline classifies sessions with a fixed battery of filters,
// classifiers and post-processors. It is safe for concurrent use.
type Pipeline struct {
	filters        []filter.Filter
	classifiers    []classifier.Classifier
	weights        map[string]float64
	postProcessors []PostProcessor
	rollup         Rollup

	parallel bool
	workers  int
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithRollup sets the session rollup parameters.
func WithRollup(r Rollup) Option {
	return func(p *Pipeline) {
		p.rollup = r
	}
}

// WithParallel classifies pages concurrently with at most workers
// goroutines.
func WithParallel(workers int) Option {
	return func(p *Pipeline) {
		p.parallel = true
		p.workers = workers
	}
}

// WithPostProcessors replaces the post-processors. By default only
// BlockedFinder runs.
func WithPostProcessors(pps ...PostProcessor) Option {
	return func(p *Pipeline) {
		p.postProcessors = pps
	}
}

// New builds a pipeline. Filters and classifiers run in the given order.
// It returns an error matching model.ErrConfiguration when the weights,
// rollup parameters or worker count are invalid.
func New(filters []filter.Filter, classifiers []WeightedClassifier, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		filters:        filters,
		postProcessors: []PostProcessor{BlockedFinder{}},
		rollup:         DefaultRollup(),
		workers:        runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}

	weights, err := normalizeClassifiers(classifiers)
	if err != nil {
		return nil, err
	}
	if err := p.rollup.Validate(); err != nil {
		return nil, fmt.Errorf("%w: down bias %v, look back %v days", err, p.rollup.DownBias, p.rollup.LookBackDays)
	}
	if p.workers <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkers, p.workers)
	}

	p.weights = weights
	p.classifiers = make([]classifier.Classifier, len(classifiers))
	for i, wc := range classifiers {
		p.classifiers[i] = wc.Classifier
	}
	return p, nil
}

// Weights returns the normalized weight of each classifier by slug.
func (p *Pipeline) Weights() map[string]float64 {
	out := make(map[string]float64, len(p.weights))
	for k, v := range p.weights {
		out[k] = v
	}
	return out
}

// ClassifierSlugs returns the classifier slugs in execution order.
func (p *Pipeline) ClassifierSlugs() []string {
	slugs := make([]string, len(p.classifiers))
	for i, c := range p.classifiers {
		slugs[i] = c.Descriptor().Slug()
	}
	return slugs
}

// Classify classifies a session. It never fails: missing or broken data
// leads to inconclusive verdicts.
func (p *Pipeline) Classify(ctx context.Context, data model.SessionData) *model.Classification {
	return p.ClassifySession(ctx, model.NewSession(data, model.WithSessionLogger(p.logger)))
}

// ClassifySession classifies an already wrapped session.
func (p *Pipeline) ClassifySession(ctx context.Context, session *model.Session) *model.Classification {
	start := time.Now()

	pages := session.Pages()
	p.logger.Debug("begin filtering", "url", session.URL(), "pages", len(pages))
	kept, discarded := filter.NewChain(p.filters, filter.WithChainLogger(p.logger)).Apply(session, pages)
	p.logger.Debug("finished filtering", "url", session.URL(), "kept", len(kept), "discarded", len(discarded))

	var sc *model.Classification
	if len(kept) == 0 {
		b := model.NewBuilder(session, Descriptor())
		b.MarkInconclusiveWithConfidence(1.0, model.NotEnoughData("No pages left to classify"))
		sc = b.Build()
	} else {
		var pcs []*model.Classification
		if p.parallel {
			pcs = p.classifyParallel(ctx, session, kept)
		} else {
			pcs = p.classifySequential(ctx, session, kept)
		}
		sc = RollupSession(session, pcs, p.rollup)
	}

	for _, pp := range p.postProcessors {
		sc = pp.Process(sc)
	}

	p.logger.Info("session classified",
		"url", session.URL(),
		"status", sc.Direction(),
		"blocked", sc.Blocked().String(),
		"confidence", sc.ConfidenceOrZero(),
		"elapsed", time.Since(start),
	)
	return sc
}

// ClassifyPage runs every classifier against page and rolls the results up.
func (p *Pipeline) ClassifyPage(ctx context.Context, session *model.Session, page *har.Page) *model.Classification {
	constituents := make([]*model.Classification, len(p.classifiers))
	for i, c := range p.classifiers {
		constituents[i] = classifier.Classify(ctx, c, session, page)
	}
	return RollupPage(page, constituents, p.weights)
}

func (p *Pipeline) classifySequential(ctx context.Context, session *model.Session, pages []*har.Page) []*model.Classification {
	out := make([]*model.Classification, 0, len(pages))
	for _, page := range pages {
		out = append(out, p.ClassifyPage(ctx, session, page))
	}
	return out
}

// classifyParallel collects page verdicts in completion order.
func (p *Pipeline) classifyParallel(ctx context.Context, session *model.Session, pages []*har.Page) []*model.Classification {
	var (
		mu  sync.Mutex
		out = make([]*model.Classification, 0, len(pages))
	)

	var g errgroup.Group
	g.SetLimit(p.workers)
	for _, page := range pages {
		g.Go(func() error {
			pc := p.ClassifyPage(ctx, session, page)
			mu.Lock()
			out = append(out, pc)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // tasks never return an error
	return out
}
