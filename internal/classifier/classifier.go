package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/classifurlr/internal/content"
	"github.com/nao1215/classifurlr/internal/har"
	"github.com/nao1215/classifurlr/internal/model"
)

// Slugs of the standard classifiers.
const (
	SlugStatusCode         = "status_code"
	SlugError              = "error"
	SlugEmptyPage          = "empty_page"
	SlugThrottle           = "throttle"
	SlugPageLength         = "page_length"
	SlugCosineSimilarity   = "cosine_similarity"
	SlugDifferingDomain    = "differing_domain"
	SlugBlockPageSignature = "block_page_signature"
)

// ErrUnknownClassifier is returned by New for an unrecognized slug.
var ErrUnknownClassifier = fmt.Errorf("%w: unknown classifier", model.ErrConfiguration)

// Classifier produces a down-confidence for a single page.
type Classifier interface {
	// Descriptor names the classifier.
	Descriptor() model.Descriptor

	// PageDownConfidence returns how likely the page is down, in [0, 1].
	// An error matching model.ErrNotEnoughData means the classifier has
	// nothing to say about the page.
	PageDownConfidence(ctx context.Context, session *model.Session, page *har.Page) (float64, error)
}

// BlockedDetector is implemented by classifiers that can tell active
// blocking apart from a generic failure. It is consulted only for verdicts
// that are not up.
type BlockedDetector interface {
	IsPageBlocked(session *model.Session, page *har.Page, c *model.Classification) model.Blocked
}

// Classify runs c against page and wraps the raw score into a verdict.
// A raw score of 0.5 or more is down with confidence (raw-0.5)*2; anything
// lower is up with confidence (0.5-raw)*2.
func Classify(ctx context.Context, c Classifier, session *model.Session, page *har.Page) *model.Classification {
	b := model.NewBuilder(page, c.Descriptor())

	if err := ctx.Err(); err != nil {
		b.MarkInconclusive(err)
		return b.Build()
	}

	raw, err := c.PageDownConfidence(ctx, session, page)
	switch {
	case err != nil:
		b.MarkInconclusive(err)
	case raw >= 0.5:
		b.MarkDown((raw - 0.5) * 2.0)
	default:
		b.MarkUp((0.5 - raw) * 2.0)
	}

	if d, ok := c.(BlockedDetector); ok && b.Direction() != model.DirectionUp {
		if d.IsPageBlocked(session, page, b.Build()) == model.BlockedYes {
			b.MarkBlocked()
		}
	}
	return b.Build()
}

// IsNotEnoughData reports whether err means a signal was missing.
func IsNotEnoughData(err error) bool {
	return errors.Is(err, model.ErrNotEnoughData)
}

// options is shared by every classifier constructor.
type options struct {
	logger *slog.Logger
}

// Option configures a classifier.
type Option func(*options)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Slugs returns the slugs of the standard classifiers in default order.
func Slugs() []string {
	return []string{
		SlugStatusCode,
		SlugError,
		SlugPageLength,
		SlugThrottle,
		SlugEmptyPage,
		SlugCosineSimilarity,
		SlugDifferingDomain,
		SlugBlockPageSignature,
	}
}

// New returns the standard classifier with the given slug. Classifiers that
// read bodies use bodies.
func New(slug string, bodies *content.Extractor, opts ...Option) (Classifier, error) {
	switch slug {
	case SlugStatusCode:
		return NewStatusCode(opts...), nil
	case SlugError:
		return NewError(opts...), nil
	case SlugEmptyPage:
		return NewEmptyPage(opts...), nil
	case SlugThrottle:
		return NewThrottle(opts...), nil
	case SlugPageLength:
		return NewPageLength(opts...), nil
	case SlugCosineSimilarity:
		return NewCosineSimilarity(bodies, opts...), nil
	case SlugDifferingDomain:
		return NewDifferingDomain(opts...), nil
	case SlugBlockPageSignature:
		return NewBlockPageSignature(bodies, opts...), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownClassifier, slug)
	}
}

func descriptor(name, desc string) model.Descriptor {
	return model.Descriptor{Name: name, Description: desc, Version: model.DefaultVersion}
}

// baseline returns the session baseline or a not-enough-data error.
func baseline(session *model.Session) (*har.Page, error) {
	p, ok := session.Baseline()
	if !ok {
		return nil, model.NotEnoughData("Could not locate baseline for URL %q", session.URL())
	}
	return p, nil
}

// extractorOrDefault returns bodies, or a private extractor when it is nil.
func extractorOrDefault(bodies *content.Extractor) *content.Extractor {
	if bodies != nil {
		return bodies
	}
	x, err := content.NewExtractor(content.DefaultCacheSize)
	if err != nil {
		panic(err) // unreachable: DefaultCacheSize is positive
	}
	return x
}
