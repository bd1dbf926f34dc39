package classifier

import (
	"context"
	"log/slog"
	"math"

	"github.com/nao1215/classifurlr/internal/content"
	"github.com/nao1215/classifurlr/internal/har"
	"github.com/nao1215/classifurlr/internal/model"
	"github.com/nao1215/classifurlr/internal/textsim"
)

// Baseline comparison thresholds.
const (
	DefaultPageLengthThreshold = 0.3019
	DefaultCosineThreshold     = 0.816
)

// PageLength compares the terminal content size with the baseline's.
// Block pages are usually much shorter or longer than the real page.
type PageLength struct {
	Threshold float64

	logger *slog.Logger
}

// NewPageLength returns a page length classifier.
func NewPageLength(opts ...Option) *PageLength {
	return &PageLength{Threshold: DefaultPageLengthThreshold, logger: newOptions(opts).logger}
}

// Descriptor implements Classifier.
func (c *PageLength) Descriptor() model.Descriptor {
	return descriptor("Page length", "Detects whether a page is a block page by page length given a baseline")
}

// PageDownConfidence implements Classifier.
func (c *PageLength) PageDownConfidence(_ context.Context, session *model.Session, page *har.Page) (float64, error) {
	base, err := baseline(session)
	if err != nil {
		return 0, err
	}
	baseLen, err := contentLength(base.ActualPage())
	if err != nil {
		return 0, err
	}
	pageLen, err := contentLength(page.ActualPage())
	if err != nil {
		return 0, err
	}

	var ratio float64
	if longest := max(baseLen, pageLen); longest > 0 {
		ratio = math.Abs(float64(baseLen-pageLen)) / float64(longest)
	}
	c.logger.Debug("page length", "page", page.ID, "baseline", baseLen, "content", pageLen,
		"ratio", math.Round(ratio*1000)/1000)
	if ratio >= c.Threshold {
		return 1.0, nil
	}
	return 0.0, nil
}

func contentLength(entry *har.Entry) (int64, error) {
	if entry == nil {
		return 0, model.NotEnoughData("No final page found")
	}
	size, ok := entry.ContentSize()
	if !ok {
		return 0, model.NotEnoughData("Could not determine response size for URL %q", entry.URL())
	}
	return size, nil
}

// CosineSimilarity compares the visible text of a page with the baseline's.
type CosineSimilarity struct {
	Threshold float64

	bodies *content.Extractor
	logger *slog.Logger
}

// NewCosineSimilarity returns a cosine similarity classifier reading bodies
// through bodies.
func NewCosineSimilarity(bodies *content.Extractor, opts ...Option) *CosineSimilarity {
	return &CosineSimilarity{
		Threshold: DefaultCosineThreshold,
		bodies:    extractorOrDefault(bodies),
		logger:    newOptions(opts).logger,
	}
}

// Descriptor implements Classifier.
func (c *CosineSimilarity) Descriptor() model.Descriptor {
	return descriptor("Cosine similarity",
		"Uses cosine similarity between a page and a baseline to determine whether a page is a block page")
}

// PageDownConfidence implements Classifier.
func (c *CosineSimilarity) PageDownConfidence(_ context.Context, session *model.Session, page *har.Page) (float64, error) {
	base, err := baseline(session)
	if err != nil {
		return 0, err
	}
	baseBody, err := c.bodies.Body(base.ActualPage())
	if err != nil {
		return 0, err
	}
	pageBody, err := c.bodies.Body(page.ActualPage())
	if err != nil {
		return 0, model.NotEnoughData("Could not locate page content for URL %q", page.URL())
	}

	similarity := textsim.CosineText(baseBody.Visible, pageBody.Visible)
	c.logger.Debug("cosine similarity", "page", page.ID, "similarity", math.Round(similarity*1000)/1000)
	if similarity <= c.Threshold {
		return 1.0, nil
	}
	return 0.0, nil
}
