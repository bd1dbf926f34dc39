package classifier

import (
	"context"
	"log/slog"

	"github.com/nao1215/classifurlr/internal/har"
	"github.com/nao1215/classifurlr/internal/model"
)

// StatusCode says every non-2xx terminal status is down.
type StatusCode struct {
	logger *slog.Logger
}

// NewStatusCode returns a status code classifier.
func NewStatusCode(opts ...Option) *StatusCode {
	return &StatusCode{logger: newOptions(opts).logger}
}

// Descriptor implements Classifier.
func (c *StatusCode) Descriptor() model.Descriptor {
	return descriptor("Status code", "A simple classifier that says all non-2xx status codes are down")
}

// PageDownConfidence implements Classifier.
func (c *StatusCode) PageDownConfidence(_ context.Context, _ *model.Session, page *har.Page) (float64, error) {
	entry := page.ActualPage()
	if entry == nil {
		return 0, model.NotEnoughData("No final page found")
	}
	status, ok := entry.Status()
	if !ok {
		return 0, model.NotEnoughData(`"response" or "status" not found in entry for URL %q`, entry.URL())
	}
	c.logger.Debug("status code", "page", page.ID, "status", status)
	if status < 200 || status > 299 {
		return 1.0, nil
	}
	return 0.0, nil
}

// EmptyPage says pages with very little content are down.
type EmptyPage struct {
	// Cutoff is the largest total size, in bytes, considered empty.
	Cutoff int64
}

// DefaultEmptyPageCutoff is the default EmptyPage cutoff in bytes.
const DefaultEmptyPageCutoff = 300

// NewEmptyPage returns an empty page classifier.
func NewEmptyPage(_ ...Option) *EmptyPage {
	return &EmptyPage{Cutoff: DefaultEmptyPageCutoff}
}

// Descriptor implements Classifier.
func (c *EmptyPage) Descriptor() model.Descriptor {
	return descriptor("Empty page", "A classifier that says pages with very little content are down")
}

// PageDownConfidence implements Classifier.
func (c *EmptyPage) PageDownConfidence(_ context.Context, _ *model.Session, page *har.Page) (float64, error) {
	if page.TotalSize() <= c.Cutoff {
		return 1.0, nil
	}
	return 0.0, nil
}
