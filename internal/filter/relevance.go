package filter

import (
	"log/slog"
	"strings"

	"github.com/nao1215/classifurlr/internal/har"
	"github.com/nao1215/classifurlr/internal/model"
)

// RelevanceName is the name of the relevance filter.
const RelevanceName = "Relevance"

// Relevance drops the baseline page, which is a reference rendering rather
// than a measurement. Pages that started somewhere other than the session
// URL are logged but kept.
type Relevance struct {
	logger *slog.Logger
}

// NewRelevance returns a relevance filter.
func NewRelevance(logger *slog.Logger) *Relevance {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relevance{logger: logger}
}

// Descriptor implements Filter.
func (f *Relevance) Descriptor() model.Descriptor {
	return model.Descriptor{
		Name:        RelevanceName,
		Description: "Filters out pages that are not relevant to the given URL",
		Version:     model.DefaultVersion,
	}
}

// IsFilteredOut implements Filter.
func (f *Relevance) IsFilteredOut(session *model.Session, page *har.Page) bool {
	if id, ok := session.BaselineID(); ok && id == page.ID {
		f.logger.Debug("filtering out baseline", "page", page.ID)
		return true
	}
	if !strings.HasPrefix(page.URL(), session.URL()) {
		f.logger.Info("possibly irrelevant page", "session_url", session.URL(), "page_url", page.URL())
	}
	return false
}
