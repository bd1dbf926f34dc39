package filter

import (
	"log/slog"

	"github.com/nao1215/classifurlr/internal/har"
	"github.com/nao1215/classifurlr/internal/model"
)

// Filter decides whether a page is left out of classification.
type Filter interface {
	// Descriptor names the filter.
	Descriptor() model.Descriptor

	// IsFilteredOut reports whether page should be discarded.
	IsFilteredOut(session *model.Session, page *har.Page) bool
}

// Discarded records a page removed by a filter.
type Discarded struct {
	Page   *har.Page
	Filter string
}

// Chain applies filters in order.
type Chain struct {
	filters []Filter
	logger  *slog.Logger
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithChainLogger sets the logger used to report discarded pages.
func WithChainLogger(logger *slog.Logger) ChainOption {
	return func(c *Chain) {
		c.logger = logger
	}
}

// NewChain returns a chain running filters in the given order.
func NewChain(filters []Filter, opts ...ChainOption) *Chain {
	c := &Chain{filters: filters, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Filters returns the filters in order.
func (c *Chain) Filters() []Filter {
	return c.filters
}

// Apply splits pages into those every filter kept and those some filter
// discarded. The relative order of kept pages is preserved.
func (c *Chain) Apply(session *model.Session, pages []*har.Page) ([]*har.Page, []Discarded) {
	kept := pages
	var discarded []Discarded
	for _, f := range c.filters {
		slug := f.Descriptor().Slug()
		next := make([]*har.Page, 0, len(kept))
		for _, p := range kept {
			if f.IsFilteredOut(session, p) {
				c.logger.Debug("page filtered out", "filter", slug, "page", p.ID)
				discarded = append(discarded, Discarded{Page: p, Filter: slug})
				continue
			}
			next = append(next, p)
		}
		kept = next
	}
	return kept, discarded
}

// Apply runs filters over pages with the default logger.
func Apply(filters []Filter, session *model.Session, pages []*har.Page) ([]*har.Page, []Discarded) {
	return NewChain(filters).Apply(session, pages)
}
