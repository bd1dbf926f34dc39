package classifier

import (
	"context"
	"log/slog"
	"math"
	"slices"

	"github.com/nao1215/classifurlr/internal/har"
	"github.com/nao1215/classifurlr/internal/model"
	"github.com/nao1215/classifurlr/internal/urlutil"
)

// blockPageURLs are terminal URLs that are themselves block pages.
var blockPageURLs = []string{
	"http://blocked.zajil.com/", // KW
}

// DifferingDomain compares the registrable domain first requested with the
// one the page finally landed on. Censors often redirect to a block page
// hosted elsewhere.
type DifferingDomain struct {
	logger *slog.Logger
}

// NewDifferingDomain returns a differing domain classifier.
func NewDifferingDomain(opts ...Option) *DifferingDomain {
	return &DifferingDomain{logger: newOptions(opts).logger}
}

// Descriptor implements Classifier.
func (c *DifferingDomain) Descriptor() model.Descriptor {
	return descriptor("Differing domain",
		"Detects whether the requested domain and the final domain are significantly different")
}

// PageDownConfidence implements Classifier. The raw score is one minus the
// Dice coefficient of the two domains.
func (c *DifferingDomain) PageDownConfidence(_ context.Context, _ *model.Session, page *har.Page) (float64, error) {
	if len(page.Entries) == 0 {
		return 0, model.NotEnoughData("No entries for page %q", page.ID)
	}
	actual := page.ActualPage()
	if actual == nil {
		return 0, model.NotEnoughData("No final page found")
	}
	requested := urlutil.ExtractDomain(page.Entries[0].URL())
	final := urlutil.ExtractDomain(actual.URL())

	ratio := 1.0 - urlutil.DiceCoefficient(requested, final)
	if ratio > 0 {
		c.logger.Debug("differing domain", "page", page.ID, "requested", requested, "final", final,
			"diff", math.Round(ratio*1e6)/1e6)
	}
	return ratio, nil
}

// IsPageBlocked implements BlockedDetector.
func (c *DifferingDomain) IsPageBlocked(_ *model.Session, page *har.Page, _ *model.Classification) model.Blocked {
	if actual := page.ActualPage(); actual != nil && slices.Contains(blockPageURLs, actual.URL()) {
		return model.BlockedYes
	}
	return model.BlockedUnknown
}
