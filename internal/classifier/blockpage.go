package classifier

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/classifurlr/internal/content"
	"github.com/nao1215/classifurlr/internal/har"
	"github.com/nao1215/classifurlr/internal/model"
	"github.com/nao1215/classifurlr/internal/urlutil"
)

// BlockPageSignature looks for fingerprints of known national block pages.
//
// A match only counts when the entry showing it belongs to the requested
// domain or to the domain the page landed on. Third-party embeds, such as a
// map widget that is itself blocked, would otherwise make an unrelated page
// look blocked.
type BlockPageSignature struct {
	bodies *content.Extractor
	logger *slog.Logger
}

// NewBlockPageSignature returns a block page signature classifier reading
// bodies through bodies.
func NewBlockPageSignature(bodies *content.Extractor, opts ...Option) *BlockPageSignature {
	return &BlockPageSignature{bodies: extractorOrDefault(bodies), logger: newOptions(opts).logger}
}

// Descriptor implements Classifier.
func (c *BlockPageSignature) Descriptor() model.Descriptor {
	return descriptor("Block page signature",
		"Uses text patterns found in pre-identified block pages to detect blocking")
}

// match describes a fingerprint hit.
type match struct {
	check   string
	country string
	entry   *har.Entry
	value   string
}

// PageDownConfidence implements Classifier. Checks run in order: iframe
// sources, redirect targets, body text, other headers, and, only when no
// entry has a readable body, the request URLs themselves. The first match
// with acceptable provenance scores 1.
func (c *BlockPageSignature) PageDownConfidence(_ context.Context, session *model.Session, page *har.Page) (float64, error) {
	if len(page.Entries) == 0 {
		return 0, model.NotEnoughData("No entries for page %q", page.ID)
	}
	requested := session.Domain()
	final := urlutil.ExtractDomain(page.ActualPage().URL())

	checks := []func(*har.Page) []match{
		c.iframeMatches,
		locationMatches,
		c.bodyMatches,
		headerMatches,
		c.requestURLMatches,
	}
	for _, check := range checks {
		for _, m := range check(page) {
			domain := urlutil.ExtractDomain(m.entry.URL())
			if domain == "" || (domain != requested && domain != final) {
				c.logger.Warn("block page fingerprint on a different domain",
					"check", m.check, "page", page.ID, "requested", requested,
					"final", final, "blocked", domain, "value", m.value)
				continue
			}
			c.logger.Debug("block page fingerprint", "check", m.check, "page", page.ID,
				"country", m.country, "value", m.value)
			return 1.0, nil
		}
	}
	return 0.0, nil
}

// IsPageBlocked implements BlockedDetector. A block page is always blocking.
func (c *BlockPageSignature) IsPageBlocked(_ *model.Session, _ *har.Page, cl *model.Classification) model.Blocked {
	if cl.IsDown() {
		return model.BlockedYes
	}
	return model.BlockedUnknown
}

func (c *BlockPageSignature) iframeMatches(page *har.Page) []match {
	var out []match
	for _, e := range page.Entries {
		body, err := c.bodies.Body(e)
		if err != nil {
			continue
		}
		body.Document().Find("iframe[src]").Each(func(_ int, s *goquery.Selection) {
			src := strings.TrimSpace(s.AttrOr("src", ""))
			for _, fp := range iframeFingerprints {
				if fp.Pattern.MatchString(src) {
					out = append(out, match{check: "iframe", country: fp.Country, entry: e, value: src})
				}
			}
		})
	}
	return out
}

func locationMatches(page *har.Page) []match {
	var out []match
	for _, e := range page.Entries {
		for _, target := range redirectTargets(e) {
			for _, fp := range locationFingerprints {
				if fp.Pattern.MatchString(target) {
					out = append(out, match{check: "location", country: fp.Country, entry: e, value: target})
				}
			}
		}
	}
	return out
}

// redirectTargets returns the Location headers and recorded redirect URL of e.
func redirectTargets(e *har.Entry) []string {
	var targets []string
	for _, h := range e.ResponseHeaders() {
		if strings.EqualFold(h.Name, "Location") {
			targets = append(targets, h.Value)
		}
	}
	if e.Response != nil && e.Response.RedirectURL != "" {
		targets = append(targets, e.Response.RedirectURL)
	}
	return targets
}

func (c *BlockPageSignature) bodyMatches(page *har.Page) []match {
	var out []match
	for _, e := range page.Entries {
		body, err := c.bodies.Body(e)
		if err != nil {
			continue
		}
		for _, fp := range bodyFingerprints {
			if loc := fp.Pattern.FindStringIndex(body.Markup); loc != nil {
				out = append(out, match{check: "body", country: fp.Country, entry: e, value: body.Markup[loc[0]:loc[1]]})
			}
		}
	}
	return out
}

func headerMatches(page *har.Page) []match {
	var out []match
	for _, e := range page.Entries {
		for _, h := range e.ResponseHeaders() {
			for _, fp := range headerFingerprints {
				if strings.EqualFold(h.Name, fp.Header) && fp.Pattern.MatchString(h.Value) {
					out = append(out, match{check: "header", country: fp.Country, entry: e, value: h.Name + ": " + h.Value})
				}
			}
		}
	}
	return out
}

// requestURLMatches is a last resort for pages where no body was captured.
func (c *BlockPageSignature) requestURLMatches(page *har.Page) []match {
	for _, e := range page.Entries {
		if c.bodies.HasBody(e) {
			return nil
		}
	}
	var out []match
	for _, e := range page.Entries {
		for _, fp := range locationFingerprints {
			if fp.Pattern.MatchString(e.URL()) {
				out = append(out, match{check: "request_url", country: fp.Country, entry: e, value: e.URL()})
			}
		}
	}
	return out
}
