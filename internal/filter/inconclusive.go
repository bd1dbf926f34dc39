package filter

import (
	"log/slog"
	"strings"

	"github.com/nao1215/classifurlr/internal/content"
	"github.com/nao1215/classifurlr/internal/har"
	"github.com/nao1215/classifurlr/internal/model"
)

// InconclusiveName is the name of the inconclusive filter.
const InconclusiveName = "Inconclusive"

// timeoutPrefixes are capture errors caused by the measurement VPN rather
// than the network under test.
var timeoutPrefixes = []string{
	"(28, 'Resolving timed out",
	"(28, 'Operation timed out",
	"(28, 'Connection timed out",
	"(7, 'Failed to connect",
}

// challengeServers are Server header values sent by CDNs with a 403 captcha.
var challengeServers = []string{"cloudflare-nginx", "AkamaiGHost"}

// seizureNotices are body texts of domain seizure pages.
var seizureNotices = []string{
	"This domain name has been seized by ICE - Homeland Security Investigations", // US
}

// Inconclusive drops pages whose outcome says nothing about censorship:
// CDN captcha interstitials, capture timeouts and seized domains.
type Inconclusive struct {
	bodies *content.Extractor
	logger *slog.Logger
}

// NewInconclusive returns an inconclusive filter reading bodies through bodies.
func NewInconclusive(bodies *content.Extractor, logger *slog.Logger) *Inconclusive {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inconclusive{bodies: bodies, logger: logger}
}

// Descriptor implements Filter.
func (f *Inconclusive) Descriptor() model.Descriptor {
	return model.Descriptor{
		Name:        InconclusiveName,
		Description: "Filters out pages that look inconclusive (CDN captchas, VPN timeouts, etc.)",
		Version:     model.DefaultVersion,
	}
}

// IsFilteredOut implements Filter.
func (f *Inconclusive) IsFilteredOut(session *model.Session, page *har.Page) bool {
	return f.isCaptchaChallenge(page) ||
		isVPNTimeout(session, page) ||
		f.isSeizedDomain(page)
}

func (f *Inconclusive) isCaptchaChallenge(page *har.Page) bool {
	entry := page.ActualPage()
	status, ok := entry.Status()
	if !ok || status != 403 {
		return false
	}
	for _, h := range entry.ResponseHeaders() {
		switch strings.ToLower(h.Name) {
		case "set-cookie":
			// Incapsula
			if strings.HasPrefix(strings.ToLower(h.Value), "incap_ses_") {
				f.logger.Debug("captcha challenge", "page", page.ID, "set-cookie", h.Value)
				return true
			}
		case "server":
			for _, s := range challengeServers {
				if h.Value == s {
					f.logger.Debug("captcha challenge", "page", page.ID, "server", h.Value)
					return true
				}
			}
		}
	}
	return false
}

func isVPNTimeout(session *model.Session, page *har.Page) bool {
	errs, ok := session.PageErrors(page.ID)
	if !ok {
		return false
	}
	for _, e := range errs {
		for _, prefix := range timeoutPrefixes {
			if strings.HasPrefix(e, prefix) {
				return true
			}
		}
	}
	return false
}

func (f *Inconclusive) isSeizedDomain(page *har.Page) bool {
	if f.bodies == nil {
		return false
	}
	body, err := f.bodies.Body(page.ActualPage())
	if err != nil {
		return false
	}
	for _, notice := range seizureNotices {
		if strings.Contains(body.Markup, notice) {
			f.logger.Debug("seized domain notice", "page", page.ID, "pattern", notice)
			return true
		}
	}
	return false
}
