package classifier

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/nao1215/classifurlr/internal/har"
	"github.com/nao1215/classifurlr/internal/model"
)

// Capture errors that identify specific national filtering systems.
const (
	errOperationCanceled = "Operation canceled"
	errConnectionClosed  = "Connection closed"
	errConnectionReset   = "(56, 'Recv failure: Connection reset by peer')"
	errEmptyReply        = "(52, 'Empty reply from server')"
)

// Error says every page whose capture recorded an error is down.
//
// Some networks block by breaking the connection in a recognizable way.
// Those cases are identified by country, ASN and error text, and reported
// as blocked.
type Error struct {
	logger *slog.Logger
}

// NewError returns an error classifier.
func NewError(opts ...Option) *Error {
	return &Error{logger: newOptions(opts).logger}
}

// Descriptor implements Classifier.
func (c *Error) Descriptor() model.Descriptor {
	return descriptor("Error", "Classifies all session that contain errors as down")
}

// PageDownConfidence implements Classifier. A page with an empty error list
// is up.
func (c *Error) PageDownConfidence(_ context.Context, session *model.Session, page *har.Page) (float64, error) {
	errs, ok := session.PageErrors(page.ID)
	if !ok {
		return 0, model.NotEnoughData("No errors for page %q", page.ID)
	}
	c.logger.Debug("errors", "page", page.ID, "errors", errs)
	if len(errs) > 0 {
		return 1.0, nil
	}
	return 0.0, nil
}

// IsPageBlocked implements BlockedDetector.
func (c *Error) IsPageBlocked(session *model.Session, page *har.Page, cl *model.Classification) model.Blocked {
	if cl.IsUp() {
		return model.BlockedNo
	}
	country, _ := session.PageCountryCode(page.ID)
	asn, hasASN := session.PageASN(page.ID)

	var blocked bool
	switch country {
	case "CN", "KZ":
		blocked = everyFirstErrorContains(session, errOperationCanceled)
	case "LB":
		blocked = everyFirstErrorContains(session, errConnectionClosed)
	case "TR":
		blocked = hasASN && asn == 197328 && countFirstErrors(session, errConnectionReset) > 1
	case "IR":
		blocked = hasASN && asn == 48434 && countFirstErrors(session, errConnectionReset) > 0
	case "ID":
		blocked = hasASN && slices.Contains([]int{55699, 23700}, asn) && countFirstErrors(session, errEmptyReply) > 0
	}
	if blocked {
		c.logger.Debug("error signature of national filter", "page", page.ID, "country", country, "asn", asn)
		return model.BlockedYes
	}
	return model.BlockedUnknown
}

// everyFirstErrorContains reports whether the session has more than one page,
// every page recorded at least one error, and every first error contains s.
func everyFirstErrorContains(session *model.Session, s string) bool {
	pages := session.Pages()
	if len(pages) <= 1 {
		return false
	}
	for _, p := range pages {
		errs, ok := session.PageErrors(p.ID)
		if !ok || len(errs) == 0 || !strings.Contains(errs[0], s) {
			return false
		}
	}
	return true
}

// countFirstErrors counts the pages whose first recorded error is exactly s.
func countFirstErrors(session *model.Session, s string) int {
	n := 0
	for _, p := range session.Pages() {
		if errs, ok := session.PageErrors(p.ID); ok && len(errs) > 0 && errs[0] == s {
			n++
		}
	}
	return n
}
