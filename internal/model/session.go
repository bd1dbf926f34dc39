package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/nao1215/classifurlr/internal/har"
	"github.com/nao1215/classifurlr/internal/urlutil"
)

// SessionData is the wire form of a capture session.
//
//	{
//	  "url": "http://example.com",
//	  "baseline": "page_0",            // or false
//	  "pageDetail": {"page_1": {"errors": [], "countryCode": "tr", "asn": 197328}},
//	  "har": {"log": {...}}
//	}
type SessionData struct {
	URL        string                `json:"url"`
	Baseline   BaselineRef           `json:"baseline"`
	PageDetail map[string]PageDetail `json:"pageDetail"`
	HAR        json.RawMessage       `json:"har,omitempty"`
}

// PageDetail is capture metadata recorded for one page.
type PageDetail struct {
	// Errors are the capture errors in the order they occurred.
	// A nil slice means no error list was recorded; an empty one means
	// the capture reported no errors.
	Errors []string `json:"errors"`

	// CountryCode is the vantage point's ISO country code.
	CountryCode *string `json:"countryCode,omitempty"`

	// ASN is the vantage point's autonomous system number.
	ASN *int `json:"asn,omitempty"`

	// Screenshot is a data URL of the rendered page. It is carried through
	// unchanged.
	Screenshot string `json:"screenshot,omitempty"`
}

// BaselineRef names the page captured from an uncensored vantage point.
// It is encoded as the page id, or false when there is no baseline.
type BaselineRef struct {
	ID  string
	Set bool
}

// Baseline returns a reference to the given page id.
func Baseline(id string) BaselineRef {
	return BaselineRef{ID: id, Set: true}
}

// MarshalJSON encodes the reference as a string or false.
func (b BaselineRef) MarshalJSON() ([]byte, error) {
	if !b.Set {
		return []byte("false"), nil
	}
	return json.Marshal(b.ID)
}

// UnmarshalJSON accepts a string, false or null.
func (b *BaselineRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", "false":
		*b = BaselineRef{}
		return nil
	}
	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("baseline must be a page id or false: %w", err)
	}
	*b = BaselineRef{ID: id, Set: true}
	return nil
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the logger used to report trace parse failures.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// Session is a read-only view over SessionData. Pages are parsed on first
// use and cached, so a Session may be shared by concurrent classifiers.
type Session struct {
	data   SessionData
	domain string
	logger *slog.Logger

	once     sync.Once
	pages    []*har.Page
	baseline *har.Page
}

// NewSession wraps data.
func NewSession(data SessionData, opts ...SessionOption) *Session {
	s := &Session{
		data:   data,
		domain: urlutil.ExtractDomain(data.URL),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubjectID identifies the session in classification output.
func (s *Session) SubjectID() string {
	return s.data.URL
}

// URL returns the targeted URL.
func (s *Session) URL() string {
	return s.data.URL
}

// Domain returns the registrable domain of the targeted URL.
func (s *Session) Domain() string {
	return s.domain
}

// Data returns the underlying session data.
func (s *Session) Data() SessionData {
	return s.data
}

// Pages returns every page in the trace. A trace that cannot be parsed is
// logged and yields no pages.
func (s *Session) Pages() []*har.Page {
	s.once.Do(s.parse)
	return s.pages
}

func (s *Session) parse() {
	if len(s.data.HAR) == 0 {
		return
	}
	pages, err := har.Parse(s.data.HAR)
	if err != nil {
		s.logger.Warn("failed to parse HAR", "url", s.data.URL, "error", err)
		return
	}
	s.pages = pages
	if id, ok := s.BaselineID(); ok {
		for _, p := range pages {
			if p.ID == id {
				s.baseline = p
				break
			}
		}
	}
}

// BaselineID returns the id of the baseline page, if one was named.
func (s *Session) BaselineID() (string, bool) {
	if !s.data.Baseline.Set {
		return "", false
	}
	return s.data.Baseline.ID, true
}

// Baseline returns the baseline page when it is named and present in the trace.
func (s *Session) Baseline() (*har.Page, bool) {
	s.once.Do(s.parse)
	return s.baseline, s.baseline != nil
}

// PageDetail returns the metadata recorded for a page.
func (s *Session) PageDetail(pageID string) (PageDetail, bool) {
	d, ok := s.data.PageDetail[pageID]
	return d, ok
}

// PageErrors returns the page's recorded errors. It reports false when the
// page has no detail record or the record has no error list.
func (s *Session) PageErrors(pageID string) ([]string, bool) {
	d, ok := s.data.PageDetail[pageID]
	if !ok || d.Errors == nil {
		return nil, false
	}
	return d.Errors, true
}

// PageCountryCode returns the upper-cased country code of the page's vantage point.
func (s *Session) PageCountryCode(pageID string) (string, bool) {
	d, ok := s.data.PageDetail[pageID]
	if !ok || d.CountryCode == nil {
		return "", false
	}
	return strings.ToUpper(*d.CountryCode), true
}

// PageASN returns the autonomous system number of the page's vantage point.
func (s *Session) PageASN(pageID string) (int, bool) {
	d, ok := s.data.PageDetail[pageID]
	if !ok || d.ASN == nil {
		return 0, false
	}
	return *d.ASN, true
}
