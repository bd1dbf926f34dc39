package har

import (
	"strings"
	"time"
)

// Header is a single HTTP header as recorded in the archive.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Request is the request half of an entry.
type Request struct {
	Method  string   `json:"method"`
	URL     string   `json:"url"`
	Headers []Header `json:"headers"`
}

// Content describes a response body.
// Size and Text are pointers because an absent value carries meaning:
// classifiers report "not enough data" rather than treating it as zero.
type Content struct {
	Size     *int64  `json:"size"`
	MimeType string  `json:"mimeType"`
	Text     *string `json:"text"`
	Encoding string  `json:"encoding"`
}

// Response is the response half of an entry.
type Response struct {
	Status      *int     `json:"status"`
	StatusText  string   `json:"statusText"`
	Headers     []Header `json:"headers"`
	Content     *Content `json:"content"`
	RedirectURL string   `json:"redirectURL"`
	BodySize    int64    `json:"bodySize"`
}

// Entry is one HTTP exchange.
type Entry struct {
	PageRef         string    `json:"pageref"`
	StartedDateTime string    `json:"startedDateTime"`
	Time            float64   `json:"time"`
	Request         Request   `json:"request"`
	Response        *Response `json:"response"`
}

// URL returns the request URL.
func (e *Entry) URL() string {
	if e == nil {
		return ""
	}
	return e.Request.URL
}

// Status returns the response status and whether one was recorded.
func (e *Entry) Status() (int, bool) {
	if e == nil || e.Response == nil || e.Response.Status == nil {
		return 0, false
	}
	return *e.Response.Status, true
}

// IsRedirect reports whether the response status is 3xx.
func (e *Entry) IsRedirect() bool {
	status, ok := e.Status()
	return ok && status >= 300 && status <= 399
}

// ResponseHeaders returns the recorded response headers, or nil.
func (e *Entry) ResponseHeaders() []Header {
	if e == nil || e.Response == nil {
		return nil
	}
	return e.Response.Headers
}

// ResponseHeader returns the first response header value whose name matches
// name case-insensitively.
func (e *Entry) ResponseHeader(name string) (string, bool) {
	for _, h := range e.ResponseHeaders() {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// ContentSize returns the response content size and whether it was recorded.
func (e *Entry) ContentSize() (int64, bool) {
	if e == nil || e.Response == nil || e.Response.Content == nil || e.Response.Content.Size == nil {
		return 0, false
	}
	return *e.Response.Content.Size, true
}

// Started parses the entry's start time. The zero time is returned when the
// timestamp is missing or malformed.
func (e *Entry) Started() time.Time {
	if e == nil {
		return time.Time{}
	}
	return ParseTime(e.StartedDateTime)
}

// timeLayouts are the timestamp shapes seen in archives from different
// browsers and capture tools.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
}

// ParseTime parses a HAR timestamp, returning the zero time on failure.
func ParseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
