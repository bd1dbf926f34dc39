// Package hartest builds HAR documents for tests.
//
//	doc := hartest.New().
//		Page("page_0", "2019-01-02T03:04:05Z").
//		Entry("page_0", hartest.Get("http://example.com/").Status(403).Body("denied")).
//		JSON()
package hartest

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// Archive accumulates pages and entries.
type Archive struct {
	pages   []map[string]any
	entries []map[string]any
}

// New returns an empty archive.
func New() *Archive {
	return &Archive{}
}

// Page appends a page record.
func (a *Archive) Page(id, started string) *Archive {
	a.pages = append(a.pages, map[string]any{
		"id":              id,
		"title":           id,
		"startedDateTime": started,
		"pageTimings":     map[string]any{},
	})
	return a
}

// Entry appends an entry belonging to pageID.
func (a *Archive) Entry(pageID string, e *EntryBuilder) *Archive {
	m := e.build()
	m["pageref"] = pageID
	a.entries = append(a.entries, m)
	return a
}

// JSON encodes the archive.
func (a *Archive) JSON() json.RawMessage {
	doc := map[string]any{
		"log": map[string]any{
			"version": "1.2",
			"creator": map[string]any{"name": "hartest", "version": "0"},
			"pages":   a.pages,
			"entries": a.entries,
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return data
}

// EntryBuilder describes one exchange.
type EntryBuilder struct {
	url        string
	started    time.Time
	elapsed    float64
	status     *int
	noResponse bool
	headers    [][2]string
	text       *string
	base64     bool
	mimeType   string
	size       *int64
	bodySize   int64
}

// Get starts an entry for url with a 200 status and an empty body.
func Get(url string) *EntryBuilder {
	status := 200
	return &EntryBuilder{
		url:      url,
		started:  time.Date(2019, 1, 2, 3, 4, 5, 0, time.UTC),
		elapsed:  100,
		status:   &status,
		mimeType: "text/html",
		bodySize: -1,
	}
}

// Status sets the response status.
func (e *EntryBuilder) Status(code int) *EntryBuilder {
	e.status = &code
	return e
}

// NoStatus removes the response status.
func (e *EntryBuilder) NoStatus() *EntryBuilder {
	e.status = nil
	return e
}

// NoResponse removes the response object entirely.
func (e *EntryBuilder) NoResponse() *EntryBuilder {
	e.noResponse = true
	return e
}

// Header appends a response header.
func (e *EntryBuilder) Header(name, value string) *EntryBuilder {
	e.headers = append(e.headers, [2]string{name, value})
	return e
}

// Redirect sets a 302 status and Location header.
func (e *EntryBuilder) Redirect(location string) *EntryBuilder {
	return e.Status(302).Header("Location", location)
}

// Body sets the response text; content size and body size default to its length.
func (e *EntryBuilder) Body(text string) *EntryBuilder {
	e.text = &text
	n := int64(len(text))
	if e.size == nil {
		e.size = &n
	}
	e.bodySize = n
	return e
}

// Base64Body stores text base64 encoded, as browsers do for binary bodies.
func (e *EntryBuilder) Base64Body(text string) *EntryBuilder {
	e.Body(base64.StdEncoding.EncodeToString([]byte(text)))
	n := int64(len(text))
	e.size = &n
	e.bodySize = n
	e.base64 = true
	return e
}

// Size overrides the content size.
func (e *EntryBuilder) Size(n int64) *EntryBuilder {
	e.size = &n
	return e
}

// BodySize overrides the transferred body size.
func (e *EntryBuilder) BodySize(n int64) *EntryBuilder {
	e.bodySize = n
	return e
}

// At sets the start time.
func (e *EntryBuilder) At(t time.Time) *EntryBuilder {
	e.started = t
	return e
}

// Took sets the total time in milliseconds.
func (e *EntryBuilder) Took(ms float64) *EntryBuilder {
	e.elapsed = ms
	return e
}

func (e *EntryBuilder) build() map[string]any {
	m := map[string]any{
		"startedDateTime": e.started.Format(time.RFC3339Nano),
		"time":            e.elapsed,
		"request": map[string]any{
			"method":  "GET",
			"url":     e.url,
			"headers": []any{},
		},
	}
	if e.noResponse {
		return m
	}

	headers := make([]map[string]string, 0, len(e.headers))
	for _, h := range e.headers {
		headers = append(headers, map[string]string{"name": h[0], "value": h[1]})
	}
	content := map[string]any{"mimeType": e.mimeType}
	if e.size != nil {
		content["size"] = *e.size
	}
	if e.text != nil {
		content["text"] = *e.text
	}
	if e.base64 {
		content["encoding"] = "base64"
	}

	resp := map[string]any{
		"headers":  headers,
		"content":  content,
		"bodySize": e.bodySize,
	}
	if e.status != nil {
		resp["status"] = *e.status
	}
	m["response"] = resp
	return m
}
