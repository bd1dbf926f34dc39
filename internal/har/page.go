package har

import (
	"math"
	"sort"
	"time"
)

// Page is one browser navigation and its ordered entries.
// Pages are read-only once parsed and safe to share between goroutines.
type Page struct {
	// ID is the archive's page identifier (e.g. "page_1").
	ID string

	// Title is the page title recorded by the browser.
	Title string

	// StartedDateTime is the raw page start timestamp.
	StartedDateTime string

	// Entries are the page's exchanges ordered by start time.
	Entries []*Entry

	actual *Entry
}

// newPage builds a page and resolves its terminal entry.
func newPage(id, title, started string, entries []*Entry) *Page {
	p := &Page{
		ID:              id,
		Title:           title,
		StartedDateTime: started,
		Entries:         entries,
	}
	for _, e := range entries {
		if !e.IsRedirect() {
			p.actual = e
			break
		}
	}
	return p
}

// SubjectID identifies the page in classification output.
func (p *Page) SubjectID() string {
	return p.ID
}

// URL is the initially requested URL, i.e. the first entry's request URL.
func (p *Page) URL() string {
	if len(p.Entries) == 0 {
		return ""
	}
	return p.Entries[0].Request.URL
}

// ActualPage returns the entry representing the terminal document once
// redirects are followed: the first entry whose status is not 3xx.
// It returns nil when the page has no such entry.
func (p *Page) ActualPage() *Entry {
	return p.actual
}

// StartedAt parses the page start time. When the page record has no usable
// timestamp the first entry's start time is used instead.
func (p *Page) StartedAt() time.Time {
	if t := ParseTime(p.StartedDateTime); !t.IsZero() {
		return t
	}
	if len(p.Entries) > 0 {
		return p.Entries[0].Started()
	}
	return time.Time{}
}

// TotalSize returns the sum of all non-negative response body sizes in bytes.
func (p *Page) TotalSize() int64 {
	var total int64
	for _, e := range p.Entries {
		if e.Response != nil && e.Response.BodySize >= 0 {
			total += e.Response.BodySize
		}
	}
	return total
}

// LoadTime returns the page load time in milliseconds: the number of
// milliseconds during which at least one entry was in flight. Overlapping
// requests are counted once.
func (p *Page) LoadTime() int64 {
	type span struct{ start, end int64 }

	spans := make([]span, 0, len(p.Entries))
	for _, e := range p.Entries {
		started := e.Started()
		if started.IsZero() || e.Time <= 0 {
			continue
		}
		start := started.UnixMilli()
		spans = append(spans, span{start: start, end: start + int64(math.Round(e.Time))})
	}
	if len(spans) == 0 {
		return 0
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var total int64
	cur := spans[0]
	for _, s := range spans[1:] {
		if s.start <= cur.end {
			if s.end > cur.end {
				cur.end = s.end
			}
			continue
		}
		total += cur.end - cur.start
		cur = s
	}
	total += cur.end - cur.start
	return total
}
