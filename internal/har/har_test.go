package har_test

import (
	"errors"
	"testing"
	"time"

	"github.com/nao1215/classifurlr/internal/har"
	"github.com/nao1215/classifurlr/internal/har/hartest"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("groups entries by page in archive order", func(t *testing.T) {
		t.Parallel()

		t0 := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
		doc := hartest.New().
			Page("page_1", "2019-01-01T00:00:00Z").
			Page("page_0", "2019-01-01T00:01:00Z").
			Entry("page_0", hartest.Get("http://example.com/b").At(t0.Add(2*time.Second))).
			Entry("page_1", hartest.Get("http://example.com/a").At(t0)).
			Entry("page_0", hartest.Get("http://example.com/a").At(t0.Add(time.Second))).
			Entry("orphan", hartest.Get("http://other.com/")).
			JSON()

		pages, err := har.Parse(doc)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pages) != 2 {
			t.Fatalf("expected 2 pages, got %d", len(pages))
		}
		if pages[0].ID != "page_1" || pages[1].ID != "page_0" {
			t.Errorf("expected archive page order, got %s, %s", pages[0].ID, pages[1].ID)
		}
		if len(pages[1].Entries) != 2 {
			t.Fatalf("expected 2 entries on page_0, got %d", len(pages[1].Entries))
		}
		if pages[1].URL() != "http://example.com/a" {
			t.Errorf("expected entries sorted by start time, first URL %q", pages[1].URL())
		}
	})

	t.Run("rejects invalid json", func(t *testing.T) {
		t.Parallel()
		if _, err := har.Parse([]byte("{not json")); err == nil {
			t.Error("expected decode error")
		}
	})

	t.Run("rejects document without log", func(t *testing.T) {
		t.Parallel()
		_, err := har.Parse([]byte(`{"version": "1.2"}`))
		if !errors.Is(err, har.ErrNoLog) {
			t.Errorf("expected ErrNoLog, got %v", err)
		}
	})
}

func TestPageActualPage(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("follows redirects", func(t *testing.T) {
		t.Parallel()
		pages := mustParse(t, hartest.New().
			Page("p", "2019-01-01T00:00:00Z").
			Entry("p", hartest.Get("http://example.com/").Redirect("http://www.example.com/").At(t0)).
			Entry("p", hartest.Get("http://www.example.com/").Body("ok").At(t0.Add(time.Second))).
			JSON())

		actual := pages[0].ActualPage()
		if actual == nil || actual.URL() != "http://www.example.com/" {
			t.Errorf("expected terminal entry, got %v", actual)
		}
	})

	t.Run("nil when only redirects", func(t *testing.T) {
		t.Parallel()
		pages := mustParse(t, hartest.New().
			Page("p", "2019-01-01T00:00:00Z").
			Entry("p", hartest.Get("http://example.com/").Redirect("http://www.example.com/")).
			JSON())

		if pages[0].ActualPage() != nil {
			t.Error("expected no actual page")
		}
	})

	t.Run("nil when no entries", func(t *testing.T) {
		t.Parallel()
		pages := mustParse(t, hartest.New().Page("p", "2019-01-01T00:00:00Z").JSON())
		if pages[0].ActualPage() != nil {
			t.Error("expected no actual page")
		}
		if pages[0].URL() != "" {
			t.Error("expected empty URL")
		}
	})
}

func TestPageSizesAndTimes(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	pages := mustParse(t, hartest.New().
		Page("p", "2019-01-01T00:00:00Z").
		Entry("p", hartest.Get("http://example.com/").Body("0123456789").At(t0).Took(1000)).
		Entry("p", hartest.Get("http://example.com/a.css").Body("abc").At(t0.Add(500*time.Millisecond)).Took(1000)).
		Entry("p", hartest.Get("http://example.com/b.js").BodySize(-1).At(t0.Add(3*time.Second)).Took(250)).
		JSON())
	page := pages[0]

	t.Run("total size skips negative body sizes", func(t *testing.T) {
		t.Parallel()
		if got := page.TotalSize(); got != 13 {
			t.Errorf("expected 13, got %d", got)
		}
	})

	t.Run("load time counts overlapping spans once", func(t *testing.T) {
		t.Parallel()
		// [0,1000) and [500,1500) merge into 1500ms, plus [3000,3250).
		if got := page.LoadTime(); got != 1750 {
			t.Errorf("expected 1750, got %d", got)
		}
	})

	t.Run("started at", func(t *testing.T) {
		t.Parallel()
		if !page.StartedAt().Equal(t0) {
			t.Errorf("expected %v, got %v", t0, page.StartedAt())
		}
	})
}

func TestParseTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		isZero bool
	}{
		{in: "2019-01-02T03:04:05.123Z", isZero: false},
		{in: "2019-01-02T03:04:05+09:00", isZero: false},
		{in: "2019-01-02T03:04:05.123+0000", isZero: false},
		{in: "", isZero: true},
		{in: "yesterday", isZero: true},
	}
	for _, tt := range tests {
		if got := har.ParseTime(tt.in).IsZero(); got != tt.isZero {
			t.Errorf("ParseTime(%q).IsZero() = %v, want %v", tt.in, got, tt.isZero)
		}
	}
}

func mustParse(t *testing.T, data []byte) []*har.Page {
	t.Helper()
	pages, err := har.Parse(data)
	if err != nil {
		t.Fatalf("failed to parse HAR: %v", err)
	}
	return pages
}
