package content

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/classifurlr/internal/har"
	"github.com/nao1215/classifurlr/internal/har/hartest"
	"github.com/nao1215/classifurlr/internal/model"
)

func entries(t *testing.T, doc json.RawMessage) []*har.Entry {
	t.Helper()
	pages, err := har.Parse(doc)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("got %d pages, expected 1", len(pages))
	}
	return pages[0].Entries
}

func TestNewExtractorInvalidSize(t *testing.T) {
	t.Parallel()

	for _, size := range []int{0, -1} {
		if _, err := NewExtractor(size); !errors.Is(err, ErrInvalidCacheSize) {
			t.Errorf("NewExtractor(%d) error = %v, expected ErrInvalidCacheSize", size, err)
		}
	}
}

func TestExtractorBody(t *testing.T) {
	t.Parallel()

	doc := hartest.New().
		Page("page_0", "2019-01-02T03:04:05Z").
		Entry("page_0", hartest.Get("http://example.com/plain").
			Body(`<html><head><script>var x = 1;</script></head><body><p>Hello   world</p></body></html>`)).
		Entry("page_0", hartest.Get("http://example.com/b64").Base64Body("<p>encoded body</p>")).
		Entry("page_0", hartest.Get("http://example.com/none")).
		Entry("page_0", hartest.Get("http://example.com/gone").NoResponse()).
		JSON()
	es := entries(t, doc)

	x, err := NewExtractor(8)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("plain", func(t *testing.T) {
		body, err := x.Body(es[0])
		if err != nil {
			t.Fatalf("Body() error = %v", err)
		}
		if !strings.Contains(body.Markup, "<script>") {
			t.Error("markup should keep scripts")
		}
		if body.Visible != "Hello world" {
			t.Errorf("Visible = %q, expected %q", body.Visible, "Hello world")
		}
		if body.Document().Find("p").Length() != 1 {
			t.Error("expected one <p> in the parsed document")
		}
	})

	t.Run("base64", func(t *testing.T) {
		body, err := x.Body(es[1])
		if err != nil {
			t.Fatalf("Body() error = %v", err)
		}
		if body.Markup != "<p>encoded body</p>" {
			t.Errorf("Markup = %q", body.Markup)
		}
	})

	t.Run("missing text", func(t *testing.T) {
		if _, err := x.Body(es[2]); !errors.Is(err, model.ErrNotEnoughData) {
			t.Errorf("error = %v, expected ErrNotEnoughData", err)
		}
		if x.HasBody(es[2]) {
			t.Error("HasBody should be false without text")
		}
	})

	t.Run("missing response", func(t *testing.T) {
		if _, err := x.Body(es[3]); !errors.Is(err, model.ErrNotEnoughData) {
			t.Errorf("error = %v, expected ErrNotEnoughData", err)
		}
	})
}

func TestExtractorCaches(t *testing.T) {
	t.Parallel()

	doc := hartest.New().
		Page("page_0", "2019-01-02T03:04:05Z").
		Entry("page_0", hartest.Get("http://example.com/").Body("<p>cached</p>")).
		JSON()
	e := entries(t, doc)[0]

	x, err := NewExtractor(1)
	if err != nil {
		t.Fatal(err)
	}
	first, err := x.Body(e)
	if err != nil {
		t.Fatal(err)
	}
	second, err := x.Body(e)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("second lookup should return the cached body")
	}
	hits, misses := x.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("hits=%d misses=%d, expected 1 and 1", hits, misses)
	}
	if x.Len() != 1 {
		t.Errorf("Len() = %d, expected 1", x.Len())
	}
}

func TestExtractorCharset(t *testing.T) {
	t.Parallel()

	// "café" in ISO-8859-1.
	latin1 := string([]byte{'c', 'a', 'f', 0xe9})
	doc := hartest.New().
		Page("page_0", "2019-01-02T03:04:05Z").
		Entry("page_0", hartest.Get("http://example.com/").
			Header("Content-Type", "text/html; charset=iso-8859-1").
			Base64Body(latin1)).
		JSON()
	e := entries(t, doc)[0]

	x, err := NewExtractor(4)
	if err != nil {
		t.Fatal(err)
	}
	body, err := x.Body(e)
	if err != nil {
		t.Fatal(err)
	}
	if body.Markup != "café" {
		t.Errorf("Markup = %q, expected %q", body.Markup, "café")
	}
}
