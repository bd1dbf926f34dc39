package textsim

import (
	"math"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse html: %v", err)
	}
	return doc
}

func TestVisibleText(t *testing.T) {
	t.Parallel()

	t.Run("drops scripts and styles", func(t *testing.T) {
		t.Parallel()
		doc := mustDoc(t, `<html><head><title>News</title><style>p{color:red}</style></head>
<body><p>Hello   world</p><script>var x = 1;</script></body></html>`)

		got := VisibleText(doc)
		if !strings.Contains(got, "Hello world") {
			t.Errorf("expected collapsed paragraph text, got %q", got)
		}
		if strings.Contains(got, "var x") || strings.Contains(got, "color") {
			t.Errorf("expected script and style text to be removed, got %q", got)
		}
	})

	t.Run("does not mutate the document", func(t *testing.T) {
		t.Parallel()
		doc := mustDoc(t, `<body><script>x()</script><p>a</p></body>`)
		_ = VisibleText(doc)
		if doc.Find("script").Length() != 1 {
			t.Error("expected script element to remain in the original document")
		}
	})

	t.Run("nil document", func(t *testing.T) {
		t.Parallel()
		if got := VisibleText(nil); got != "" {
			t.Errorf("expected empty text, got %q", got)
		}
	})
}

func TestTerms(t *testing.T) {
	t.Parallel()

	got := Terms("Straße, STRASSE! ﬁle 42")
	want := []string{"strasse", "strasse", "file", "42"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("term %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestCosine(t *testing.T) {
	t.Parallel()

	t.Run("identical texts", func(t *testing.T) {
		t.Parallel()
		got := CosineText("the quick brown fox", "The quick brown fox")
		if math.Abs(got-1) > 1e-9 {
			t.Errorf("expected 1, got %v", got)
		}
	})

	t.Run("disjoint texts", func(t *testing.T) {
		t.Parallel()
		if got := CosineText("alpha beta", "gamma delta"); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})

	t.Run("empty text", func(t *testing.T) {
		t.Parallel()
		if got := CosineText("", "alpha"); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})

	t.Run("partial overlap", func(t *testing.T) {
		t.Parallel()
		// a = {x:1, y:1}, b = {x:1, z:1}: dot 1, norms sqrt2*sqrt2.
		got := CosineText("x y", "x z")
		if math.Abs(got-0.5) > 1e-9 {
			t.Errorf("expected 0.5, got %v", got)
		}
	})
}
