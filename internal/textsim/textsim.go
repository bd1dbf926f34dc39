// Package textsim measures how alike two HTML documents read.
//
// Documents are reduced to their visible text (script, style and similar
// non-rendered elements removed), normalized with Unicode NFKC and case
// folding, split into word terms, and compared as term-frequency vectors.
package textsim

import (
	"math"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// nonRendered lists elements whose text never reaches the reader.
const nonRendered = "script, style, noscript, template, head > meta, head > link"

// VisibleText returns the whitespace-collapsed visible text of doc.
// The document is cloned before non-rendered nodes are stripped, so doc is
// left untouched and may be shared between callers.
func VisibleText(doc *goquery.Document) string {
	if doc == nil || doc.Selection == nil {
		return ""
	}
	body := doc.Selection.Clone()
	body.Find(nonRendered).Remove()
	return strings.Join(strings.Fields(body.Text()), " ")
}

// Terms splits text into normalized word terms.
// A term is a maximal run of letters and digits after NFKC normalization and
// Unicode case folding.
func Terms(text string) []string {
	folded := cases.Fold().String(norm.NFKC.String(text))
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Vector is a sparse term-frequency vector.
type Vector map[string]float64

// NewVector counts the terms of text.
func NewVector(text string) Vector {
	v := make(Vector)
	for _, term := range Terms(text) {
		v[term]++
	}
	return v
}

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	var sum float64
	for _, n := range v {
		sum += n * n
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity of a and b in [0, 1].
// Zero vectors have no direction and score 0 against anything.
func Cosine(a, b Vector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	// Iterate the smaller map.
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for term, n := range a {
		dot += n * b[term]
	}
	return math.Min(1, dot/(na*nb))
}

// CosineText is a convenience wrapper comparing two plain texts.
func CosineText(a, b string) float64 {
	return Cosine(NewVector(a), NewVector(b))
}
