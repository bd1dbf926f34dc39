package content

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/PuerkitoBio/goquery"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/net/html/charset"

	"github.com/nao1215/classifurlr/internal/har"
	"github.com/nao1215/classifurlr/internal/model"
	"github.com/nao1215/classifurlr/internal/textsim"
)

// DefaultCacheSize is the number of parsed bodies kept by default.
const DefaultCacheSize = 256

// ErrInvalidCacheSize is returned for a cache size below one.
var ErrInvalidCacheSize = errors.New("cache size must be positive")

// Key identifies a body. The same URL may be fetched by several pages or
// several times within one page, so the start time and page are included.
type Key struct {
	URL     string
	Started string
	PageRef string
}

// KeyOf returns the cache key of an entry.
func KeyOf(e *har.Entry) Key {
	return Key{URL: e.Request.URL, Started: e.StartedDateTime, PageRef: e.PageRef}
}

// Body is a decoded response body.
// A Body is read-only and may be used from several goroutines.
type Body struct {
	// Markup is the body text after transfer and charset decoding.
	Markup string

	// Visible is the whitespace-collapsed text a reader would see.
	Visible string

	doc *goquery.Document
}

// Document returns the parsed HTML document. Callers must not modify it.
func (b *Body) Document() *goquery.Document {
	return b.doc
}

type result struct {
	body *Body
	err  error
}

// Extractor decodes and caches response bodies.
type Extractor struct {
	cache  *lru.Cache[Key, result]
	logger *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(x *Extractor) {
		x.logger = logger
	}
}

// NewExtractor returns an Extractor holding at most size parsed bodies.
func NewExtractor(size int, opts ...Option) (*Extractor, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCacheSize, size)
	}
	cache, err := lru.New[Key, result](size)
	if err != nil {
		return nil, fmt.Errorf("create body cache: %w", err)
	}
	x := &Extractor{cache: cache, logger: slog.Default()}
	for _, opt := range opts {
		opt(x)
	}
	return x, nil
}

// Body returns the decoded body of e. Missing or undecodable bodies yield an
// error matching model.ErrNotEnoughData. Both outcomes are cached.
func (x *Extractor) Body(e *har.Entry) (*Body, error) {
	if e == nil {
		return nil, model.NotEnoughData("No entry to read content from")
	}
	key := KeyOf(e)
	if r, ok := x.cache.Get(key); ok {
		x.hits.Add(1)
		return r.body, r.err
	}
	x.misses.Add(1)

	body, err := decode(e)
	if err != nil {
		x.logger.Debug("could not extract body", "url", key.URL, "page", key.PageRef, "error", err)
	}
	x.cache.Add(key, result{body: body, err: err})
	return body, err
}

// HasBody reports whether e carries a body that can be extracted.
func (x *Extractor) HasBody(e *har.Entry) bool {
	_, err := x.Body(e)
	return err == nil
}

// Stats returns the number of cache hits and misses so far.
func (x *Extractor) Stats() (hits, misses int64) {
	return x.hits.Load(), x.misses.Load()
}

// Len returns the number of cached bodies.
func (x *Extractor) Len() int {
	return x.cache.Len()
}

func decode(e *har.Entry) (*Body, error) {
	if e.Response == nil || e.Response.Content == nil {
		return nil, model.NotEnoughData("Could not parse entry content")
	}
	c := e.Response.Content
	if c.Text == nil {
		return nil, model.NotEnoughData(`"text" field not found in entry content`)
	}

	raw := []byte(*c.Text)
	if strings.EqualFold(c.Encoding, "base64") {
		decoded, err := base64.StdEncoding.DecodeString(*c.Text)
		if err != nil {
			return nil, model.NotEnoughData("Could not decode entry content: %v", err)
		}
		raw = decoded
	}

	contentType, ok := e.ResponseHeader("Content-Type")
	if !ok {
		contentType = c.MimeType
	}
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		// Unknown charset label; read the bytes as they are.
		r = bytes.NewReader(raw)
	}
	text, err := io.ReadAll(r)
	if err != nil {
		return nil, model.NotEnoughData("Could not decode entry content: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(text))
	if err != nil {
		return nil, model.NotEnoughData("Could not parse entry content: %v", err)
	}
	return &Body{
		Markup:  string(text),
		Visible: textsim.VisibleText(doc),
		doc:     doc,
	}, nil
}
