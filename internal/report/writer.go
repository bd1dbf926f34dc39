package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/classifurlr/internal/model"
)

// Writer defines the interface for report output.
// Implementations render classification records in one output format.
//
// Design decision: Writers take the serialized record rather than the live
// classification tree. The record is what the store keeps and what the HTTP
// API returns, so the CLI renders exactly the same data whether a verdict
// was just computed or read back from history.
type Writer interface {
	// Write outputs one verdict.
	// Returns the number of bytes written and any error encountered.
	Write(record *model.Record) (int, error)

	// WriteBatch outputs several verdicts, for example one per input file.
	WriteBatch(records []*model.Record) (int, error)
}

// Format selects a Writer implementation.
// The classify command picks one from its --json and --markdown flags.
type Format string

// Supported formats.
const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// New returns the writer for format, writing to output.
// Unknown formats fall back to plain text.
func New(format Format, output io.Writer) Writer {
	switch format {
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint())
	case FormatMarkdown:
		return NewMarkdownWriter(output)
	default:
		return NewSimpleWriter(output)
	}
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for showing a verdict on the terminal while also keeping
// a copy in another format.
//
// Design decision: io.MultiWriter cannot be used here because it fans out
// bytes, and each destination may need a different format of the same
// records.
type MultiWriter struct {
	// writers receive every record in order.
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the record to all configured Writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(record *model.Record) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(record)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteBatch outputs the records to all configured Writers.
func (m *MultiWriter) WriteBatch(records []*model.Record) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteBatch(records)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
// Each format embeds it to share the output destination.
type baseWriter struct {
	// output is the destination, usually os.Stdout or a report file.
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// formatConfidence prints a confidence, or "-" when it is null.
func formatConfidence(c *float64) string {
	if c == nil {
		return "-"
	}
	return strconv.FormatFloat(*c, 'f', -1, 64)
}

// statusLine summarizes direction and blocking, e.g. "DOWN (blocked)".
func statusLine(r *model.Record) string {
	s := strings.ToUpper(r.Status.String())
	if s == "" {
		s = "UNKNOWN"
	}
	if r.IsBlocked() {
		s += " (blocked)"
	}
	return s
}

func errorText(r *model.Record) string {
	if r.Error == nil {
		return ""
	}
	return *r.Error
}

func classifierLabel(r *model.Record) string {
	if r.Version == "" {
		return r.Classifier
	}
	return fmt.Sprintf("%s %s", r.Classifier, r.Version)
}
