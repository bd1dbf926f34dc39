package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/classifurlr/internal/model"
)

// SimpleWriter outputs the verdict as a plain text tree: the session
// summary, then each page with its classifier verdicts indented below.
type SimpleWriter struct {
	baseWriter

	// verbose adds the error text of every classifier verdict.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose prints classifier error messages, which explain
// inconclusive verdicts.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs one verdict.
func (w *SimpleWriter) Write(record *model.Record) (int, error) {
	var sb strings.Builder
	w.writeRecord(&sb, record)
	w.writeFooter(&sb)
	return io.WriteString(w.output, sb.String())
}

// WriteBatch outputs every verdict followed by a single footer.
func (w *SimpleWriter) WriteBatch(records []*model.Record) (int, error) {
	var sb strings.Builder
	for _, r := range records {
		if r == nil {
			continue
		}
		w.writeRecord(&sb, r)
	}
	w.writeFooter(&sb)
	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeRecord(sb *strings.Builder, r *model.Record) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                     CENSORSHIP CLASSIFICATION\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "URL:         %s\n", r.Subject)
	fmt.Fprintf(sb, "Status:      %s\n", statusLine(r))
	fmt.Fprintf(sb, "Confidence:  %s\n", formatConfidence(r.Confidence))
	fmt.Fprintf(sb, "Classifier:  %s\n", classifierLabel(r))
	if msg := errorText(r); msg != "" {
		fmt.Fprintf(sb, "Error:       %s\n", msg)
	}
	sb.WriteString("\n")

	if len(r.Constituents) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, p := range r.Constituents {
		fmt.Fprintf(sb, "  [%s] %s  confidence=%s\n", pageIndicator(&p), p.Subject, formatConfidence(p.Confidence))
		if msg := errorText(&p); msg != "" {
			fmt.Fprintf(sb, "      %s\n", msg)
		}
		for _, c := range p.Constituents {
			fmt.Fprintf(sb, "      %-22s %-13s %s\n", c.Classifier, c.Status.String(), formatConfidence(c.Confidence))
			if w.verbose {
				if msg := errorText(&c); msg != "" {
					fmt.Fprintf(sb, "        %s\n", msg)
				}
			}
		}
		sb.WriteString("\n")
	}
}

// pageIndicator returns a short marker for a page verdict.
func pageIndicator(r *model.Record) string {
	switch {
	case r.IsBlocked():
		return "BLOCKED"
	case r.Status == model.DirectionDown:
		return "DOWN"
	case r.Status == model.DirectionUp:
		return "UP"
	default:
		return "?"
	}
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by classifurlr\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
