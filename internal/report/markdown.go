package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/classifurlr/internal/model"
)

// MarkdownWriter outputs verdicts as GitHub Flavored Markdown: a summary
// table with an alert, a page table with a direction chart, and one table
// of classifier verdicts per page.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs one verdict.
func (w *MarkdownWriter) Write(record *model.Record) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Censorship Classification")
	md.PlainText("")
	w.writeSession(md, record)
	w.writePages(md, record)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteBatch outputs an overview table followed by every verdict.
func (w *MarkdownWriter) WriteBatch(records []*model.Record) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Censorship Classification")
	md.PlainText("")

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		rows = append(rows, []string{
			"`" + r.Subject + "`",
			statusIcon(r) + " " + statusLine(r),
			formatConfidence(r.Confidence),
			strconv.Itoa(len(r.Constituents)),
		})
	}
	md.H2("Overview")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Status", "Confidence", "Pages"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, r := range records {
		if r == nil {
			continue
		}
		md.H2(r.Subject)
		md.PlainText("")
		w.writeSession(md, r)
		w.writePages(md, r)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeSession(md *markdown.Markdown, r *model.Record) {
	rows := [][]string{
		{"URL", "`" + r.Subject + "`"},
		{"Status", statusIcon(r) + " " + statusLine(r)},
		{"Blocked", r.Blocked.String()},
		{"Confidence", formatConfidence(r.Confidence)},
		{"Classifier", classifierLabel(r)},
	}
	if msg := errorText(r); msg != "" {
		rows = append(rows, []string{"Error", msg})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
	w.writeAlert(md, r)
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, r *model.Record) {
	switch {
	case r.IsBlocked():
		md.Cautionf("Active blocking detected for %s.", r.Subject)
	case r.Status == model.DirectionDown:
		md.Warningf("%s appears to be inaccessible (confidence %s).", r.Subject, formatConfidence(r.Confidence))
	case r.Status == model.DirectionInconclusive:
		md.Note("The measurements were not sufficient to reach a conclusion.")
	default:
		md.Tip("No sign of interference.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writePages(md *markdown.Markdown, r *model.Record) {
	md.H2("Pages")
	md.PlainText("")

	if len(r.Constituents) == 0 {
		md.PlainText("No pages were classified.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(r.Constituents))
	for i, p := range r.Constituents {
		rows[i] = []string{
			"`" + p.Subject + "`",
			statusIcon(&p) + " " + statusLine(&p),
			formatConfidence(p.Confidence),
			truncateString(errorText(&p), 60),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Page", "Status", "Confidence", "Error"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(r.Constituents) > 1 {
		w.writePieChart(md, r.Constituents)
	}

	for _, p := range r.Constituents {
		md.H3("Page " + p.Subject)
		md.PlainText("")
		if len(p.Constituents) == 0 {
			md.PlainText("No classifier verdicts.")
			md.PlainText("")
			continue
		}
		crows := make([][]string, len(p.Constituents))
		for i, c := range p.Constituents {
			msg := errorText(&c)
			if msg == "" {
				msg = "-"
			}
			crows[i] = []string{
				c.Classifier,
				statusIcon(&c) + " " + statusLine(&c),
				formatConfidence(c.Confidence),
				truncateString(msg, 60),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Classifier", "Status", "Confidence", "Note"},
			Rows:   crows,
		})
		md.PlainText("")
	}
}

// writePieChart writes a mermaid pie chart of page directions.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, pages []model.Record) {
	counts := map[model.Direction]uint64{}
	for _, p := range pages {
		counts[p.Status]++
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Page Verdicts"),
		piechart.WithShowData(true),
	)
	for _, d := range []model.Direction{model.DirectionUp, model.DirectionDown, model.DirectionInconclusive} {
		if counts[d] > 0 {
			chart.LabelAndIntValue(d.String(), counts[d])
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [classifurlr](https://github.com/nao1215/classifurlr)*")
}

func statusIcon(r *model.Record) string {
	switch {
	case r.IsBlocked():
		return "⛔"
	case r.Status == model.DirectionDown:
		return "🔴"
	case r.Status == model.DirectionUp:
		return "🟢"
	default:
		return "⚪"
	}
}

// truncateString truncates a string to maxLen bytes with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
