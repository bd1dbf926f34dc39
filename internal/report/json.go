package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/classifurlr/internal/model"
)

// JSONWriter outputs verdicts as serialized records. A single verdict is
// one JSON object; a batch is an array of them.
// This format is meant for scripts and for feeding results to other tools.
//
// Design decision: the output is the same record encoding the server
// returns and the store saves. A zero confidence stays null, so a consumer
// can tell "no data" apart from a measured zero.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation for each nesting level.
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint indents with two spaces, the layout of
// Classification.AsJSON.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
// Output is compact unless an indent option is given.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs one record.
func (w *JSONWriter) Write(record *model.Record) (int, error) {
	return w.writeJSON(record)
}

// WriteBatch outputs the records as a JSON array. Nil entries are
// written as null so positions match the inputs.
func (w *JSONWriter) WriteBatch(records []*model.Record) (int, error) {
	if records == nil {
		records = []*model.Record{}
	}
	return w.writeJSON(records)
}

// writeJSON marshals v with the configured layout and writes it followed by
// a newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	// Trailing newline for terminal output
	data = append(data, '\n')
	return w.output.Write(data)
}
