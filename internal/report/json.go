package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/hashstatic/internal/model"
)

// JSONWriter outputs a manifest in JSON format, designed for build tools
// that need to know which fingerprinted name replaced which reference.
type JSONWriter struct {
	baseWriter

	info Info

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
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

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, info Info, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
		info:       info,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Manifest is the JSON document written by JSONWriter.
type Manifest struct {
	Info

	// Mapping maps every original reference that was fingerprinted to the
	// reference that replaced it, across all runs.
	Mapping map[string]string `json:"mapping"`

	// Runs holds the full outcome of every run.
	Runs []*model.Run `json:"runs"`
}

// NewManifest builds the manifest of the given runs.
func NewManifest(info Info, runs []*model.Run) *Manifest {
	m := &Manifest{
		Info:    info,
		Mapping: make(map[string]string),
		Runs:    started(runs),
	}
	for _, run := range m.Runs {
		for _, a := range run.Renamed() {
			m.Mapping[a.Reference] = a.NewReference
		}
	}
	return m
}

// Write outputs the manifest of a single run.
func (w *JSONWriter) Write(run *model.Run) (int, error) {
	return w.writeJSON(NewManifest(w.info, []*model.Run{run}))
}

// WriteBatch outputs one manifest covering all runs.
func (w *JSONWriter) WriteBatch(runs []*model.Run) (int, error) {
	return w.writeJSON(NewManifest(w.info, runs))
}

// writeJSON marshals the given value to JSON and writes it to the output.
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

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
