package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/hashstatic/internal/model"
)

// SimpleWriter outputs the console listing: the new filename of every
// fingerprinted asset, one per line, in document order.
type SimpleWriter struct {
	baseWriter

	// showTime appends an "elapsed: <duration>" line.
	showTime bool

	// showSkipped also lists assets that were left untouched.
	showSkipped bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowTime appends the elapsed wall-clock time of the run.
func WithShowTime(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showTime = show
	}
}

// WithShowSkipped lists skipped and failed assets with their reason.
func WithShowSkipped(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showSkipped = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the listing of a single run.
func (w *SimpleWriter) Write(run *model.Run) (int, error) {
	var sb strings.Builder
	w.writeRun(&sb, run, "")
	return io.WriteString(w.output, sb.String())
}

// WriteBatch outputs the listing of every run under a header naming its
// document.
func (w *SimpleWriter) WriteBatch(runs []*model.Run) (int, error) {
	var sb strings.Builder
	for _, run := range started(runs) {
		sb.WriteString(run.Document)
		sb.WriteString(":\n")
		w.writeRun(&sb, run, "  ")
		if run.Failed() {
			fmt.Fprintf(&sb, "  error: %s\n", run.ErrorMessage)
		}
	}
	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeRun(sb *strings.Builder, run *model.Run, indent string) {
	for _, a := range run.Assets {
		switch {
		case a.Status == model.StatusRenamed:
			sb.WriteString(indent)
			sb.WriteString(a.NewName())
			sb.WriteString("\n")
		case w.showSkipped && a.Status != model.StatusUnchanged:
			fmt.Fprintf(sb, "%s%s %s: %s\n", indent, a.Status, a.Reference, a.Reason)
		}
	}

	if w.showTime {
		fmt.Fprintf(sb, "%selapsed: %s\n", indent, run.Elapsed)
	}
}
