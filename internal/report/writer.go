package report

import (
	"io"

	"github.com/nao1215/hashstatic/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the report of a single run.
	// Returns the number of bytes written and any error encountered.
	Write(run *model.Run) (int, error)

	// WriteBatch outputs one report covering several runs.
	// Nil runs (documents never started) are ignored.
	WriteBatch(runs []*model.Run) (int, error)
}

// Info describes the tool and settings that produced the runs.
type Info struct {
	// Version is the hashstatic version.
	Version string `json:"version"`

	// Algorithm is the fingerprint hash in use.
	Algorithm string `json:"algorithm"`
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(run *model.Run) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(run)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteBatch outputs the batch report to all configured Writers.
func (m *MultiWriter) WriteBatch(runs []*model.Run) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteBatch(runs)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// started drops the runs that never began.
func started(runs []*model.Run) []*model.Run {
	out := make([]*model.Run, 0, len(runs))
	for _, r := range runs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
