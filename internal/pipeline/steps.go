package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/hashstatic/internal/asset"
	"github.com/nao1215/hashstatic/internal/model"
	"github.com/nao1215/hashstatic/internal/rewriter"
	"github.com/spf13/afero"
)

var (
	scriptSelector     = rewriter.MustParseSelector("script[src]")
	stylesheetSelector = rewriter.MustParseSelector("link[rel=stylesheet][href]")
)

// ResolveBaseStep fixes the directory asset references are resolved
// against: the explicit override, or the directory containing the document.
type ResolveBaseStep struct {
	fs afero.Fs
}

// NewResolveBaseStep creates a new base resolution step.
func NewResolveBaseStep(fs afero.Fs) *ResolveBaseStep {
	return &ResolveBaseStep{fs: fs}
}

// Name returns the step name.
func (s *ResolveBaseStep) Name() string {
	return "resolve_base"
}

// Do executes the base resolution step.
func (s *ResolveBaseStep) Do(_ context.Context, run *model.Run) error {
	base := run.BaseOverride
	if base == "" {
		base = filepath.Dir(run.Document)
	}

	abs, err := filepath.Abs(base)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory %s: %w", base, err)
	}

	info, err := s.fs.Stat(abs)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBaseNotDirectory, abs, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrBaseNotDirectory, abs)
	}

	run.Base = abs
	return nil
}

// ReadDocumentStep loads the whole document into the run.
type ReadDocumentStep struct {
	fs afero.Fs
}

// NewReadDocumentStep creates a new document read step.
func NewReadDocumentStep(fs afero.Fs) *ReadDocumentStep {
	return &ReadDocumentStep{fs: fs}
}

// Name returns the step name.
func (s *ReadDocumentStep) Name() string {
	return "read_document"
}

// Do executes the document read step.
func (s *ReadDocumentStep) Do(_ context.Context, run *model.Run) error {
	data, err := afero.ReadFile(s.fs, run.Document)
	if err != nil {
		return fmt.Errorf("failed to read document %s: %w", run.Document, err)
	}
	run.Input = data
	return nil
}

// RewriteStep streams the document through the rewriter, fingerprinting the
// asset behind every script[src] and link[rel=stylesheet][href] element and
// pointing the element at the new name.
type RewriteStep struct {
	fingerprinter *asset.Fingerprinter
	logger        *slog.Logger
}

// RewriteStepOption configures a RewriteStep.
type RewriteStepOption func(*RewriteStep)

// WithRewriteLogger sets a custom logger for the rewrite step.
func WithRewriteLogger(logger *slog.Logger) RewriteStepOption {
	return func(s *RewriteStep) {
		s.logger = logger
	}
}

// NewRewriteStep creates a new rewrite step backed by the given fingerprinter.
func NewRewriteStep(fingerprinter *asset.Fingerprinter, opts ...RewriteStepOption) *RewriteStep {
	s := &RewriteStep{
		fingerprinter: fingerprinter,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *RewriteStep) Name() string {
	return "rewrite"
}

// Do executes the rewrite step.
func (s *RewriteStep) Do(ctx context.Context, run *model.Run) error {
	rw := rewriter.New(
		s.rule(run, model.KindScript, scriptSelector),
		s.rule(run, model.KindStylesheet, stylesheetSelector),
	)

	var out bytes.Buffer
	out.Grow(len(run.Input))
	if err := rw.Rewrite(ctx, bytes.NewReader(run.Input), &out); err != nil {
		return fmt.Errorf("failed to rewrite %s: %w", run.Document, err)
	}

	run.Output = out.Bytes()
	if run.Output == nil {
		run.Output = []byte{}
	}
	return nil
}

// rule binds one element kind to the fingerprinter for this run.
func (s *RewriteStep) rule(run *model.Run, kind model.Kind, sel rewriter.Selector) rewriter.Rule {
	attr := kind.Attribute()
	return rewriter.Rule{
		Selector: sel,
		Handler: func(ctx context.Context, el *rewriter.Element) error {
			ref, _ := el.Attribute(attr)

			result, err := s.fingerprinter.Process(ctx, run.Base, kind, ref)
			run.AddAsset(result)
			if err != nil {
				return err
			}

			if result.Status == model.StatusRenamed {
				el.SetAttribute(attr, result.NewReference)
				s.logger.Debug("reference rewritten",
					"kind", kind,
					"from", ref,
					"to", result.NewReference,
				)
			}
			return nil
		},
	}
}

// WriteDocumentStep replaces the document with the rewritten content.
// The content goes to a temporary file in the document's directory which
// is then renamed over the document, keeping its permission bits.
type WriteDocumentStep struct {
	fs afero.Fs
}

// NewWriteDocumentStep creates a new document write step.
func NewWriteDocumentStep(fs afero.Fs) *WriteDocumentStep {
	return &WriteDocumentStep{fs: fs}
}

// Name returns the step name.
func (s *WriteDocumentStep) Name() string {
	return "write_document"
}

// Do executes the document write step.
func (s *WriteDocumentStep) Do(_ context.Context, run *model.Run) error {
	if run.Output == nil {
		return fmt.Errorf("%w: %s", ErrNoOutput, run.Document)
	}

	mode := os.FileMode(0o644)
	if info, err := s.fs.Stat(run.Document); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := afero.TempFile(s.fs, filepath.Dir(run.Document), "."+filepath.Base(run.Document)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", run.Document, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(run.Output); err != nil {
		_ = tmp.Close()          //nolint:errcheck // already failing
		_ = s.fs.Remove(tmpName) //nolint:errcheck // best effort cleanup
		return fmt.Errorf("failed to write document %s: %w", run.Document, err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName) //nolint:errcheck // best effort cleanup
		return fmt.Errorf("failed to write document %s: %w", run.Document, err)
	}
	if err := s.fs.Chmod(tmpName, mode); err != nil {
		_ = s.fs.Remove(tmpName) //nolint:errcheck // best effort cleanup
		return fmt.Errorf("failed to set mode on %s: %w", tmpName, err)
	}
	if err := s.fs.Rename(tmpName, run.Document); err != nil {
		_ = s.fs.Remove(tmpName) //nolint:errcheck // best effort cleanup
		return fmt.Errorf("failed to replace document %s: %w", run.Document, err)
	}

	run.Written = true
	return nil
}
