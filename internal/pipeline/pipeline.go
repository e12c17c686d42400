package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/hashstatic/internal/asset"
	"github.com/nao1215/hashstatic/internal/model"
	"github.com/spf13/afero"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each receiving the run as left by the
// previous steps.
type Step interface {
	// Do executes the pipeline step.
	// Tolerated per-asset problems are recorded on the run; a returned
	// error stops the pipeline.
	Do(ctx context.Context, run *model.Run) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError keeps executing steps after one fails.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution
// even when a step fails. The first error stays recorded on the run.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// Default creates the standard fingerprinting pipeline:
// resolve_base, read_document, rewrite, write_document.
func Default(fs afero.Fs, fingerprinter *asset.Fingerprinter, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddSteps(
		NewResolveBaseStep(fs),
		NewReadDocumentStep(fs),
		NewRewriteStep(fingerprinter, WithRewriteLogger(p.logger)),
		NewWriteDocumentStep(fs),
	)
	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence and records the elapsed
// wall-clock time on the run.
//
// Cancellation is checked before each step; the rewrite step also checks
// it for every matched element.
func (p *Pipeline) Execute(ctx context.Context, run *model.Run) error {
	start := time.Now()
	defer func() {
		run.Elapsed = time.Since(start)
	}()

	var firstErr error
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			if firstErr == nil {
				run.SetError(ctx.Err())
			}
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"document", run.Document,
		)

		if err := step.Do(ctx, run); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"document", run.Document,
				"error", err,
			)

			if firstErr == nil {
				firstErr = err
				run.SetError(err)
			}

			if !p.continueOnError {
				return err
			}
			continue
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"document", run.Document,
		)
		run.PerformedSteps = append(run.PerformedSteps, step.Name())
	}

	return firstErr
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
