package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nao1215/hashstatic/internal/config"
	"github.com/nao1215/hashstatic/internal/pipeline"
	"github.com/nao1215/hashstatic/internal/report"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewBatchCmd creates the batch command.
func NewBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <document>...",
		Short: "Fingerprint the assets of several documents concurrently",
		Long: `Batch rewrites several HTML documents in one invocation.

Documents are processed concurrently and share one fingerprint cache, so an
asset referenced by many pages is hashed and copied once. A document that
fails does not stop the others; the command exits non-zero if any failed.

Each document resolves its references against its own directory unless
--base names a common directory.

Examples:
  # Fingerprint every page of a site
  hashstatic batch public/*.html

  # Resolve all references against one directory, 8 documents at a time
  hashstatic batch --base public/static --jobs 8 public/*.html`,
		Args: cobra.MinimumNArgs(1),
		RunE: runBatchCmd,
	}

	addRunFlags(cmd)
	cmd.Flags().StringP("base", "b", "",
		"Base directory for every document (default: the directory of each document)")
	cmd.Flags().Int(config.FlagJobs, config.DefaultJobs,
		"Number of documents processed concurrently")

	return cmd
}

// runBatchCmd executes the batch command.
func runBatchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Documents = args

	cfg.BasePath, err = cmd.Flags().GetString("base")
	if err != nil {
		return err
	}

	cfg.Jobs, err = cmd.Flags().GetInt(config.FlagJobs)
	if err != nil {
		return err
	}

	if err := loadConfig(cmd, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg.Verbose)

	fs := afero.NewOsFs()
	fingerprinter, err := newFingerprinter(fs, cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting batch",
		"documents", len(cfg.Documents),
		"jobs", cfg.Jobs,
		"algorithm", cfg.Algorithm,
	)

	// All pipelines share the fingerprinter and therefore its cache.
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.Default(fs, fingerprinter, pipeline.WithLogger(logger))
		},
		pipeline.WithConcurrency(cfg.Jobs),
		pipeline.WithBatchLogger(logger),
		pipeline.WithBatchBase(cfg.BasePath),
	)

	startTime := time.Now()
	runs, batchErr := bp.ProcessBatch(ctx, cfg.Documents)
	elapsed := time.Since(startTime)

	if err := outputReport(cmd, cfg, func(w report.Writer) error {
		_, err := w.WriteBatch(runs)
		return err
	}); err != nil {
		logger.Error("report failed", "error", err)
	}

	saveHistory(ctx, cfg, logger, runs...)

	if cfg.ShowTime {
		fmt.Fprintf(cmd.OutOrStdout(), "batch elapsed: %s\n", elapsed.Round(time.Millisecond))
	}

	if batchErr != nil {
		return batchErr
	}

	failed := 0
	for _, run := range runs {
		if run != nil && run.Failed() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(runs))
	}
	return nil
}
