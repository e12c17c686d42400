package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/hashstatic/internal/model"
	"github.com/nao1215/hashstatic/internal/pipeline"
	"github.com/nao1215/hashstatic/internal/report"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for hashstatic.
// Invoked with a document it fingerprints that document's assets.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hashstatic [flags] <document> [base-dir]",
		Short: "Fingerprint the static assets of an HTML document",
		Long: `hashstatic rewrites the <script src> and <link rel="stylesheet" href>
references of an HTML document so that they point at content-addressed copies
of the assets, named {stem}_{hash}.{ext}.

References are resolved against base-dir, or the directory containing the
document when base-dir is omitted. Remote references are left alone, and
assets that cannot be read are skipped unless --strict is given.

Examples:
  # Fingerprint the assets of a page and delete the originals
  hashstatic public/index.html

  # Keep the original files and print the elapsed time
  hashstatic -k -s public/index.html

  # Resolve references against another directory
  hashstatic build/index.html build/static

  # Write a JSON manifest of the renames
  hashstatic --json -o manifest.json public/index.html

Configuration file (.hashstatic) example:
  keep: true
  algorithm: sha3
  preserveDirs: true`,
		Version:       getVersion(),
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRootCmd,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	addRunFlags(cmd)

	// Add subcommands
	cmd.AddCommand(NewBatchCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runRootCmd fingerprints a single document.
func runRootCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	cfg.DocumentPath = args[0]
	if len(args) > 1 {
		cfg.BasePath = args[1]
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

	logger.Info("starting run",
		"document", cfg.DocumentPath,
		"base", cfg.BasePath,
		"algorithm", cfg.Algorithm,
	)

	run := model.NewRun(cfg.DocumentPath, cfg.BasePath)
	p := pipeline.Default(fs, fingerprinter, pipeline.WithLogger(logger))
	runErr := p.Execute(ctx, run)

	if err := outputReport(cmd, cfg, func(w report.Writer) error {
		_, err := w.Write(run)
		return err
	}); err != nil {
		logger.Error("report failed", "document", run.Document, "error", err)
	}

	saveHistory(ctx, cfg, logger, run)

	return runErr
}
