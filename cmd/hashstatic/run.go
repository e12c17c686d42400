package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/hashstatic/internal/asset"
	"github.com/nao1215/hashstatic/internal/config"
	"github.com/nao1215/hashstatic/internal/database"
	applog "github.com/nao1215/hashstatic/internal/log"
	"github.com/nao1215/hashstatic/internal/model"
	"github.com/nao1215/hashstatic/internal/report"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// addRunFlags registers the flags shared by every command that
// fingerprints documents.
func addRunFlags(cmd *cobra.Command) {
	// Fingerprinting behavior flags
	cmd.Flags().BoolP(config.FlagKeep, "k", false,
		"Keep the original assets instead of deleting them")
	cmd.Flags().Bool(config.FlagStrict, false,
		"Abort on the first asset that cannot be fingerprinted")
	cmd.Flags().BoolP(config.FlagPreserveDirs, "p", false,
		"Write fingerprinted files beside their originals and keep reference directories")
	cmd.Flags().StringP(config.FlagAlgorithm, "a", config.NewConfig().Algorithm,
		"Fingerprint algorithm (xxh32 or sha3)")
	cmd.Flags().BoolP(config.FlagShowTime, "s", false,
		"Print the elapsed time after each document")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .hashstatic in the base or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON manifest (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("no-history", false,
		"Do not record the run in the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")
}

// buildConfig creates a Config from the flags registered by addRunFlags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.KeepOriginals, err = cmd.Flags().GetBool(config.FlagKeep)
	if err != nil {
		return nil, err
	}

	cfg.Strict, err = cmd.Flags().GetBool(config.FlagStrict)
	if err != nil {
		return nil, err
	}

	cfg.PreserveDirs, err = cmd.Flags().GetBool(config.FlagPreserveDirs)
	if err != nil {
		return nil, err
	}

	cfg.Algorithm, err = cmd.Flags().GetString(config.FlagAlgorithm)
	if err != nil {
		return nil, err
	}

	cfg.ShowTime, err = cmd.Flags().GetBool(config.FlagShowTime)
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveHistory = !noHistory

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// loadConfig applies the configuration file, if any, to cfg.
// If the user explicitly specified a config file path, it is an error for
// it to be missing. Otherwise a missing file is silently ignored.
// Flags given on the command line take precedence over file values.
func loadConfig(cmd *cobra.Command, cfg *config.Config) error {
	configPath := config.FindConfigFile(cfg.ConfigFilePath, cfg.SearchDir())
	if configPath == "" {
		if cfg.ConfigFilePath != "" {
			return fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
		}
		return nil
	}

	file, err := config.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	cfg.ApplyFile(file, cmd.Flags().Changed)
	return nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates a structured logger writing to the command's error
// stream.
func setupLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	return applog.NewLogger(cmd.ErrOrStderr(), verbose)
}

// newFingerprinter creates the asset fingerprinter described by cfg.
func newFingerprinter(fs afero.Fs, cfg *config.Config, logger *slog.Logger) (*asset.Fingerprinter, error) {
	h, err := cfg.Hasher()
	if err != nil {
		return nil, err
	}

	return asset.NewFingerprinter(fs,
		asset.WithHasher(h),
		asset.WithKeepOriginals(cfg.KeepOriginals),
		asset.WithStrict(cfg.Strict),
		asset.WithPreserveDirs(cfg.PreserveDirs),
		asset.WithLogger(logger),
	), nil
}

// outputReport hands the writers selected by cfg to write.
//
// Without --output the chosen format goes to stdout, and the plain listing
// is used when no format was chosen. With --output the plain listing still
// goes to stdout and the chosen format is written to the file.
func outputReport(cmd *cobra.Command, cfg *config.Config, write func(report.Writer) error) error {
	info := report.Info{
		Version:   getVersion(),
		Algorithm: cfg.Algorithm,
	}

	console := report.NewSimpleWriter(cmd.OutOrStdout(),
		report.WithShowTime(cfg.ShowTime),
		report.WithShowSkipped(cfg.Verbose),
	)

	if cfg.ReportFile == "" {
		if cfg.JSONReport || cfg.MarkdownReport {
			return write(formatWriter(cmd.OutOrStdout(), cfg, info))
		}
		return write(console)
	}

	// Create directories if they don't exist
	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	return write(report.NewMultiWriter(console, formatWriter(f, cfg, info)))
}

// formatWriter returns the report writer for the format chosen in cfg.
func formatWriter(output io.Writer, cfg *config.Config, info report.Info) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, info, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output, info)
	default:
		return report.NewSimpleWriter(output,
			report.WithShowTime(cfg.ShowTime),
			report.WithShowSkipped(true),
		)
	}
}

// saveHistory records runs in the history database if enabled.
// Failures are logged and do not change the outcome of the command.
func saveHistory(ctx context.Context, cfg *config.Config, logger *slog.Logger, runs ...*model.Run) {
	if !cfg.SaveHistory {
		return
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		logger.Error("failed to open history database", "dir", cfg.DBDir, "error", err)
		return
	}
	defer db.Close()

	// An interrupted run is still worth recording.
	ctx = context.WithoutCancel(ctx)

	for _, run := range runs {
		if run == nil {
			continue
		}
		id, err := db.SaveRun(ctx, run, cfg.Algorithm)
		if err != nil {
			logger.Error("failed to save run", "document", run.Document, "error", err)
			continue
		}
		logger.Debug("run saved to history", "document", run.Document, "id", id)
	}
}
