package config

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/nao1215/hashstatic/internal/hasher"
)

const (
	// AppName is the application name used for XDG directory paths.
	AppName = "hashstatic"

	// DefaultJobs is the number of documents fingerprinted concurrently by
	// the batch command.
	DefaultJobs = 4
)

// Config holds all configuration options for a hashstatic run.
// It is populated from CLI flags, optionally defaulted from a config file,
// and passed through the application rather than kept in global state.
type Config struct {
	// DocumentPath is the markup document to rewrite in place.
	DocumentPath string

	// BasePath is the directory asset references are resolved against.
	// When empty, the directory containing the document is used.
	BasePath string

	// Documents lists the documents of a batch run.
	Documents []string

	// KeepOriginals leaves source assets in place after fingerprinting.
	// When false, each original is deleted once its copy is written.
	KeepOriginals bool

	// ShowTime prints the elapsed wall-clock time after the run.
	ShowTime bool

	// Strict aborts the run on the first asset that cannot be fingerprinted.
	// When false such assets are skipped and their references left as is.
	Strict bool

	// PreserveDirs writes fingerprinted copies beside their originals and
	// keeps the directory part of rewritten references. When false copies
	// are written to the base directory and references become bare names.
	PreserveDirs bool

	// Algorithm names the fingerprint hash: "xxh32" or "sha3".
	Algorithm string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .hashstatic is looked up in the base directory and then in
	// the user's home directory.
	ConfigFilePath string

	// JSONReport writes a JSON manifest instead of the plain listing.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport writes a GitHub Flavored Markdown report instead of
	// the plain listing. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// SaveHistory records every run in the history database.
	SaveHistory bool

	// DBDir is the directory holding the history database.
	// Defaults to the XDG data directory (~/.local/share/hashstatic on Linux).
	DBDir string

	// Jobs is the number of documents processed concurrently in batch mode.
	Jobs int
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Algorithm:   hasher.DefaultAlgorithm,
		SaveHistory: true,
		DBDir:       XDGDataDir(),
		Jobs:        DefaultJobs,
	}
}

// XDGDataDir returns the XDG data directory for hashstatic.
// On Linux: ~/.local/share/hashstatic
// On macOS: ~/Library/Application Support/hashstatic
// On Windows: %LOCALAPPDATA%\hashstatic
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for hashstatic.
// On Linux: ~/.config/hashstatic
// On macOS: ~/Library/Application Support/hashstatic
// On Windows: %APPDATA%\hashstatic
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Hasher returns the fingerprint algorithm selected by the configuration.
func (c *Config) Hasher() (hasher.Hasher, error) {
	h, err := hasher.ByName(c.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, c.Algorithm)
	}
	return h, nil
}

// Validate checks if the configuration is valid.
// It returns the first problem found, so fixing one error at a time is
// enough to get to a valid configuration.
func (c *Config) Validate() error {
	if c.DocumentPath == "" && len(c.Documents) == 0 {
		return ErrNoDocument
	}

	if _, err := c.Hasher(); err != nil {
		return err
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.Jobs <= 0 {
		return ErrInvalidJobs
	}

	return nil
}

// SearchDir returns the directory in which a .hashstatic file applies to
// this run: the explicit base directory, or the directory of the first
// document.
func (c *Config) SearchDir() string {
	if c.BasePath != "" {
		return c.BasePath
	}
	if c.DocumentPath != "" {
		return filepath.Dir(c.DocumentPath)
	}
	if len(c.Documents) > 0 {
		return filepath.Dir(c.Documents[0])
	}
	return ""
}
