package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and allow callers to use
// errors.Is() for programmatic error handling.
var (
	// ErrNoDocument is returned when no markup document is specified.
	ErrNoDocument = errors.New("no document specified: provide the path of an HTML document")

	// ErrUnknownAlgorithm is returned when the fingerprint algorithm is not supported.
	ErrUnknownAlgorithm = errors.New("unknown fingerprint algorithm")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidJobs is returned when the batch concurrency is not positive.
	ErrInvalidJobs = errors.New("invalid number of jobs: must be positive")
)
