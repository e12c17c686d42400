package pipeline

import "errors"

var (
	// ErrBaseNotDirectory is returned when the base path is missing or is not a directory.
	ErrBaseNotDirectory = errors.New("base path is not a directory")

	// ErrNoOutput is returned when the write step runs before the rewrite step.
	ErrNoOutput = errors.New("no rewritten document to write")
)
