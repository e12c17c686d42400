package asset

import "errors"

// Per-asset errors. Fingerprinter tolerates all of them unless it runs in
// strict mode; callers classify them with errors.Is.
var (
	// ErrUnreadable is returned when the asset cannot be read, including
	// when it does not exist or is a directory.
	ErrUnreadable = errors.New("asset unreadable")

	// ErrNoExtension is returned when the asset filename has no extension
	// to carry over into the fingerprinted name.
	ErrNoExtension = errors.New("asset filename has no extension")

	// ErrNoStem is returned when the asset filename has no stem.
	ErrNoStem = errors.New("asset filename has no stem")

	// ErrWrite is returned when the fingerprinted copy cannot be written.
	ErrWrite = errors.New("cannot write fingerprinted asset")

	// ErrRemove is returned when the original cannot be removed after a
	// successful rename.
	ErrRemove = errors.New("cannot remove original asset")
)
