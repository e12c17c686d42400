package asset

import (
	"fmt"
	"path/filepath"

	"github.com/nao1215/hashstatic/internal/hasher"
	"github.com/spf13/afero"
)

// Result describes a fingerprinted copy.
type Result struct {
	// Name is the composed fingerprinted filename.
	Name Name

	// Path is where the copy lives on the filesystem.
	Path string

	// Fingerprint is the hex digest of the content.
	Fingerprint string

	// Unchanged is true when the source already carried its own
	// fingerprint. Nothing was written in that case and Path is the source.
	Unchanged bool
}

// Filename returns the fingerprinted filename.
func (r Result) Filename() string {
	return r.Name.String()
}

// Renamer writes fingerprinted copies of asset files.
type Renamer struct {
	fs     afero.Fs
	hasher hasher.Hasher
}

// NewRenamer creates a Renamer. A nil hasher selects the default algorithm.
func NewRenamer(fs afero.Fs, h hasher.Hasher) *Renamer {
	if h == nil {
		h = hasher.NewXXH32()
	}
	return &Renamer{fs: fs, hasher: h}
}

// Hasher returns the algorithm used for fingerprints.
func (r *Renamer) Hasher() hasher.Hasher {
	return r.hasher
}

// Rename reads the file at path, hashes it and writes the same bytes to
// dir/{stem}_{fingerprint}.{ext}. An existing file with that name is
// overwritten, which is harmless since identical names imply identical
// content. The source is never removed.
func (r *Renamer) Rename(path, dir string) (Result, error) {
	info, err := r.fs.Stat(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrUnreadable, path, err)
	}
	if info.IsDir() {
		return Result{}, fmt.Errorf("%w: %s is a directory", ErrUnreadable, path)
	}

	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrUnreadable, path, err)
	}

	fingerprint := hasher.Fingerprint(r.hasher, data)

	stem, ext, err := SplitName(path)
	if err != nil {
		return Result{}, err
	}

	// Rewriting an already fingerprinted reference would stack a second
	// fingerprint onto the name.
	if existing, ok := ParseFingerprinted(path); ok && existing.Fingerprint == fingerprint {
		return Result{
			Name:        existing,
			Path:        path,
			Fingerprint: fingerprint,
			Unchanged:   true,
		}, nil
	}

	name := Name{Stem: stem, Fingerprint: fingerprint, Ext: ext}
	target := filepath.Join(dir, name.String())

	if err := afero.WriteFile(r.fs, target, data, info.Mode().Perm()); err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrWrite, target, err)
	}

	return Result{
		Name:        name,
		Path:        target,
		Fingerprint: fingerprint,
	}, nil
}
