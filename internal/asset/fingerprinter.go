package asset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/nao1215/hashstatic/internal/hasher"
	"github.com/nao1215/hashstatic/internal/model"
	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"
)

// Fingerprinter applies the per-asset policy of a run on top of a Renamer.
// It is safe for concurrent use; work for the same source and destination
// is performed once and shared.
type Fingerprinter struct {
	fs      afero.Fs
	renamer *Renamer
	logger  *slog.Logger

	// keepOriginals leaves the source file in place after a rename.
	keepOriginals bool

	// strict turns every per-asset failure into an error for the caller.
	strict bool

	// preserveDirs writes copies beside their source and keeps the
	// directory part of the reference. Otherwise copies go to the base
	// directory and references become bare filenames.
	preserveDirs bool

	mu    sync.Mutex
	done  map[string]outcome
	group singleflight.Group
}

// outcome is the shared result of processing one source for one destination.
type outcome struct {
	result    Result
	removed   bool
	removeErr error
}

// Option configures a Fingerprinter.
type Option func(*Fingerprinter)

// WithLogger sets the logger used for per-asset diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fingerprinter) {
		f.logger = logger
	}
}

// WithHasher selects the fingerprint algorithm.
func WithHasher(h hasher.Hasher) Option {
	return func(f *Fingerprinter) {
		f.renamer = NewRenamer(f.fs, h)
	}
}

// WithKeepOriginals keeps source files after they were fingerprinted.
func WithKeepOriginals(keep bool) Option {
	return func(f *Fingerprinter) {
		f.keepOriginals = keep
	}
}

// WithStrict makes every per-asset failure abort the caller.
func WithStrict(strict bool) Option {
	return func(f *Fingerprinter) {
		f.strict = strict
	}
}

// WithPreserveDirs writes fingerprinted copies beside their source.
func WithPreserveDirs(preserve bool) Option {
	return func(f *Fingerprinter) {
		f.preserveDirs = preserve
	}
}

// NewFingerprinter creates a Fingerprinter working on fs.
func NewFingerprinter(fs afero.Fs, opts ...Option) *Fingerprinter {
	f := &Fingerprinter{
		fs:   fs,
		done: make(map[string]outcome),
	}
	f.renamer = NewRenamer(fs, nil)

	for _, opt := range opts {
		opt(f)
	}

	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Hasher returns the fingerprint algorithm in use.
func (f *Fingerprinter) Hasher() hasher.Hasher {
	return f.renamer.Hasher()
}

// Process handles one reference found on an element of the given kind.
//
// The returned AssetResult is always filled in. A non-nil error means the
// caller must abort: either ctx is done or the Fingerprinter is strict and
// the asset could not be processed. In tolerant mode failures are logged,
// recorded on the result with StatusSkipped, and reported as nil.
func (f *Fingerprinter) Process(ctx context.Context, base string, kind model.Kind, ref string) (model.AssetResult, error) {
	res := model.AssetResult{Kind: kind, Reference: ref}

	if err := ctx.Err(); err != nil {
		res.Status = model.StatusFailed
		res.Reason = err.Error()
		return res, err
	}

	if !IsLocal(ref) {
		res.Status = model.StatusSkipped
		res.Reason = "not a local reference"
		f.logger.Debug("skipping non-local reference", "kind", kind, "reference", ref)
		return res, nil
	}

	res.Path = Resolve(ref, base)
	dir := base
	if f.preserveDirs {
		dir = filepath.Dir(res.Path)
	}

	out, err := f.fingerprint(res.Path, dir)
	if err != nil {
		return f.fail(res, err)
	}

	res.Fingerprint = out.result.Fingerprint
	if out.result.Unchanged {
		res.Status = model.StatusUnchanged
		f.logger.Debug("reference already fingerprinted", "reference", ref, "path", res.Path)
		return res, nil
	}

	res.Status = model.StatusRenamed
	res.NewPath = out.result.Path
	res.NewReference = f.newReference(ref, out.result.Filename())
	res.OriginalRemoved = out.removed

	if out.removeErr != nil {
		if f.strict {
			res.Status = model.StatusFailed
			res.Reason = out.removeErr.Error()
			return res, fmt.Errorf("asset %q: %w", ref, out.removeErr)
		}
		res.Reason = out.removeErr.Error()
		f.logger.Warn("fingerprinted asset but could not remove original",
			"reference", ref,
			"path", res.Path,
			"error", out.removeErr,
		)
	}

	f.logger.Debug("fingerprinted asset",
		"kind", kind,
		"reference", ref,
		"new_reference", res.NewReference,
		"fingerprint", res.Fingerprint,
	)
	return res, nil
}

// Renamed returns how many sources have been fingerprinted so far.
func (f *Fingerprinter) Renamed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.done)
}

// fingerprint renames src into dir once and remembers the outcome.
// Failed attempts are not remembered so a later reference may retry.
func (f *Fingerprinter) fingerprint(src, dir string) (outcome, error) {
	key := src + "\x00" + dir

	f.mu.Lock()
	if out, ok := f.done[key]; ok {
		f.mu.Unlock()
		return out, nil
	}
	f.mu.Unlock()

	v, err, _ := f.group.Do(key, func() (any, error) {
		f.mu.Lock()
		if out, ok := f.done[key]; ok {
			f.mu.Unlock()
			return out, nil
		}
		f.mu.Unlock()

		result, err := f.renamer.Rename(src, dir)
		if err != nil {
			return outcome{}, err
		}

		out := outcome{result: result}
		if !result.Unchanged && !f.keepOriginals {
			if err := f.fs.Remove(src); err != nil {
				out.removeErr = fmt.Errorf("%w: %s: %w", ErrRemove, src, err)
			} else {
				out.removed = true
			}
		}

		f.mu.Lock()
		f.done[key] = out
		f.mu.Unlock()
		return out, nil
	})
	if err != nil {
		return outcome{}, err
	}
	return v.(outcome), nil //nolint:forcetypeassert // only outcome values are returned above
}

// fail records err on res and decides whether it aborts the caller.
func (f *Fingerprinter) fail(res model.AssetResult, err error) (model.AssetResult, error) {
	res.Reason = err.Error()

	if f.strict {
		res.Status = model.StatusFailed
		return res, fmt.Errorf("asset %q: %w", res.Reference, err)
	}

	res.Status = model.StatusSkipped
	if errors.Is(err, ErrUnreadable) {
		// Missing assets are expected for references the site serves
		// from elsewhere.
		f.logger.Debug("leaving reference untouched", "reference", res.Reference, "error", err)
	} else {
		f.logger.Warn("leaving reference untouched", "reference", res.Reference, "error", err)
	}
	return res, nil
}

// newReference builds the attribute value pointing at filename.
func (f *Fingerprinter) newReference(ref, filename string) string {
	if !f.preserveDirs {
		return filename
	}
	ref = strings.TrimSpace(ref)
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[:i+1] + filename
	}
	return filename
}
