// Package asset resolves asset references, writes fingerprinted copies of
// asset files and applies the per-asset policy of a run.
//
// The package is split in three layers:
//   - Resolve and IsLocal map a reference found in a document to a path
//     below the base directory.
//   - Renamer reads a file, hashes it and writes it under
//     {stem}_{fingerprint}.{ext}. It never deletes anything.
//   - Fingerprinter combines both with the policy of a run: whether
//     originals are kept, whether failures abort the run, and where the
//     fingerprinted copies are written. It also remembers what it already
//     renamed so repeated references keep resolving after the original
//     is gone.
//
// All file access goes through an afero.Fs so the package can be exercised
// against an in-memory filesystem.
package asset
