package pipeline

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/nao1215/hashstatic/internal/asset"
	"github.com/nao1215/hashstatic/internal/hasher"
	"github.com/spf13/afero"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func exists(t *testing.T, fs afero.Fs, path string) bool {
	t.Helper()
	ok, err := afero.Exists(fs, path)
	if err != nil {
		t.Fatalf("failed to stat %s: %v", path, err)
	}
	return ok
}

// fingerprinted returns the name stem_<xxh32>.ext for content.
func fingerprinted(stem, ext, content string) string {
	return stem + "_" + hasher.Fingerprint(hasher.NewXXH32(), []byte(content)) + "." + ext
}

// newDefault builds the standard pipeline over fs with a fresh fingerprinter.
func newDefault(fs afero.Fs, opts ...asset.Option) *Pipeline {
	opts = append([]asset.Option{asset.WithLogger(discardLogger())}, opts...)
	return Default(fs, asset.NewFingerprinter(fs, opts...), WithLogger(discardLogger()))
}
