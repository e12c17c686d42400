package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/nao1215/hashstatic/internal/hasher"
)

const (
	appJS    = "console.log('hello');\n"
	styleCSS = "body { margin: 0; }\n"
)

// testPage references one root-relative script and one relative stylesheet.
const testPage = `<!DOCTYPE html>
<html>
<head>
<link rel="stylesheet" href="style.css">
<script src="/app.js"></script>
</head>
<body><p>hello</p></body>
</html>
`

// executeCmd runs the root command with args and returns what it wrote to
// stdout and stderr.
func executeCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// setupSite creates a directory holding testPage as index.html, its two
// assets and an empty configuration file, and returns the directory.
func setupSite(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "index.html"), testPage)
	writeTestFile(t, filepath.Join(dir, "app.js"), appJS)
	writeTestFile(t, filepath.Join(dir, "style.css"), styleCSS)
	writeTestFile(t, filepath.Join(dir, "empty.yaml"), "")
	return dir
}

// baseArgs keeps tests away from the user's configuration file and history
// database.
func baseArgs(dir string) []string {
	return []string{"-c", filepath.Join(dir, "empty.yaml"), "--no-history"}
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test file path
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// fingerprintedName returns the name hashstatic gives to stem.ext with the
// given content under the default algorithm.
func fingerprintedName(stem, ext, content string) string {
	return stem + "_" + hasher.Fingerprint(hasher.NewXXH32(), []byte(content)) + "." + ext
}
