package main

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/hashstatic/internal/config"
	"github.com/nao1215/hashstatic/internal/database"
	"github.com/nao1215/hashstatic/internal/model"
	"github.com/nao1215/hashstatic/internal/report"
)

func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()

	if cmd.Use != "history [document]" {
		t.Errorf("unexpected Use: got %q", cmd.Use)
	}

	flagsWithShort := map[string]string{
		"list-documents": "L",
		"id":             "i",
		"json":           "j",
		"markdown":       "m",
		"db-dir":         "",
	}
	for name, shorthand := range flagsWithShort {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			t.Errorf("expected flag %q to exist", name)
			continue
		}
		if f.Shorthand != shorthand {
			t.Errorf("flag %q: expected shorthand %q, got %q", name, shorthand, f.Shorthand)
		}
	}
}

// seedHistory stores a run for each document and returns the database
// directory and the ID of the last run.
func seedHistory(t *testing.T, documents ...string) (string, int64) {
	t.Helper()

	dbDir := t.TempDir()
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	var id int64
	for i, document := range documents {
		run := model.NewRun(document, "")
		run.Base = "/site"
		run.StartedAt = time.Date(2026, 10, 14, 9, i, 0, 0, time.UTC)
		run.Written = true
		run.AddAsset(model.AssetResult{
			Kind: model.KindScript, Reference: "/app.js", Path: "/site/app.js",
			NewReference: "app_32d153ff.js", NewPath: "/site/app_32d153ff.js",
			Fingerprint: "32d153ff", Status: model.StatusRenamed,
		})
		run.AddAsset(model.AssetResult{
			Kind: model.KindStylesheet, Reference: "https://cdn.example.com/x.css",
			Status: model.StatusSkipped, Reason: "not a local reference",
		})
		id, err = db.SaveRun(context.Background(), run, "sha3")
		if err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
	}
	return dbDir, id
}

func TestRunHistoryCmd(t *testing.T) {
	t.Parallel()

	t.Run("empty database", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeCmd(t, "history", "--db-dir", t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "No run history found.") {
			t.Errorf("unexpected output: %q", stdout)
		}
	})

	t.Run("lists all runs", func(t *testing.T) {
		t.Parallel()

		dbDir, _ := seedHistory(t, "/site/index.html", "/site/about.html")
		stdout, _, err := executeCmd(t, "history", "--db-dir", dbDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Run history (2 runs)") {
			t.Errorf("unexpected header:\n%s", stdout)
		}
		if !strings.Contains(stdout, "R:1 S:1") || !strings.Contains(stdout, "sha3") {
			t.Errorf("expected summary and algorithm columns:\n%s", stdout)
		}
		// Newest first.
		if strings.Index(stdout, "/site/about.html") > strings.Index(stdout, "/site/index.html") {
			t.Errorf("expected newest run first:\n%s", stdout)
		}
	})

	t.Run("lists runs of one document", func(t *testing.T) {
		t.Parallel()

		dbDir, _ := seedHistory(t, "/site/index.html", "/site/about.html", "/site/index.html")
		stdout, _, err := executeCmd(t, "history", "--db-dir", dbDir, "/site/index.html")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Run history for /site/index.html (2 runs)") {
			t.Errorf("unexpected output:\n%s", stdout)
		}
		if strings.Contains(stdout, "about.html") {
			t.Errorf("expected only runs of index.html:\n%s", stdout)
		}
	})

	t.Run("lists documents", func(t *testing.T) {
		t.Parallel()

		dbDir, _ := seedHistory(t, "/site/index.html", "/site/about.html")
		stdout, _, err := executeCmd(t, "history", "--db-dir", dbDir, "-L")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Documents (2)") ||
			!strings.Contains(stdout, "• /site/index.html") || !strings.Contains(stdout, "• /site/about.html") {
			t.Errorf("unexpected output:\n%s", stdout)
		}
	})

	t.Run("shows a run", func(t *testing.T) {
		t.Parallel()

		dbDir, id := seedHistory(t, "/site/index.html")
		stdout, _, err := executeCmd(t, "history", "--db-dir", dbDir, "--id", strconv.FormatInt(id, 10))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "app_32d153ff.js") {
			t.Errorf("expected renamed asset, got %q", stdout)
		}
		if !strings.Contains(stdout, "skipped https://cdn.example.com/x.css: not a local reference") {
			t.Errorf("expected skipped asset, got %q", stdout)
		}
	})

	t.Run("shows a run as json", func(t *testing.T) {
		t.Parallel()

		dbDir, id := seedHistory(t, "/site/index.html")
		stdout, _, err := executeCmd(t, "history", "--db-dir", dbDir, "-j", "-i", strconv.FormatInt(id, 10))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var manifest report.Manifest
		if err := json.Unmarshal([]byte(stdout), &manifest); err != nil {
			t.Fatalf("invalid JSON output: %v\n%s", err, stdout)
		}
		if manifest.Algorithm != "sha3" {
			t.Errorf("expected stored algorithm sha3, got %q", manifest.Algorithm)
		}
		if manifest.Mapping["/app.js"] != "app_32d153ff.js" {
			t.Errorf("unexpected mapping %v", manifest.Mapping)
		}
	})

	t.Run("shows a run as markdown", func(t *testing.T) {
		t.Parallel()

		dbDir, id := seedHistory(t, "/site/index.html")
		stdout, _, err := executeCmd(t, "history", "--db-dir", dbDir, "-m", "-i", strconv.FormatInt(id, 10))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "# hashstatic Report") {
			t.Errorf("unexpected output:\n%s", stdout)
		}
	})

	t.Run("unknown run", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeCmd(t, "history", "--db-dir", t.TempDir(), "--id", "99")
		if !errors.Is(err, database.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("conflicting formats", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeCmd(t, "history", "--db-dir", t.TempDir(), "-j", "-m", "-i", "1")
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})

	t.Run("format without id", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeCmd(t, "history", "--db-dir", t.TempDir(), "-j")
		if err == nil || !strings.Contains(err.Error(), "require --id") {
			t.Errorf("expected error requiring --id, got %v", err)
		}
	})
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rec  database.RunRecord
		want string
	}{
		{
			name: "all statuses",
			rec: database.RunRecord{Counts: map[model.Status]int{
				model.StatusRenamed: 3, model.StatusUnchanged: 1, model.StatusSkipped: 2, model.StatusFailed: 1,
			}},
			want: "R:3 U:1 S:2 F:1",
		},
		{
			name: "no assets",
			rec:  database.RunRecord{Counts: map[model.Status]int{}},
			want: "no assets",
		},
		{
			name: "error wins",
			rec:  database.RunRecord{Error: "boom", Counts: map[model.Status]int{model.StatusRenamed: 1}},
			want: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := formatSummary(tt.rec); got != tt.want {
				t.Errorf("formatSummary() = %q, want %q", got, tt.want)
			}
		})
	}
}
