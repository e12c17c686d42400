package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/hashstatic/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// createTestRun creates a finished run with two assets.
func createTestRun(document string, startedAt time.Time) *model.Run {
	run := model.NewRun(document, "")
	run.Base = filepath.Dir(document)
	run.StartedAt = startedAt
	run.Elapsed = 3 * time.Millisecond
	run.Written = true
	run.PerformedSteps = []string{"resolve_base", "read_document", "rewrite", "write_document"}
	run.AddAsset(model.AssetResult{
		Kind: model.KindScript, Reference: "/app.js", Path: "/site/app.js",
		NewReference: "app_32d153ff.js", NewPath: "/site/app_32d153ff.js",
		Fingerprint: "32d153ff", Status: model.StatusRenamed, OriginalRemoved: true,
	})
	run.AddAsset(model.AssetResult{
		Kind: model.KindStylesheet, Reference: "missing.css", Path: "/site/missing.css",
		Status: model.StatusSkipped, Reason: "asset unreadable",
	})
	return run
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %s", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false fails for missing database", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})

	t.Run("reopens an existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		if _, err := db.SaveRun(context.Background(), createTestRun("/site/index.html", time.Now()), "xxh32"); err != nil {
			t.Fatal(err)
		}
		if err := db.Close(); err != nil {
			t.Fatal(err)
		}

		db, err = Open(dir, Options{CreateIfNotExists: false})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()

		docs, err := db.ListDocuments(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(docs) != 1 {
			t.Errorf("expected stored run to survive reopen, got %v", docs)
		}
	})
}

func TestSaveAndGetRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)

	startedAt := time.Date(2026, 10, 14, 9, 30, 0, 123456789, time.UTC)
	id, err := db.SaveRun(ctx, createTestRun("/site/index.html", startedAt), "xxh32")
	if err != nil {
		t.Fatalf("failed to save run: %v", err)
	}

	run, err := db.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}

	if run.Document != "/site/index.html" || run.Base != "/site" {
		t.Errorf("unexpected document/base %s %s", run.Document, run.Base)
	}
	if !run.StartedAt.Equal(startedAt) {
		t.Errorf("expected started at %v, got %v", startedAt, run.StartedAt)
	}
	if run.Elapsed != 3*time.Millisecond || !run.Written {
		t.Errorf("unexpected elapsed/written %v %v", run.Elapsed, run.Written)
	}
	if len(run.PerformedSteps) != 4 || run.PerformedSteps[2] != "rewrite" {
		t.Errorf("unexpected steps %v", run.PerformedSteps)
	}
	if len(run.Assets) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(run.Assets))
	}

	first := run.Assets[0]
	if first.Kind != model.KindScript || first.NewReference != "app_32d153ff.js" ||
		first.Fingerprint != "32d153ff" || first.Status != model.StatusRenamed || !first.OriginalRemoved {
		t.Errorf("unexpected first asset %+v", first)
	}
	second := run.Assets[1]
	if second.Kind != model.KindStylesheet || second.Status != model.StatusSkipped || second.Reason != "asset unreadable" {
		t.Errorf("unexpected second asset %+v", second)
	}

	rec, err := db.GetRecord(ctx, id)
	if err != nil {
		t.Fatalf("failed to get record: %v", err)
	}
	if rec.ID != id || rec.Algorithm != "xxh32" {
		t.Errorf("unexpected record %+v", rec)
	}
	if rec.Counts[model.StatusRenamed] != 1 || rec.Counts[model.StatusSkipped] != 1 {
		t.Errorf("unexpected counts %v", rec.Counts)
	}
}

func TestGetRunNotFound(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	if _, err := db.GetRun(context.Background(), 42); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := db.GetRecord(context.Background(), 42); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestListRuns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	failed := createTestRun("/site/index.html", base.Add(2*time.Hour))
	failed.Written = false
	failed.SetError(errors.New("asset \"missing.css\": unreadable"))

	for _, run := range []*model.Run{
		createTestRun("/site/index.html", base),
		createTestRun("/site/about.html", base.Add(time.Hour)),
		failed,
	} {
		if _, err := db.SaveRun(ctx, run, "sha3"); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
	}

	t.Run("runs of one document newest first", func(t *testing.T) {
		t.Parallel()

		records, err := db.ListRuns(ctx, "/site/index.html")
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(records))
		}
		if !records[0].StartedAt.After(records[1].StartedAt) {
			t.Error("expected newest run first")
		}
		if records[0].Error == "" || records[0].Written {
			t.Errorf("expected failed run first, got %+v", records[0])
		}
		if records[1].Counts[model.StatusRenamed] != 1 || records[1].Counts[model.StatusSkipped] != 1 {
			t.Errorf("unexpected counts %v", records[1].Counts)
		}
		if records[1].Algorithm != "sha3" {
			t.Errorf("expected algorithm sha3, got %s", records[1].Algorithm)
		}
	})

	t.Run("empty document lists all runs", func(t *testing.T) {
		t.Parallel()

		records, err := db.ListRuns(ctx, "")
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != 3 {
			t.Errorf("expected 3 runs, got %d", len(records))
		}
	})

	t.Run("lists distinct documents", func(t *testing.T) {
		t.Parallel()

		docs, err := db.ListDocuments(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(docs) != 2 || docs[0] != "/site/about.html" || docs[1] != "/site/index.html" {
			t.Errorf("unexpected documents %v", docs)
		}
	})
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  time.Time
	}{
		{input: "2026-10-14T09:30:00.5Z", want: time.Date(2026, 10, 14, 9, 30, 0, 500000000, time.UTC)},
		{input: "2026-10-14 09:30:00", want: time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)},
		{input: "2026-10-14T09:30:00", want: time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)},
		{input: "garbage", want: time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := parseTimestamp(tt.input); !got.Equal(tt.want) {
				t.Errorf("parseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
