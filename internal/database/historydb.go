package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/hashstatic/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "hashstatic.db"

// timeFormat is a fixed-width RFC 3339 layout, so stored timestamps sort
// lexically in time order.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// HistoryDB stores fingerprinting runs and their asset outcomes.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so that concurrent batch runs
	// do not block readers.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (h *HistoryDB) createTables() error {
	schema := `
	-- One row per fingerprinting run of a document
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document TEXT NOT NULL,
		base TEXT NOT NULL,
		algorithm TEXT NOT NULL,
		started_at TEXT NOT NULL,
		elapsed_ns INTEGER NOT NULL DEFAULT 0,
		written INTEGER NOT NULL DEFAULT 0,
		renamed INTEGER NOT NULL DEFAULT 0,
		unchanged INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		steps TEXT,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_document ON runs(document);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

	-- One row per matched element of a run, in document order
	CREATE TABLE IF NOT EXISTS assets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		kind TEXT NOT NULL,
		reference TEXT NOT NULL,
		path TEXT,
		new_reference TEXT,
		new_path TEXT,
		fingerprint TEXT,
		status TEXT NOT NULL,
		reason TEXT,
		original_removed INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_assets_run ON assets(run_id);
	CREATE INDEX IF NOT EXISTS idx_assets_reference ON assets(reference);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord is the summary of a stored run.
type RunRecord struct {
	// ID is the database ID of the run.
	ID int64

	// Document is the path of the rewritten document.
	Document string

	// Base is the directory references were resolved against.
	Base string

	// Algorithm is the fingerprint hash used.
	Algorithm string

	// StartedAt is when the run began.
	StartedAt time.Time

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration

	// Written reports whether the document was replaced.
	Written bool

	// Counts holds the number of assets per status.
	Counts map[model.Status]int

	// Error is the error that stopped the run, if any.
	Error string
}

// SaveRun stores a run with all its asset outcomes and returns its ID.
func (h *HistoryDB) SaveRun(ctx context.Context, run *model.Run, algorithm string) (int64, error) {
	steps, err := json.Marshal(run.PerformedSteps)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize steps: %w", err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	counts := run.Counts()
	res, err := tx.ExecContext(ctx, `
	INSERT INTO runs (document, base, algorithm, started_at, elapsed_ns, written,
		renamed, unchanged, skipped, failed, steps, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.Document,
		run.Base,
		algorithm,
		run.StartedAt.UTC().Format(timeFormat),
		int64(run.Elapsed),
		run.Written,
		counts[model.StatusRenamed],
		counts[model.StatusUnchanged],
		counts[model.StatusSkipped],
		counts[model.StatusFailed],
		string(steps),
		run.ErrorMessage,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO assets (run_id, position, kind, reference, path, new_reference, new_path,
		fingerprint, status, reason, original_removed)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare asset insert: %w", err)
	}
	defer stmt.Close()

	for i, a := range run.Assets {
		if _, err := stmt.ExecContext(ctx,
			id, i, string(a.Kind), a.Reference, a.Path, a.NewReference, a.NewPath,
			a.Fingerprint, string(a.Status), a.Reason, a.OriginalRemoved,
		); err != nil {
			return 0, fmt.Errorf("failed to save asset %q: %w", a.Reference, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// ListDocuments returns every document with at least one stored run.
func (h *HistoryDB) ListDocuments(ctx context.Context) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT DISTINCT document FROM runs
	ORDER BY document
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var documents []string
	for rows.Next() {
		var document string
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		documents = append(documents, document)
	}

	return documents, rows.Err()
}

// ListRuns returns the runs of a document, newest first.
// An empty document lists the runs of all documents.
func (h *HistoryDB) ListRuns(ctx context.Context, document string) ([]RunRecord, error) {
	query := `
	SELECT id, document, base, algorithm, started_at, elapsed_ns, written,
		renamed, unchanged, skipped, failed, error
	FROM runs
	WHERE ? = '' OR document = ?
	ORDER BY started_at DESC, id DESC
	`

	rows, err := h.db.QueryContext(ctx, query, document, document)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		rec, err := scanRunRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRunRecord(row rowScanner) (RunRecord, error) {
	var (
		rec                                RunRecord
		startedAt                          string
		elapsed                            int64
		renamed, unchanged, skipped, fails int
		errMsg                             sql.NullString
	)
	if err := row.Scan(&rec.ID, &rec.Document, &rec.Base, &rec.Algorithm, &startedAt, &elapsed, &rec.Written,
		&renamed, &unchanged, &skipped, &fails, &errMsg); err != nil {
		return RunRecord{}, fmt.Errorf("failed to scan run: %w", err)
	}

	rec.StartedAt = parseTimestamp(startedAt)
	rec.Elapsed = time.Duration(elapsed)
	rec.Error = errMsg.String
	rec.Counts = map[model.Status]int{
		model.StatusRenamed:   renamed,
		model.StatusUnchanged: unchanged,
		model.StatusSkipped:   skipped,
		model.StatusFailed:    fails,
	}
	return rec, nil
}

// GetRecord returns the summary of a stored run.
// It returns ErrRunNotFound when no run has the given ID.
func (h *HistoryDB) GetRecord(ctx context.Context, id int64) (RunRecord, error) {
	row := h.db.QueryRowContext(ctx, `
	SELECT id, document, base, algorithm, started_at, elapsed_ns, written,
		renamed, unchanged, skipped, failed, error
	FROM runs
	WHERE id = ?
	`, id)

	rec, err := scanRunRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	return rec, err
}

// GetRun loads a stored run with its assets.
// It returns ErrRunNotFound when no run has the given ID.
func (h *HistoryDB) GetRun(ctx context.Context, id int64) (*model.Run, error) {
	rec, err := h.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	var steps sql.NullString
	if err := h.db.QueryRowContext(ctx, `SELECT steps FROM runs WHERE id = ?`, id).Scan(&steps); err != nil {
		return nil, fmt.Errorf("failed to get run steps: %w", err)
	}

	run := &model.Run{
		Document:       rec.Document,
		Base:           rec.Base,
		StartedAt:      rec.StartedAt,
		Elapsed:        rec.Elapsed,
		Written:        rec.Written,
		ErrorMessage:   rec.Error,
		PerformedSteps: make([]string, 0),
	}
	if steps.Valid && steps.String != "" {
		if err := json.Unmarshal([]byte(steps.String), &run.PerformedSteps); err != nil {
			return nil, fmt.Errorf("failed to parse run steps: %w", err)
		}
	}

	assets, err := h.assets(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Assets = assets

	return run, nil
}

// assets returns the asset outcomes of a run in document order.
func (h *HistoryDB) assets(ctx context.Context, runID int64) ([]model.AssetResult, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT kind, reference, path, new_reference, new_path, fingerprint, status, reason, original_removed
	FROM assets
	WHERE run_id = ?
	ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assets: %w", err)
	}
	defer rows.Close()

	assets := make([]model.AssetResult, 0)
	for rows.Next() {
		var (
			a                                          model.AssetResult
			kind, status                               string
			path, newRef, newPath, fingerprint, reason sql.NullString
		)
		if err := rows.Scan(&kind, &a.Reference, &path, &newRef, &newPath, &fingerprint, &status, &reason, &a.OriginalRemoved); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		a.Kind = model.Kind(kind)
		a.Status = model.ParseStatus(status)
		a.Path = path.String
		a.NewReference = newRef.String
		a.NewPath = newPath.String
		a.Fingerprint = fingerprint.String
		a.Reason = reason.String
		assets = append(assets, a)
	}

	return assets, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // Format written by SaveRun
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
