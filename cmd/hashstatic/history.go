package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/hashstatic/internal/config"
	"github.com/nao1215/hashstatic/internal/database"
	"github.com/nao1215/hashstatic/internal/model"
	"github.com/nao1215/hashstatic/internal/report"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
// This command shows the runs recorded in the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [document]",
		Short: "Show previous fingerprinting runs",
		Long: `History displays the runs recorded in the history database.

Every run is recorded unless --no-history is given, including runs that
failed. The database lives in the XDG data directory by default.

Examples:
  # List every recorded run, newest first
  hashstatic history

  # List the runs of one document
  hashstatic history public/index.html

  # List all documents in the database
  hashstatic history --list-documents

  # Show the assets of a specific run
  hashstatic history --id 5

  # Output a specific run as a JSON manifest
  hashstatic history --id 5 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	// Listing flags
	cmd.Flags().BoolP("list-documents", "L", false,
		"List all documents in the database")

	// Run selection flags
	cmd.Flags().Int64P("id", "i", 0,
		"Show a specific run by ID (see the listing for available IDs)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output the selected run as a JSON manifest")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output the selected run as a Markdown report")

	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listDocuments, err := cmd.Flags().GetBool("list-documents")
	if err != nil {
		return err
	}

	id, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}
	if (jsonOutput || markdownOutput) && id == 0 {
		return errors.New("--json and --markdown require --id")
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case listDocuments:
		return listRecordedDocuments(ctx, out, db)
	case id != 0:
		var w func(info report.Info) report.Writer
		switch {
		case jsonOutput:
			w = func(info report.Info) report.Writer {
				return report.NewJSONWriter(out, info, report.WithPrettyPrint())
			}
		case markdownOutput:
			w = func(info report.Info) report.Writer {
				return report.NewMarkdownWriter(out, info)
			}
		default:
			w = func(report.Info) report.Writer {
				return report.NewSimpleWriter(out, report.WithShowTime(true), report.WithShowSkipped(true))
			}
		}
		return showRun(ctx, out, db, id, w)
	default:
		var document string
		if len(args) > 0 {
			document = args[0]
		}
		return listRunHistory(ctx, out, db, document)
	}
}

// listRecordedDocuments lists every document that has at least one run.
func listRecordedDocuments(ctx context.Context, out io.Writer, db *database.HistoryDB) error {
	documents, err := db.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(documents) == 0 {
		fmt.Fprintln(out, "No documents found in the database.")
		fmt.Fprintln(out, "\nUse 'hashstatic <document>' to fingerprint a document.")
		return nil
	}

	fmt.Fprintf(out, "Documents (%d):\n\n", len(documents))
	for _, document := range documents {
		fmt.Fprintf(out, "  • %s\n", document)
	}
	fmt.Fprintln(out, "\nUse 'hashstatic history <document>' to see the runs of a document.")

	return nil
}

// listRunHistory lists the runs of document, or of every document when
// document is empty.
func listRunHistory(ctx context.Context, out io.Writer, db *database.HistoryDB, document string) error {
	records, err := db.ListRuns(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}

	if len(records) == 0 {
		if document != "" {
			fmt.Fprintf(out, "No run history found for %s\n", document)
		} else {
			fmt.Fprintln(out, "No run history found.")
		}
		fmt.Fprintln(out, "\nUse 'hashstatic <document>' to fingerprint a document.")
		return nil
	}

	if document != "" {
		fmt.Fprintf(out, "Run history for %s (%d runs):\n\n", document, len(records))
	} else {
		fmt.Fprintf(out, "Run history (%d runs):\n\n", len(records))
	}
	fmt.Fprintf(out, "  %-6s  %-20s  %-7s  %-30s  %s\n", "ID", "Date", "Algo", "Summary", "Document")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 80))

	for _, rec := range records {
		fmt.Fprintf(out, "  %-6d  %-20s  %-7s  %-30s  %s\n",
			rec.ID,
			rec.StartedAt.Local().Format("2006-01-02 15:04:05"),
			rec.Algorithm,
			formatSummary(rec),
			rec.Document,
		)
	}

	fmt.Fprintln(out, "\nUse 'hashstatic history --id <id>' to see the assets of a run.")

	return nil
}

// showRun writes a stored run with the writer built by newWriter.
func showRun(ctx context.Context, out io.Writer, db *database.HistoryDB, id int64, newWriter func(report.Info) report.Writer) error {
	rec, err := db.GetRecord(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	run, err := db.GetRun(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	info := report.Info{
		Version:   getVersion(),
		Algorithm: rec.Algorithm,
	}
	_, err = newWriter(info).Write(run)
	return err
}

// formatSummary formats the per-status counts of a run into a short
// human-readable string.
func formatSummary(rec database.RunRecord) string {
	if rec.Error != "" {
		return "error"
	}

	var parts []string
	for _, s := range []struct {
		status model.Status
		label  string
	}{
		{model.StatusRenamed, "R"},
		{model.StatusUnchanged, "U"},
		{model.StatusSkipped, "S"},
		{model.StatusFailed, "F"},
	} {
		if v := rec.Counts[s.status]; v > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", s.label, v))
		}
	}

	if len(parts) == 0 {
		return "no assets"
	}
	return strings.Join(parts, " ")
}
