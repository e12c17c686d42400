package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/hashstatic/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// statusOrder is the order statuses are listed in.
var statusOrder = []model.Status{
	model.StatusRenamed,
	model.StatusUnchanged,
	model.StatusSkipped,
	model.StatusFailed,
}

// MarkdownWriter outputs reports in GitHub Flavored Markdown, for pasting
// into pull requests and CI summaries.
type MarkdownWriter struct {
	baseWriter

	info  Info
	title cases.Caser
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, info Info) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		info:       info,
		title:      cases.Title(language.English),
	}
}

// Write outputs the report of a single run.
func (w *MarkdownWriter) Write(run *model.Run) (int, error) {
	return w.WriteBatch([]*model.Run{run})
}

// WriteBatch outputs one report covering all runs.
func (w *MarkdownWriter) WriteBatch(runs []*model.Run) (int, error) {
	runs = started(runs)
	md := markdown.NewMarkdown(w.output)

	md.H1("hashstatic Report")
	md.PlainText("")

	counts := totalCounts(runs)
	w.writeSummary(md, runs, counts)
	w.writeAlert(md, runs, counts)

	for _, run := range runs {
		w.writeRun(md, run, len(runs) > 1)
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func totalCounts(runs []*model.Run) map[model.Status]int {
	total := make(map[model.Status]int, len(statusOrder))
	for _, run := range runs {
		for status, n := range run.Counts() {
			total[status] += n
		}
	}
	return total
}

// writeSummary writes the run properties and status counts.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, runs []*model.Run, counts map[model.Status]int) {
	rows := [][]string{
		{"Algorithm", "`" + w.info.Algorithm + "`"},
		{"Documents", strconv.Itoa(len(runs))},
	}
	if len(runs) == 1 {
		rows = append(rows,
			[]string{"Document", "`" + runs[0].Document + "`"},
			[]string{"Base Directory", "`" + runs[0].Base + "`"},
			[]string{"Elapsed", runs[0].Elapsed.String()},
			[]string{"Status", statusText(runs[0])},
		)
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	md.H2("Summary")
	md.PlainText("")

	total := 0
	countRows := make([][]string, 0, len(statusOrder)+1)
	for _, status := range statusOrder {
		countRows = append(countRows, []string{w.title.String(status.String()), strconv.Itoa(counts[status])})
		total += counts[status]
	}
	countRows = append(countRows, []string{"**Total**", "**" + strconv.Itoa(total) + "**"})
	md.Table(markdown.TableSet{
		Header: []string{"Status", "Assets"},
		Rows:   countRows,
	})
	md.PlainText("")

	if total > 0 {
		w.writePieChart(md, counts)
	}
}

// writePieChart writes a mermaid pie chart of asset outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, counts map[model.Status]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Asset Outcomes"),
		piechart.WithShowData(true),
	)

	for _, status := range statusOrder {
		if n := counts[status]; n > 0 {
			chart.LabelAndIntValue(w.title.String(status.String()), uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert summarising whether the documents are safe to ship.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, runs []*model.Run, counts map[model.Status]int) {
	failed := 0
	for _, run := range runs {
		if run.Failed() {
			failed++
		}
	}

	switch {
	case failed > 0:
		md.Cautionf("%d document(s) were not rewritten. Fingerprinted copies may already exist and originals may be gone.", failed)
	case counts[model.StatusSkipped] > 0:
		md.Warningf("%d reference(s) were left untouched and will not be cache-busted.", counts[model.StatusSkipped])
	case counts[model.StatusRenamed] == 0 && counts[model.StatusUnchanged] == 0:
		md.Note("No script or stylesheet references were found.")
	default:
		md.Tip("Every referenced asset is fingerprinted.")
	}
	md.PlainText("")
}

// writeRun writes the asset table of one run.
func (w *MarkdownWriter) writeRun(md *markdown.Markdown, run *model.Run, heading bool) {
	if heading {
		md.H2(run.Document)
	} else {
		md.H2("Assets")
	}
	md.PlainText("")

	if heading && run.Failed() {
		md.PlainText(statusText(run))
		md.PlainText("")
	}

	if len(run.Assets) == 0 {
		md.PlainText("No assets referenced.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(run.Assets))
	for i, a := range run.Assets {
		rows[i] = []string{
			w.title.String(a.Kind.String()),
			code(a.Reference),
			code(a.NewReference),
			code(a.Fingerprint),
			w.title.String(a.Status.String()),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Kind", "Reference", "New Reference", "Fingerprint", "Status"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, a := range run.Assets {
		if a.Reason != "" {
			md.Details(a.Reference, a.Reason)
		}
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [hashstatic %s](https://github.com/nao1215/hashstatic)*", w.info.Version)
}

// statusText returns the status text of a run.
func statusText(run *model.Run) string {
	if run.Failed() {
		return "❌ Error - " + run.ErrorMessage
	}
	if run.Written {
		return "✅ Rewritten"
	}
	return "⚠️ Not written"
}

// code formats s as inline code, or "-" when empty.
// Pipes are escaped so they do not split table cells.
func code(s string) string {
	if s == "" {
		return "-"
	}
	return "`" + strings.ReplaceAll(s, "|", `\|`) + "`"
}
