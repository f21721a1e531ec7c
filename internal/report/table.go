package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/threadscan/internal/database"
	"github.com/nao1215/threadscan/internal/model"
	"github.com/rodaine/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TableWriter prints run summaries and history listings as aligned tables.
type TableWriter struct {
	output io.Writer
}

// NewTableWriter creates a TableWriter that outputs to the given writer.
func NewTableWriter(output io.Writer) *TableWriter {
	return &TableWriter{output: output}
}

func (w *TableWriter) newTable(headers ...any) table.Table {
	return table.New(headers...).WithWriter(w.output)
}

// WriteRun prints the summary of one run.
func (w *TableWriter) WriteRun(run *model.Run) {
	tbl := w.newTable("Property", "Value")
	for _, row := range runRows(run) {
		tbl.AddRow(row[0], row[1])
	}
	tbl.Print()
}

// WriteRuns prints one line per run.
func (w *TableWriter) WriteRuns(runs []*model.Run) {
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(w.output, "No runs recorded.")
		return
	}
	tbl := w.newTable("ID", "Started", "Variant", "Comments", "Threads", "Replies", "Ended", "Duration")
	for _, r := range runs {
		tbl.AddRow(r.ID, formatTime(r.StartedAt), VariantTitle(r.Variant), r.Emitted, r.Threads, r.Replies,
			r.EndReason.String(), r.Duration().Round(time.Second))
	}
	tbl.Print()
}

// WriteSources prints the sources stored in the history database.
func (w *TableWriter) WriteSources(sources []database.SourceSummary) {
	if len(sources) == 0 {
		_, _ = fmt.Fprintln(w.output, "No sources recorded.")
		return
	}
	tbl := w.newTable("Source", "Variant", "Runs", "Last Run")
	for _, s := range sources {
		tbl.AddRow(s.Source, VariantTitle(s.Variant), s.Runs, formatTime(s.LastRun))
	}
	tbl.Print()
}

// WriteDiff prints the comments added between two runs.
func (w *TableWriter) WriteDiff(d *database.Diff) {
	_, _ = fmt.Fprintf(w.output, "Run %d (%s) vs run %d (%s): %d new comment(s)\n",
		d.Latest.ID, formatTime(d.Latest.StartedAt),
		d.Previous.ID, formatTime(d.Previous.StartedAt),
		len(d.Added))
	if len(d.Added) == 0 {
		return
	}
	tbl := w.newTable("Thread", "Reply", "Commenter", "Comment")
	for _, c := range d.Added {
		reply := "-"
		if c.IsReply() {
			reply = strconv.Itoa(c.Reply)
		}
		tbl.AddRow(c.Thread, reply, c.Commenter, truncateString(oneLine(c.Content), 60))
	}
	tbl.Print()
}

// runRows lists the summary properties of a run in display order.
func runRows(run *model.Run) [][2]string {
	limit := "none"
	if run.Limit != nil {
		limit = strconv.Itoa(*run.Limit)
	}
	deadline := "none"
	if run.Deadline > 0 {
		deadline = run.Deadline.String()
	}
	advertised := "unknown"
	if run.AdvertisedCount >= 0 {
		advertised = strconv.Itoa(run.AdvertisedCount)
	}
	pattern := run.Pattern
	if pattern == "" {
		pattern = "none"
	}

	rows := [][2]string{
		{"Source", run.Source},
		{"Variant", VariantTitle(run.Variant)},
		{"Title", run.PageTitle},
		{"Advertised Comments", advertised},
		{"Limit", limit},
		{"Deadline", deadline},
		{"Pattern", pattern},
		{"Parsed", strconv.Itoa(run.Parsed)},
		{"Emitted", strconv.Itoa(run.Emitted)},
		{"Threads", strconv.Itoa(run.Threads)},
		{"Replies", strconv.Itoa(run.Replies)},
		{"Suppressed Threads", strconv.Itoa(run.Suppressed)},
		{"Ended", run.EndReason.String()},
		{"Duration", run.Duration().Round(time.Millisecond).String()},
	}
	if run.Output != "" {
		rows = append(rows, [2]string{"Output", run.Output})
	}
	if run.Error != "" {
		rows = append(rows, [2]string{"Error", run.Error})
	}
	return rows
}

// VariantTitle returns the display name of a variant, such as "Shorts".
func VariantTitle(name string) string {
	if name == "" {
		return "-"
	}
	return cases.Title(language.English).String(name)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// truncateString truncates s to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
