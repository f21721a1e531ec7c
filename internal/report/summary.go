package report

import (
	"fmt"
	"io"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/threadscan/internal/model"
)

// MarkdownSummaryWriter writes a run summary in GitHub flavored Markdown.
type MarkdownSummaryWriter struct {
	output io.Writer
}

// NewMarkdownSummaryWriter creates a MarkdownSummaryWriter that outputs to the given writer.
func NewMarkdownSummaryWriter(output io.Writer) *MarkdownSummaryWriter {
	return &MarkdownSummaryWriter{output: output}
}

// WriteRun writes the summary of one run.
func (w *MarkdownSummaryWriter) WriteRun(run *model.Run) error {
	md := markdown.NewMarkdown(w.output)

	md.H1("threadscan Run Summary")
	md.PlainText("")

	rows := runRows(run)
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		value := r[1]
		if r[0] == "Source" {
			value = "`" + value + "`"
		}
		tableRows = append(tableRows, []string{r[0], value})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   tableRows,
	})
	md.PlainText("")

	if run.Threads > 0 {
		w.writePieChart(md, run)
	}
	w.writeAlert(md, run)

	return md.Build()
}

// writePieChart writes a mermaid pie chart of threads versus replies.
func (w *MarkdownSummaryWriter) writePieChart(md *markdown.Markdown, run *model.Run) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Comments Read"),
		piechart.WithShowData(true),
	)
	chart.LabelAndIntValue("Threads", uint64(run.Threads)) //nolint:gosec // counts are never negative
	if run.Replies > 0 {
		chart.LabelAndIntValue("Replies", uint64(run.Replies)) //nolint:gosec // counts are never negative
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert describing how the run ended.
func (w *MarkdownSummaryWriter) writeAlert(md *markdown.Markdown, run *model.Run) {
	switch run.EndReason {
	case model.EndReasonFault:
		md.Cautionf("The run stopped on an error after %d comment(s): %s", run.Parsed, run.Error)
	case model.EndReasonCancelled:
		md.Warningf("The run was interrupted after %d comment(s). The output is partial.", run.Parsed)
	case model.EndReasonDeadline:
		md.Importantf("The time limit of %s was reached after %d comment(s).", run.Deadline, run.Parsed)
	case model.EndReasonCount:
		md.Note(fmt.Sprintf("The limit of %d comment(s) was reached.", run.Parsed))
	default:
		md.Tip("Every comment that rendered was read.")
	}
	md.PlainText("")
}
