// Package report writes scraped comments and run summaries.
//
// Comment documents are written through a Sink, which receives records one
// at a time as the traversal emits them:
//   - JSONSink: the {"comments": [...]} document, streamed record by record
//   - CSVSink: one row per comment with replies flattened below their thread
//   - MarkdownSink: a readable page with one section per thread
//
// Run summaries and history listings are printed by TableWriter (terminal)
// and MarkdownSummaryWriter (GitHub flavored Markdown).
package report
