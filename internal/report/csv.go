package report

import (
	"encoding/csv"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/nao1215/threadscan/internal/model"
)

// CommentRow is one CSV row. Reply is 0 for the thread itself.
type CommentRow struct {
	Thread    int    `csv:"thread"`
	Reply     int    `csv:"reply"`
	Commenter string `csv:"commenter"`
	Content   string `csv:"comment content"`
	Link      string `csv:"link"`
}

// Rows flattens rec into a thread row followed by one row per reply.
func Rows(thread int, rec model.CommentRecord) []CommentRow {
	rows := make([]CommentRow, 0, rec.Count())
	rows = append(rows, CommentRow{Thread: thread, Commenter: rec.Commenter, Content: rec.Content, Link: rec.Link})
	for i, child := range rec.Children {
		rows = append(rows, CommentRow{
			Thread:    thread,
			Reply:     i + 1,
			Commenter: child.Commenter,
			Content:   child.Content,
			Link:      child.Link,
		})
	}
	return rows
}

// CSVSink writes comments as CSV with a header row.
type CSVSink struct {
	w       *gocsv.SafeCSVWriter
	threads int
	header  bool
	closed  bool
}

// NewCSVSink creates a CSVSink writing to w.
func NewCSVSink(w io.Writer) *CSVSink {
	return &CSVSink{w: gocsv.NewSafeCSVWriter(csv.NewWriter(w))}
}

// Write implements Sink.
func (s *CSVSink) Write(rec model.CommentRecord) error {
	if s.closed {
		return errSinkClosed
	}
	s.threads++
	rows := Rows(s.threads, rec)
	if !s.header {
		s.header = true
		return gocsv.MarshalCSV(&rows, s.w)
	}
	return gocsv.MarshalCSVWithoutHeaders(&rows, s.w)
}

// Close implements Sink. A run without records still gets the header row.
func (s *CSVSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if !s.header {
		s.header = true
		return gocsv.MarshalCSV(&[]CommentRow{}, s.w)
	}
	s.w.Flush()
	return s.w.Error()
}
