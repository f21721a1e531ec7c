package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/threadscan/internal/model"
)

// ErrUnknownFormat is returned when no sink exists for a format.
var ErrUnknownFormat = errors.New("unknown output format")

// Sink receives emitted comment records.
// Close finishes the document; no Write may follow it.
type Sink interface {
	Write(rec model.CommentRecord) error
	Close() error
}

// Format names accepted by NewSink.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

// NewSink creates the sink for format writing to w.
func NewSink(w io.Writer, format string) (Sink, error) {
	switch format {
	case FormatJSON, "":
		return NewJSONSink(w), nil
	case FormatCSV:
		return NewCSVSink(w), nil
	case FormatMarkdown:
		return NewMarkdownSink(w), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// fileSink closes the underlying file after the formatting sink.
type fileSink struct {
	Sink
	file *os.File
}

func (f *fileSink) Close() error {
	return errors.Join(f.Sink.Close(), f.file.Close())
}

// CreateFile creates path, along with missing parent directories, and
// returns a sink for format writing to it.
func CreateFile(path, format string) (Sink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	s, err := NewSink(f, format)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &fileSink{Sink: s, file: f}, nil
}

// MultiSink writes every record to several sinks.
// Write stops at the first error; Close closes every sink.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink creates a Sink that writes to all provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Write implements Sink.
func (m *MultiSink) Write(rec model.CommentRecord) error {
	for _, s := range m.sinks {
		if err := s.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// Close implements Sink.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

// Collector keeps every record in memory.
type Collector struct {
	Records []model.CommentRecord
	closed  bool
}

// Write implements Sink.
func (c *Collector) Write(rec model.CommentRecord) error {
	c.Records = append(c.Records, rec)
	return nil
}

// Close implements Sink.
func (c *Collector) Close() error {
	c.closed = true
	return nil
}

// Document returns the collected records as a document.
func (c *Collector) Document() *model.Document {
	return model.NewDocument(c.Records...)
}
