package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"

	"github.com/nao1215/threadscan/internal/model"
)

// errSinkClosed is returned by Write after Close.
var errSinkClosed = errors.New("sink is closed")

// JSONSink streams the {"comments": [...]} document.
// Each record is encoded as soon as it arrives, so the array is never held
// in memory.
type JSONSink struct {
	w      *bufio.Writer
	indent string
	count  int
	closed bool
	err    error

	marshal func(any) ([]byte, error)
}

// JSONSinkOption configures a JSONSink.
type JSONSinkOption func(*JSONSink)

// WithIndent sets the indentation of each nesting level. The default is two
// spaces; an empty string writes one record per line.
func WithIndent(indent string) JSONSinkOption {
	return func(s *JSONSink) {
		s.indent = indent
	}
}

// NewJSONSink creates a JSONSink writing to w.
func NewJSONSink(w io.Writer, opts ...JSONSinkOption) *JSONSink {
	s := &JSONSink{w: bufio.NewWriter(w), indent: "  "}
	for _, opt := range opts {
		opt(s)
	}
	s.marshal = json.Marshal
	if s.indent != "" {
		s.marshal = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, s.indent, s.indent)
		}
	}
	return s
}

func (s *JSONSink) write(str string) {
	if s.err == nil {
		_, s.err = s.w.WriteString(str)
	}
}

// Write implements Sink. A record that cannot be encoded leaves the document
// untouched.
func (s *JSONSink) Write(rec model.CommentRecord) error {
	if s.closed {
		return errSinkClosed
	}
	data, err := s.marshal(rec)
	if err != nil {
		return err
	}

	if s.count == 0 {
		s.write(`{"comments": [`)
	} else {
		s.write(",")
	}
	s.write("\n" + s.indent)
	s.write(string(data))
	s.count++
	if s.err == nil {
		s.err = s.w.Flush()
	}
	return s.err
}

// Close implements Sink. It terminates the document; an empty run produces
// {"comments": []}.
func (s *JSONSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.count == 0 {
		s.write(`{"comments": []}` + "\n")
	} else {
		s.write("\n]}\n")
	}
	if s.err == nil {
		s.err = s.w.Flush()
	}
	return s.err
}

// Count returns the number of records written.
func (s *JSONSink) Count() int {
	return s.count
}
