package report

import (
	"io"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/threadscan/internal/model"
)

// MarkdownSink writes comments as a Markdown page with one section per
// thread. The page is built in memory and written on Close.
type MarkdownSink struct {
	md      *markdown.Markdown
	threads int
	closed  bool
}

// NewMarkdownSink creates a MarkdownSink writing to w.
func NewMarkdownSink(w io.Writer) *MarkdownSink {
	md := markdown.NewMarkdown(w)
	md.H1("Comments")
	md.PlainText("")
	return &MarkdownSink{md: md}
}

// Write implements Sink.
func (s *MarkdownSink) Write(rec model.CommentRecord) error {
	if s.closed {
		return errSinkClosed
	}
	s.threads++

	s.md.H3(commenterLink(rec))
	s.md.PlainText("")
	s.md.PlainText(quote(rec.Content))
	s.md.PlainText("")

	if len(rec.Children) > 0 {
		replies := make([]string, 0, len(rec.Children))
		for _, child := range rec.Children {
			replies = append(replies, commenterLink(child)+": "+oneLine(child.Content))
		}
		s.md.BulletList(replies...)
		s.md.PlainText("")
	}
	return nil
}

// Close implements Sink.
func (s *MarkdownSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.threads == 0 {
		s.md.PlainText("No comments.")
	}
	return s.md.Build()
}

func commenterLink(rec model.CommentRecord) string {
	name := rec.Commenter
	if name == "" {
		name = "(unknown)"
	}
	if rec.Link == "" {
		return markdown.Bold(name)
	}
	return markdown.Link(markdown.Bold(name), rec.Link)
}

// quote renders text as a block quote, line by line.
func quote(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = "> " + l
	}
	return strings.Join(lines, "\n")
}

func oneLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
