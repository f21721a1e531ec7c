package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/threadscan/internal/address"
	"github.com/nao1215/threadscan/internal/surface"
	"golang.org/x/net/html"
)

// Surface is a read-only surface backed by a parsed HTML document.
type Surface struct {
	doc     *goquery.Document
	baseURL *url.URL
	logger  *slog.Logger

	mu     sync.Mutex
	closed bool
	clicks int
	reads  int
}

// node is the handle returned by Locate and WaitForPresent.
type node struct {
	sel  *goquery.Selection
	addr address.Address
}

// Option configures a Surface.
type Option func(*Surface)

// WithBaseURL sets the URL that relative href attributes are resolved against.
func WithBaseURL(raw string) Option {
	return func(s *Surface) {
		if u, err := url.Parse(raw); err == nil {
			s.baseURL = u
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Surface) {
		s.logger = logger
	}
}

// Load parses an HTML document from r.
func Load(r io.Reader, opts ...Option) (*Surface, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	s := &Surface{
		doc:    goquery.NewDocumentFromNode(root),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Open parses the HTML document stored at path.
func Open(path string, opts ...Option) (*Surface, error) {
	f, err := os.Open(path) //nolint:gosec // path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	return Load(f, opts...)
}

// Locate implements surface.Surface.
func (s *Surface) Locate(ctx context.Context, addr address.Address) (surface.Node, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	sel := s.doc.Find(addr.String()).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", surface.ErrNotFound, addr)
	}
	return node{sel: sel, addr: addr}, nil
}

// WaitForPresent implements surface.Surface. A snapshot cannot change, so an
// absent node times out immediately.
func (s *Surface) WaitForPresent(ctx context.Context, addr address.Address, _ time.Duration) (surface.Node, error) {
	n, err := s.Locate(ctx, addr)
	if err != nil {
		if errors.Is(err, surface.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", surface.ErrTimeout, addr)
		}
		return nil, err
	}
	return n, nil
}

// Exists implements surface.Surface.
func (s *Surface) Exists(ctx context.Context, addr address.Address, _ time.Duration) bool {
	if addr.Empty() || s.check(ctx) != nil {
		return false
	}
	return s.doc.Find(addr.String()).Length() > 0
}

// ReadText implements surface.Surface.
func (s *Surface) ReadText(ctx context.Context, n surface.Node) (string, error) {
	if err := s.check(ctx); err != nil {
		return "", err
	}
	nd, ok := n.(node)
	if !ok {
		return "", surface.ErrStaleNode
	}

	s.mu.Lock()
	s.reads++
	s.mu.Unlock()

	return strings.TrimSpace(nd.sel.Text()), nil
}

// ReadAttribute implements surface.Surface. href values are resolved against
// the base URL when one is set.
func (s *Surface) ReadAttribute(ctx context.Context, n surface.Node, name string) string {
	if s.check(ctx) != nil {
		return ""
	}
	nd, ok := n.(node)
	if !ok {
		return ""
	}
	value, ok := nd.sel.Attr(name)
	if !ok {
		return ""
	}
	if name == "href" {
		return surface.ResolveReference(s.baseURL, value)
	}
	return value
}

// Click implements surface.Surface. The click is recorded and has no effect.
func (s *Surface) Click(ctx context.Context, n surface.Node) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	nd, ok := n.(node)
	if !ok {
		return surface.ErrStaleNode
	}

	s.mu.Lock()
	s.clicks++
	s.mu.Unlock()

	s.logger.Debug("ignoring click on snapshot", "address", nd.addr)
	return nil
}

// ScrollIntoView implements surface.Surface. Snapshots have no viewport.
func (s *Surface) ScrollIntoView(ctx context.Context, _ surface.Node) error {
	return s.check(ctx)
}

// Title returns the text of the document's <title> element.
func (s *Surface) Title(ctx context.Context) (string, error) {
	if err := s.check(ctx); err != nil {
		return "", err
	}
	return strings.TrimSpace(s.doc.Find("title").First().Text()), nil
}

// Close implements surface.Surface. Closing twice returns surface.ErrClosed.
func (s *Surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return surface.ErrClosed
	}
	s.closed = true
	return nil
}

// Clicks returns how many clicks the surface received.
func (s *Surface) Clicks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clicks
}

// Closed reports whether Close has been called.
func (s *Surface) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Surface) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return surface.ErrClosed
	}
	return nil
}
