package source

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/nao1215/threadscan/internal/address"
	"github.com/nao1215/threadscan/internal/surface"
	"github.com/nao1215/threadscan/internal/traverse"
	"golang.org/x/net/publicsuffix"
)

// Variant describes one kind of source.
type Variant struct {
	// Name identifies the variant in logs, reports and the history database.
	Name string

	// Recognize reports whether ref is a source of this kind.
	Recognize func(ref string) bool

	// Scheme addresses the threads and replies of the page.
	Scheme address.Scheme

	// Start builds the start hook for ref. Nil means no preparation.
	Start func(ref string) traverse.StartFunc

	// Timeouts overrides the engine's default wait bounds.
	Timeouts traverse.Timeouts
}

// NewEngine creates a traversal engine for ref over s. opts are applied after
// the variant's own options, so callers can override them.
func (v Variant) NewEngine(ref string, s surface.Surface, opts ...traverse.Option) *traverse.Engine {
	base := []traverse.Option{traverse.WithTimeouts(v.Timeouts)}
	if v.Start != nil {
		base = append(base, traverse.WithStart(v.Start(ref)))
	}
	return traverse.New(s, v.Scheme, append(base, opts...)...)
}

// youtubeDomain is the registrable domain every recognized reference must use.
const youtubeDomain = "youtube.com"

// youtubePath parses ref and returns the part after the host: the path
// without its leading slash, followed by the query when present. It returns
// false unless ref is an https URL on a youtube.com host with a non-empty
// tail that contains no dots or whitespace.
func youtubePath(ref string) (string, bool) {
	if strings.IndexFunc(ref, unicode.IsSpace) >= 0 {
		return "", false
	}
	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "https" || u.User != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil || domain != youtubeDomain {
		return "", false
	}

	tail := strings.TrimPrefix(u.EscapedPath(), "/")
	if u.RawQuery != "" {
		tail += "?" + u.RawQuery
	}
	if tail == "" || strings.Contains(tail, ".") {
		return "", false
	}
	return tail, true
}

// navigate loads ref when s can navigate. Snapshots are already loaded.
func navigate(ctx context.Context, s surface.Surface, ref string) error {
	if nav, ok := s.(surface.Navigator); ok {
		return nav.Navigate(ctx, ref)
	}
	return nil
}

// pageTitle returns the surface's own title when it can report one.
func pageTitle(ctx context.Context, s surface.Surface) string {
	if t, ok := s.(surface.Titler); ok {
		if title, err := t.Title(ctx); err == nil {
			return strings.TrimSpace(title)
		}
	}
	return ""
}

// parseCount extracts a comment count such as "1,234" from text.
// It returns -1 when text holds no digits.
func parseCount(text string) int {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return -1
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return -1
	}
	return n
}
