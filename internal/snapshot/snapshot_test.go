package snapshot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/threadscan/internal/surface"
)

const page = `<!DOCTYPE html>
<html>
<head><title> Example video </title></head>
<body>
  <div id="list">
    <div class="thread">
      <span class="author">@alice</span>
      <a class="permalink" href="/watch?v=abc&amp;lc=1">1 day ago</a>
      <p class="body">  first comment </p>
    </div>
    <div class="thread">
      <span class="author">@bob</span>
      <p class="body">second comment</p>
    </div>
  </div>
</body>
</html>`

func newTestSurface(t *testing.T) *Surface {
	t.Helper()

	s, err := Load(strings.NewReader(page), WithBaseURL("https://www.youtube.com/watch?v=abc"))
	if err != nil {
		t.Fatalf("failed to load snapshot: %v", err)
	}
	return s
}

// Interface compliance check.
var _ surface.Surface = (*Surface)(nil)

func TestSurfaceRead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("reads trimmed text", func(t *testing.T) {
		t.Parallel()

		s := newTestSurface(t)
		n, err := s.WaitForPresent(ctx, "#list > .thread:nth-child(1) .body", time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		text, err := s.ReadText(ctx, n)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text != "first comment" {
			t.Errorf("got %q", text)
		}
	})

	t.Run("resolves href against the base url", func(t *testing.T) {
		t.Parallel()

		s := newTestSurface(t)
		n, err := s.Locate(ctx, "#list > .thread:nth-child(1) a.permalink")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := s.ReadAttribute(ctx, n, "href"); got != "https://www.youtube.com/watch?v=abc&lc=1" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("missing attribute reads as empty", func(t *testing.T) {
		t.Parallel()

		s := newTestSurface(t)
		n, err := s.Locate(ctx, "#list > .thread:nth-child(2) .body")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := s.ReadAttribute(ctx, n, "href"); got != "" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("title is read from the head", func(t *testing.T) {
		t.Parallel()

		s := newTestSurface(t)
		title, err := s.Title(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if title != "Example video" {
			t.Errorf("got %q", title)
		}
	})
}

func TestSurfaceAbsence(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("absent node times out", func(t *testing.T) {
		t.Parallel()

		s := newTestSurface(t)
		_, err := s.WaitForPresent(ctx, "#list > .thread:nth-child(3) .body", time.Second)
		if !errors.Is(err, surface.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("absent node is not found", func(t *testing.T) {
		t.Parallel()

		s := newTestSurface(t)
		_, err := s.Locate(ctx, "#nothing")
		if !errors.Is(err, surface.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("exists reflects the document", func(t *testing.T) {
		t.Parallel()

		s := newTestSurface(t)
		if !s.Exists(ctx, "#list", 0) {
			t.Error("expected #list to exist")
		}
		if s.Exists(ctx, "#nothing", 0) {
			t.Error("expected #nothing to be absent")
		}
		if s.Exists(ctx, "", 0) {
			t.Error("empty address must not exist")
		}
	})
}

func TestSurfaceLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("clicks are counted", func(t *testing.T) {
		t.Parallel()

		s := newTestSurface(t)
		n, err := s.Locate(ctx, "#list")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := s.Click(ctx, n); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Clicks() != 1 {
			t.Errorf("got %d clicks", s.Clicks())
		}
	})

	t.Run("operations fail after close", func(t *testing.T) {
		t.Parallel()

		s := newTestSurface(t)
		if err := s.Close(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !s.Closed() {
			t.Error("expected Closed() to be true")
		}
		if _, err := s.Locate(ctx, "#list"); !errors.Is(err, surface.ErrClosed) {
			t.Errorf("expected ErrClosed, got %v", err)
		}
		if err := s.Close(); !errors.Is(err, surface.ErrClosed) {
			t.Errorf("expected ErrClosed on second close, got %v", err)
		}
	})

	t.Run("cancelled context is reported", func(t *testing.T) {
		t.Parallel()

		s := newTestSurface(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := s.Locate(cctx, "#list"); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
