package browser

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nao1215/threadscan/internal/surface"
	"github.com/playwright-community/playwright-go"
)

// Interface compliance checks.
var (
	_ surface.Surface   = (*Surface)(nil)
	_ surface.Navigator = (*Surface)(nil)
	_ surface.Titler    = (*Surface)(nil)
)

func TestClassify(t *testing.T) {
	t.Parallel()

	t.Run("playwright timeout becomes surface timeout", func(t *testing.T) {
		t.Parallel()

		err := classify(fmt.Errorf("locator.waitFor: %w", playwright.ErrTimeout))
		if !errors.Is(err, surface.ErrTimeout) {
			t.Errorf("expected surface.ErrTimeout, got %v", err)
		}
	})

	t.Run("other errors pass through", func(t *testing.T) {
		t.Parallel()

		orig := errors.New("target closed")
		err := classify(orig)
		if errors.Is(err, surface.ErrTimeout) {
			t.Error("unexpected timeout classification")
		}
		if !errors.Is(err, orig) {
			t.Error("original error lost")
		}
	})
}

func TestMilliseconds(t *testing.T) {
	t.Parallel()

	t.Run("uses the timeout without a context deadline", func(t *testing.T) {
		t.Parallel()

		if got := milliseconds(context.Background(), 20*time.Second); got != 20000 {
			t.Errorf("got %v", got)
		}
	})

	t.Run("shortens to the context deadline", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if got := milliseconds(ctx, time.Minute); got > 1000 {
			t.Errorf("got %v, want at most 1000", got)
		}
	})

	t.Run("never returns less than one millisecond", func(t *testing.T) {
		t.Parallel()

		if got := milliseconds(context.Background(), 0); got != 1 {
			t.Errorf("got %v", got)
		}
	})
}

func TestOptions(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		o := defaultOptions()
		if !o.headless {
			t.Error("expected headless by default")
		}
		if o.viewportWidth != DefaultViewportWidth || o.viewportHeight != DefaultViewportHeight {
			t.Errorf("unexpected viewport %dx%d", o.viewportWidth, o.viewportHeight)
		}
		if o.clickInterval != DefaultClickInterval {
			t.Errorf("unexpected click interval %v", o.clickInterval)
		}
	})

	t.Run("invalid values keep defaults", func(t *testing.T) {
		t.Parallel()

		o := defaultOptions()
		for _, opt := range []Option{
			WithViewport(0, 100),
			WithClickInterval(-time.Second),
			WithNavigationTimeout(0),
			WithActionTimeout(-1),
			WithLocale(""),
			WithLogger(nil),
		} {
			opt(&o)
		}
		if o.viewportWidth != DefaultViewportWidth {
			t.Errorf("viewport changed to %d", o.viewportWidth)
		}
		if o.clickInterval != DefaultClickInterval {
			t.Errorf("click interval changed to %v", o.clickInterval)
		}
		if o.navigationTimeout != DefaultNavigationTimeout {
			t.Errorf("navigation timeout changed to %v", o.navigationTimeout)
		}
		if o.locale != "en-US" || o.logger == nil {
			t.Error("locale or logger changed")
		}
	})

	t.Run("valid values are applied", func(t *testing.T) {
		t.Parallel()

		o := defaultOptions()
		WithHeadless(false)(&o)
		WithClickInterval(0)(&o)
		WithViewport(800, 600)(&o)
		WithScrollOffset(0)(&o)
		if o.headless || o.clickInterval != 0 || o.viewportWidth != 800 || o.scrollOffset != 0 {
			t.Errorf("options not applied: %+v", o)
		}
	})
}
