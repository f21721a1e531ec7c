package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/nao1215/threadscan/internal/address"
	"github.com/nao1215/threadscan/internal/surface"
	"github.com/playwright-community/playwright-go"
	"golang.org/x/time/rate"
)

// Surface is a live Chromium page.
type Surface struct {
	pw         *playwright.Playwright
	browser    playwright.Browser
	browserCtx playwright.BrowserContext
	page       playwright.Page

	limiter *rate.Limiter
	opts    options
	logger  *slog.Logger

	closeOnce sync.Once
	closeErr  error
	closed    bool
	mu        sync.Mutex
}

// node is the handle returned by Locate and WaitForPresent.
type node struct {
	loc  playwright.Locator
	addr address.Address
}

// Launch starts Playwright, a Chromium browser and a single page.
func Launch(ctx context.Context, opts ...Option) (*Surface, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.logger.Debug("starting playwright", "headless", o.headless, "skipInstall", o.skipInstall)

	pw, err := playwright.Run(&playwright.RunOptions{
		SkipInstallBrowsers: o.skipInstall,
		Browsers:            []string{"chromium"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: could not start playwright: %w", ErrLaunch, err)
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(o.headless),
	})
	if err != nil {
		_ = pw.Stop() //nolint:errcheck // Best effort cleanup
		return nil, fmt.Errorf("%w: could not launch chromium: %w", ErrLaunch, err)
	}

	bctx, err := b.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  o.viewportWidth,
			Height: o.viewportHeight,
		},
		Locale: playwright.String(o.locale),
	})
	if err != nil {
		_ = b.Close() //nolint:errcheck // Best effort cleanup
		_ = pw.Stop() //nolint:errcheck // Best effort cleanup
		return nil, fmt.Errorf("%w: could not create context: %w", ErrLaunch, err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close() //nolint:errcheck // Best effort cleanup
		_ = b.Close()    //nolint:errcheck // Best effort cleanup
		_ = pw.Stop()    //nolint:errcheck // Best effort cleanup
		return nil, fmt.Errorf("%w: could not create page: %w", ErrLaunch, err)
	}
	page.SetDefaultTimeout(float64(o.actionTimeout.Milliseconds()))

	limit := rate.Inf
	if o.clickInterval > 0 {
		limit = rate.Every(o.clickInterval)
	}

	return &Surface{
		pw:         pw,
		browser:    b,
		browserCtx: bctx,
		page:       page,
		limiter:    rate.NewLimiter(limit, 1),
		opts:       o,
		logger:     o.logger,
	}, nil
}

// Navigate loads ref and waits for the DOM to be ready.
func (s *Surface) Navigate(ctx context.Context, ref string) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	s.logger.Debug("navigating", "url", ref)
	resp, err := s.page.Goto(ref, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(milliseconds(ctx, s.opts.navigationTimeout)),
	})
	if err != nil {
		return fmt.Errorf("%w to %s: %w", ErrNavigation, ref, err)
	}
	if resp != nil && resp.Status() >= 400 {
		return fmt.Errorf("%w to %s: status %d", ErrNavigation, ref, resp.Status())
	}
	return nil
}

// Title returns the current page title.
func (s *Surface) Title(ctx context.Context) (string, error) {
	if err := s.check(ctx); err != nil {
		return "", err
	}
	return s.page.Title()
}

// Locate implements surface.Surface.
func (s *Surface) Locate(ctx context.Context, addr address.Address) (surface.Node, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	loc := s.page.Locator(addr.String()).First()
	count, err := loc.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count %s: %w", addr, classify(err))
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: %s", surface.ErrNotFound, addr)
	}
	return node{loc: loc, addr: addr}, nil
}

// WaitForPresent implements surface.Surface.
func (s *Surface) WaitForPresent(ctx context.Context, addr address.Address, timeout time.Duration) (surface.Node, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	loc := s.page.Locator(addr.String()).First()
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(milliseconds(ctx, timeout)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to wait for %s: %w", addr, classify(err))
	}
	return node{loc: loc, addr: addr}, nil
}

// Exists implements surface.Surface.
func (s *Surface) Exists(ctx context.Context, addr address.Address, timeout time.Duration) bool {
	if addr.Empty() || s.check(ctx) != nil {
		return false
	}
	loc := s.page.Locator(addr.String()).First()
	if timeout <= 0 {
		count, err := loc.Count()
		return err == nil && count > 0
	}
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(milliseconds(ctx, timeout)),
	})
	return err == nil
}

// ReadText implements surface.Surface.
func (s *Surface) ReadText(ctx context.Context, n surface.Node) (string, error) {
	nd, err := s.node(ctx, n)
	if err != nil {
		return "", err
	}
	text, err := nd.loc.InnerText()
	if err != nil {
		return "", fmt.Errorf("failed to read text of %s: %w", nd.addr, classify(err))
	}
	return text, nil
}

// ReadAttribute implements surface.Surface. href values are resolved against
// the page URL, matching the anchor's href property.
func (s *Surface) ReadAttribute(ctx context.Context, n surface.Node, name string) string {
	nd, err := s.node(ctx, n)
	if err != nil {
		return ""
	}
	value, err := nd.loc.GetAttribute(name)
	if err != nil {
		s.logger.Debug("attribute unavailable", "address", nd.addr, "name", name, "error", err)
		return ""
	}
	if name == "href" {
		base, err := url.Parse(s.page.URL())
		if err != nil {
			return value
		}
		return surface.ResolveReference(base, value)
	}
	return value
}

// Click implements surface.Surface. It waits for the click limiter first.
func (s *Surface) Click(ctx context.Context, n surface.Node) error {
	nd, err := s.node(ctx, n)
	if err != nil {
		return err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	if err := nd.loc.Click(); err != nil {
		return fmt.Errorf("failed to click %s: %w", nd.addr, classify(err))
	}
	return nil
}

// ScrollIntoView implements surface.Surface. After scrolling, the viewport is
// moved up by the configured offset.
func (s *Surface) ScrollIntoView(ctx context.Context, n surface.Node) error {
	nd, err := s.node(ctx, n)
	if err != nil {
		return err
	}
	if err := nd.loc.ScrollIntoViewIfNeeded(); err != nil {
		return fmt.Errorf("failed to scroll to %s: %w", nd.addr, classify(err))
	}
	if s.opts.scrollOffset != 0 {
		if err := s.page.Mouse().Wheel(0, -s.opts.scrollOffset); err != nil {
			return fmt.Errorf("failed to offset scroll: %w", classify(err))
		}
	}
	return nil
}

// Close implements surface.Surface. It closes the page context, the browser
// and the driver. Only the first call does any work.
func (s *Surface) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		var errs []error
		if err := s.browserCtx.Close(); err != nil {
			errs = append(errs, fmt.Errorf("could not close context: %w", err))
		}
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("could not close browser: %w", err))
		}
		if err := s.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("could not stop playwright: %w", err))
		}
		s.closeErr = errors.Join(errs...)
		s.logger.Debug("browser closed", "error", s.closeErr)
	})
	return s.closeErr
}

func (s *Surface) node(ctx context.Context, n surface.Node) (node, error) {
	if err := s.check(ctx); err != nil {
		return node{}, err
	}
	nd, ok := n.(node)
	if !ok {
		return node{}, surface.ErrStaleNode
	}
	return nd, nil
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

// classify maps Playwright's timeout error onto surface.ErrTimeout.
func classify(err error) error {
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %w", surface.ErrTimeout, err)
	}
	return err
}

// milliseconds converts timeout to Playwright's millisecond unit, shortened
// to the context deadline when that comes first.
func milliseconds(ctx context.Context, timeout time.Duration) float64 {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout < time.Millisecond {
		timeout = time.Millisecond
	}
	return float64(timeout.Milliseconds())
}
