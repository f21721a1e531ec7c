package browser

import (
	"log/slog"
	"time"
)

// Default browser settings.
const (
	// DefaultViewportWidth and DefaultViewportHeight emulate a maximized
	// desktop window, which is where comment sections render their full markup.
	DefaultViewportWidth  = 1920
	DefaultViewportHeight = 1080

	// DefaultClickInterval is the minimum spacing between two clicks.
	DefaultClickInterval = 500 * time.Millisecond

	// DefaultNavigationTimeout bounds the initial page load.
	DefaultNavigationTimeout = 60 * time.Second

	// DefaultActionTimeout bounds a single click, read or scroll.
	DefaultActionTimeout = 10 * time.Second

	// DefaultScrollOffset is how far above a node the viewport stops after
	// scrolling it into view, so that sticky headers do not cover it.
	DefaultScrollOffset = 100
)

// options holds the settings collected from Option values.
type options struct {
	headless          bool
	skipInstall       bool
	viewportWidth     int
	viewportHeight    int
	clickInterval     time.Duration
	navigationTimeout time.Duration
	actionTimeout     time.Duration
	scrollOffset      float64
	locale            string
	logger            *slog.Logger
}

func defaultOptions() options {
	return options{
		headless:          true,
		viewportWidth:     DefaultViewportWidth,
		viewportHeight:    DefaultViewportHeight,
		clickInterval:     DefaultClickInterval,
		navigationTimeout: DefaultNavigationTimeout,
		actionTimeout:     DefaultActionTimeout,
		scrollOffset:      DefaultScrollOffset,
		locale:            "en-US",
		logger:            slog.Default(),
	}
}

// Option configures Launch.
type Option func(*options)

// WithHeadless toggles headless mode. The default is headless.
func WithHeadless(headless bool) Option {
	return func(o *options) {
		o.headless = headless
	}
}

// WithSkipInstall skips downloading browsers on first run.
func WithSkipInstall(skip bool) Option {
	return func(o *options) {
		o.skipInstall = skip
	}
}

// WithViewport sets the page viewport size.
func WithViewport(width, height int) Option {
	return func(o *options) {
		if width > 0 && height > 0 {
			o.viewportWidth = width
			o.viewportHeight = height
		}
	}
}

// WithClickInterval sets the minimum spacing between clicks.
// Zero disables pacing.
func WithClickInterval(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.clickInterval = d
		}
	}
}

// WithNavigationTimeout bounds the initial page load.
func WithNavigationTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.navigationTimeout = d
		}
	}
}

// WithActionTimeout bounds single clicks, reads and scrolls.
func WithActionTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.actionTimeout = d
		}
	}
}

// WithScrollOffset sets how far above a scrolled node the viewport stops.
func WithScrollOffset(px int) Option {
	return func(o *options) {
		o.scrollOffset = float64(px)
	}
}

// WithLocale sets the browser locale, which decides the language of labels
// such as "Pause" and "Mute".
func WithLocale(locale string) Option {
	return func(o *options) {
		if locale != "" {
			o.locale = locale
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
