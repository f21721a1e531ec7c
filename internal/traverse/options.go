package traverse

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/threadscan/internal/budget"
	"github.com/nao1215/threadscan/internal/filter"
	"github.com/nao1215/threadscan/internal/surface"
)

// Default wait bounds.
const (
	// DefaultThreadTimeout is how long to wait for the next thread before
	// concluding that there are no more.
	DefaultThreadTimeout = 20 * time.Second

	// DefaultFirstReplyTimeout is how long to wait for the reply list to
	// populate after expanding a thread.
	DefaultFirstReplyTimeout = 20 * time.Second

	// DefaultReplyProbeTimeout is how long to wait for the next reply of an
	// expanded thread before looking for a "more replies" affordance.
	DefaultReplyProbeTimeout = 2 * time.Second

	// DefaultLoadMoreTimeout is how long to wait for a reply after clicking
	// "more replies".
	DefaultLoadMoreTimeout = 20 * time.Second

	// DefaultAffordanceTimeout is how long to look for an expand, collapse or
	// "more replies" affordance.
	DefaultAffordanceTimeout = time.Second
)

// Timeouts bounds every wait the engine performs.
type Timeouts struct {
	Thread     time.Duration
	FirstReply time.Duration
	ReplyProbe time.Duration
	LoadMore   time.Duration
	Affordance time.Duration
}

// DefaultTimeouts returns the default wait bounds.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Thread:     DefaultThreadTimeout,
		FirstReply: DefaultFirstReplyTimeout,
		ReplyProbe: DefaultReplyProbeTimeout,
		LoadMore:   DefaultLoadMoreTimeout,
		Affordance: DefaultAffordanceTimeout,
	}
}

// Page describes what a start hook found on the surface.
type Page struct {
	// Title is the page title, empty when unknown.
	Title string

	// AdvertisedCount is the comment count shown by the page, or -1.
	AdvertisedCount int
}

// StartFunc prepares the surface before the first thread is read, for example
// by navigating and opening the comment section. It runs at most once, after
// the budget has been checked.
type StartFunc func(ctx context.Context, s surface.Surface) (Page, error)

// Option configures an Engine.
type Option func(*Engine)

// WithBudget sets the count and time budget. The default is unbounded.
func WithBudget(b budget.Budget) Option {
	return func(e *Engine) {
		e.budget = b
	}
}

// WithFilter sets the filter evaluator. The default passes every thread.
func WithFilter(f *filter.Evaluator) Option {
	return func(e *Engine) {
		if f != nil {
			e.filter = f
		}
	}
}

// WithStart sets the start hook.
func WithStart(fn StartFunc) Option {
	return func(e *Engine) {
		e.start = fn
	}
}

// WithTimeouts overrides the wait bounds. Zero fields keep their defaults.
func WithTimeouts(t Timeouts) Option {
	return func(e *Engine) {
		if t.Thread > 0 {
			e.timeouts.Thread = t.Thread
		}
		if t.FirstReply > 0 {
			e.timeouts.FirstReply = t.FirstReply
		}
		if t.ReplyProbe > 0 {
			e.timeouts.ReplyProbe = t.ReplyProbe
		}
		if t.LoadMore > 0 {
			e.timeouts.LoadMore = t.LoadMore
		}
		if t.Affordance > 0 {
			e.timeouts.Affordance = t.Affordance
		}
	}
}

// WithStrictReplyBudget makes the reply loop stop as soon as the count limit
// is reached, so that the number of parsed records never exceeds it.
func WithStrictReplyBudget(strict bool) Option {
	return func(e *Engine) {
		e.strictReplies = strict
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}
