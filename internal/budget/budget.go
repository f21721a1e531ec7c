package budget

import "time"

// Verdict is the outcome of a budget check.
type Verdict int

const (
	// Continue means neither limit has been reached.
	Continue Verdict = iota

	// CountReached means the parsed count met the count limit.
	CountReached

	// DeadlineReached means more time than the deadline allows has elapsed.
	DeadlineReached
)

// String returns a short name for the verdict.
func (v Verdict) String() string {
	switch v {
	case Continue:
		return "continue"
	case CountReached:
		return "count"
	case DeadlineReached:
		return "deadline"
	default:
		return "unknown"
	}
}

// Budget bounds a traversal by record count, wall-clock time, or both.
// The zero value is unbounded: the traversal runs until the surface is exhausted.
type Budget struct {
	maxCount int
	hasMax   bool
	deadline time.Duration
}

// Option configures a Budget.
type Option func(*Budget)

// WithMaxCount stops the traversal once n records have been parsed.
// A limit of zero is valid and stops before any work is done.
func WithMaxCount(n int) Option {
	return func(b *Budget) {
		b.maxCount = n
		b.hasMax = true
	}
}

// WithDeadline stops the traversal once d has elapsed since it started.
// A non-positive d means no deadline.
func WithDeadline(d time.Duration) Option {
	return func(b *Budget) {
		b.deadline = d
	}
}

// New creates a Budget with the given options.
func New(opts ...Option) Budget {
	var b Budget
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// MaxCount returns the count limit and whether one is set.
func (b Budget) MaxCount() (int, bool) {
	return b.maxCount, b.hasMax
}

// Deadline returns the time budget. Zero means none.
func (b Budget) Deadline() time.Duration {
	if b.deadline < 0 {
		return 0
	}
	return b.deadline
}

// Unbounded reports whether neither limit is set.
func (b Budget) Unbounded() bool {
	return !b.hasMax && b.Deadline() == 0
}

// Check evaluates the budget for parsed records at now, for a traversal that
// started at start. The count limit is checked first.
func (b Budget) Check(parsed int, start, now time.Time) Verdict {
	if b.hasMax && parsed >= b.maxCount {
		return CountReached
	}
	if d := b.Deadline(); d > 0 && now.Sub(start) > d {
		return DeadlineReached
	}
	return Continue
}

// ShouldStop reports whether either limit has been reached.
func (b Budget) ShouldStop(parsed int, start, now time.Time) bool {
	return b.Check(parsed, start, now) != Continue
}

// CountExhausted reports whether the count limit alone has been reached.
// The traversal engine uses it inside a reply loop when strict counting is on.
func (b Budget) CountExhausted(parsed int) bool {
	return b.hasMax && parsed >= b.maxCount
}

// DeadlineFrom combines hour, minute and second components into one duration.
func DeadlineFrom(hours, minutes, seconds int) time.Duration {
	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second
}
