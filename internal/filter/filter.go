package filter

import (
	"fmt"
	"regexp"

	"github.com/nao1215/threadscan/internal/model"
)

// Evaluator tracks whether the current thread has matched the pattern.
// It is not safe for concurrent use; one traversal owns one Evaluator.
type Evaluator struct {
	pattern *regexp.Regexp

	// found is set by Test on the first match and cleared by Reset.
	found bool

	// decided freezes found once Decide has run for the current thread.
	decided bool
}

// New compiles pattern case-insensitively. An empty pattern disables
// filtering, so every thread passes.
func New(pattern string) (*Evaluator, error) {
	e := &Evaluator{}
	if pattern == "" {
		return e, nil
	}

	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, pattern, err)
	}
	e.pattern = re
	return e, nil
}

// Enabled reports whether a pattern is configured.
func (e *Evaluator) Enabled() bool {
	return e.pattern != nil
}

// Pattern returns the pattern as configured, without the case-insensitive flag.
func (e *Evaluator) Pattern() string {
	if e.pattern == nil {
		return ""
	}
	return e.pattern.String()[len("(?i)"):]
}

// Reset starts a new thread.
func (e *Evaluator) Reset() {
	e.found = false
	e.decided = false
}

// Test searches text for the pattern. It does nothing when no pattern is
// configured, when the thread has already matched, or when the thread has
// already been decided.
func (e *Evaluator) Test(text string) {
	if e.pattern == nil || e.found || e.decided {
		return
	}
	if e.pattern.MatchString(text) {
		e.found = true
	}
}

// Found reports whether the current thread has matched.
func (e *Evaluator) Found() bool {
	return e.found
}

// Decide returns rec when the thread passes and nil when it is suppressed.
// Without a pattern every record passes. The decision is final for the thread:
// further Test calls are ignored and repeated Decide calls return the same
// outcome until Reset.
func (e *Evaluator) Decide(rec model.CommentRecord) *model.CommentRecord {
	e.decided = true
	if e.pattern != nil && !e.found {
		return nil
	}
	return &rec
}
