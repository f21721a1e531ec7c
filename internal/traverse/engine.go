package traverse

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/nao1215/threadscan/internal/address"
	"github.com/nao1215/threadscan/internal/budget"
	"github.com/nao1215/threadscan/internal/filter"
	"github.com/nao1215/threadscan/internal/model"
	"github.com/nao1215/threadscan/internal/surface"
	"golang.org/x/text/unicode/norm"
)

// Stats summarizes a traversal. It is complete once the engine is terminal.
type Stats struct {
	Position Position

	// Parsed counts threads and replies read. Suppressed threads still count.
	Parsed int

	// Threads and Replies split Parsed by depth.
	Threads int
	Replies int

	// Emitted counts records handed to the consumer, replies included.
	Emitted int

	// Suppressed counts threads discarded by the filter.
	Suppressed int

	StartedAt  time.Time
	FinishedAt time.Time

	// Page is what the start hook reported.
	Page Page

	EndReason model.EndReason

	// Err wraps ErrFault when EndReason is model.EndReasonFault.
	Err error
}

// threadContext holds the thread being read: the parent record under
// construction and the node to scroll back to before collapsing.
type threadContext struct {
	record   model.CommentRecord
	anchor   surface.Node
	expanded bool
}

// Engine produces the comment records of one surface.
// It owns the surface from construction until it reaches a terminal state and
// is not safe for concurrent use.
type Engine struct {
	surface       surface.Surface
	scheme        address.Scheme
	budget        budget.Budget
	filter        *filter.Evaluator
	start         StartFunc
	timeouts      Timeouts
	strictReplies bool
	logger        *slog.Logger
	now           func() time.Time

	state    State
	pos      Position
	addrs    address.Set
	thread   *threadContext
	stats    Stats
	released bool
	closeErr error
}

// New creates an Engine over s, addressing nodes through scheme.
func New(s surface.Surface, scheme address.Scheme, opts ...Option) *Engine {
	e := &Engine{
		surface:  s,
		scheme:   scheme,
		filter:   &filter.Evaluator{},
		timeouts: DefaultTimeouts(),
		logger:   slog.Default(),
		now:      time.Now,
		state:    StateIdle,
	}
	e.stats.Page.AdvertisedCount = -1
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current state.
func (e *Engine) State() State {
	return e.state
}

// Stats returns a snapshot of the traversal counters.
func (e *Engine) Stats() Stats {
	st := e.stats
	st.Position = e.pos
	return st
}

// Next advances the traversal by one thread.
//
// It returns (record, true) for every thread read, where record is nil when
// the filter suppressed the thread. It returns (nil, false) once the traversal
// is over; every later call does the same. Next never panics and never
// returns an error: faults end the stream and are reported through Stats.
func (e *Engine) Next(ctx context.Context) (rec *model.CommentRecord, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.state = e.fail(fmt.Errorf("panic: %v", r))
			rec, ok = nil, false
		}
	}()

	for {
		switch e.state {
		case StateIdle:
			e.state = e.begin(ctx)
		case StateAwaitThread:
			e.state = e.awaitThread(ctx)
		case StateLeafThread:
			e.state = e.leafThread()
		case StateExpandingReplies:
			e.state = e.expandReplies(ctx)
		case StateIterateReplies:
			e.state = e.iterateReplies(ctx)
		case StateCollapsingReplies:
			e.state = e.collapseReplies(ctx)
		case StateAdvance:
			rec = e.advance()
			e.state = StateAwaitThread
			return rec, true
		default:
			return nil, false
		}
	}
}

// Records returns the emitted records as a sequence, skipping suppressed
// threads. Stopping the iteration early closes the engine.
func (e *Engine) Records(ctx context.Context) iter.Seq[model.CommentRecord] {
	return func(yield func(model.CommentRecord) bool) {
		defer e.Close()
		for {
			rec, ok := e.Next(ctx)
			if !ok {
				return
			}
			if rec == nil {
				continue
			}
			if !yield(*rec) {
				return
			}
		}
	}
}

// Close abandons the traversal and releases the surface if that has not
// happened yet. It returns the error, if any, from releasing the surface.
func (e *Engine) Close() error {
	if !e.state.Terminal() {
		e.state = e.finish(model.EndReasonCancelled)
	}
	return e.closeErr
}

// begin records the start instant, checks the budget, and runs the start hook.
func (e *Engine) begin(ctx context.Context) State {
	e.stats.StartedAt = e.now()

	if stop, ok := e.checkBudget(ctx); ok {
		return stop
	}

	if e.start != nil {
		page, err := e.start(ctx, e.surface)
		if err != nil {
			if ctx.Err() != nil {
				return e.finish(model.EndReasonCancelled)
			}
			return e.fail(fmt.Errorf("failed to start: %w", err))
		}
		e.stats.Page = page
		e.logger.Debug("surface ready", "title", page.Title, "advertised", page.AdvertisedCount)
	}
	return StateAwaitThread
}

func (e *Engine) awaitThread(ctx context.Context) State {
	if stop, ok := e.checkBudget(ctx); ok {
		return stop
	}

	e.addrs = e.scheme.Addresses(e.pos.Thread, e.pos.Reply)
	body, err := e.surface.WaitForPresent(ctx, e.addrs.Body, e.timeouts.Thread)
	if err != nil {
		switch {
		case errors.Is(err, surface.ErrTimeout):
			e.logger.Debug("no further thread", "thread", e.pos.Thread)
			return e.finish(model.EndReasonEndOfData)
		case ctx.Err() != nil:
			return e.finish(model.EndReasonCancelled)
		default:
			return e.fail(fmt.Errorf("failed to wait for thread: %w", err))
		}
	}

	rec, err := e.readComment(ctx, body, e.addrs.Author, e.addrs.Link)
	if err != nil {
		return e.fail(err)
	}

	e.filter.Reset()
	e.thread = &threadContext{record: rec, anchor: body}

	if err := e.surface.ScrollIntoView(ctx, body); err != nil {
		return e.fail(fmt.Errorf("failed to scroll to thread: %w", err))
	}
	e.stats.Parsed++
	e.stats.Threads++

	if e.surface.Exists(ctx, e.addrs.Expand, e.timeouts.Affordance) {
		return StateExpandingReplies
	}
	return StateLeafThread
}

func (e *Engine) leafThread() State {
	e.filter.Test(e.thread.record.Content)
	e.advanceThread()
	return StateAdvance
}

func (e *Engine) expandReplies(ctx context.Context) State {
	e.filter.Test(e.thread.record.Content)
	if e.strictReplies && e.budget.CountExhausted(e.stats.Parsed) {
		e.advanceThread()
		return StateAdvance
	}
	e.thread.expanded = true

	n, err := e.surface.Locate(ctx, e.addrs.Expand)
	if err == nil {
		err = e.surface.Click(ctx, n)
	}
	if err != nil {
		e.logger.Warn("could not expand replies", "thread", e.pos.Thread, "error", err)
		return StateCollapsingReplies
	}

	if _, err := e.surface.WaitForPresent(ctx, e.addrs.FirstReply, e.timeouts.FirstReply); err != nil {
		if errors.Is(err, surface.ErrTimeout) || ctx.Err() != nil {
			e.logger.Debug("reply list did not populate", "thread", e.pos.Thread)
			return StateCollapsingReplies
		}
		return e.fail(fmt.Errorf("failed to wait for first reply: %w", err))
	}
	return StateIterateReplies
}

func (e *Engine) iterateReplies(ctx context.Context) State {
	if e.strictReplies && e.budget.CountExhausted(e.stats.Parsed) {
		return StateCollapsingReplies
	}

	e.addrs = e.scheme.Addresses(e.pos.Thread, e.pos.Reply)

	if !e.surface.Exists(ctx, e.addrs.ReplyBody, e.timeouts.ReplyProbe) {
		clicked, err := surface.ClickIfPresent(ctx, e.surface, e.addrs.MoreReplies, e.timeouts.Affordance)
		if !clicked {
			return StateCollapsingReplies
		}
		if err != nil {
			e.logger.Warn("could not load more replies", "thread", e.pos.Thread, "reply", e.pos.Reply, "error", err)
			return StateCollapsingReplies
		}
		if _, err := e.surface.WaitForPresent(ctx, e.addrs.ReplyBody, e.timeouts.LoadMore); err != nil {
			if errors.Is(err, surface.ErrTimeout) || ctx.Err() != nil {
				e.logger.Debug("more replies did not load", "thread", e.pos.Thread, "reply", e.pos.Reply)
				return StateCollapsingReplies
			}
			return e.fail(fmt.Errorf("failed to wait for reply: %w", err))
		}
	}

	body, err := e.surface.Locate(ctx, e.addrs.ReplyBody)
	if err != nil {
		return e.fail(fmt.Errorf("failed to locate reply: %w", err))
	}
	reply, err := e.readComment(ctx, body, e.addrs.ReplyAuthor, e.addrs.ReplyLink)
	if err != nil {
		return e.fail(err)
	}

	e.thread.record.Children = append(e.thread.record.Children, reply)
	e.filter.Test(reply.Content)
	e.pos.Reply++
	e.stats.Parsed++
	e.stats.Replies++
	return StateIterateReplies
}

func (e *Engine) collapseReplies(ctx context.Context) State {
	if err := e.surface.ScrollIntoView(ctx, e.thread.anchor); err != nil {
		e.logger.Warn("could not restore scroll position", "thread", e.pos.Thread, "error", err)
	}
	if _, err := surface.ClickIfPresent(ctx, e.surface, e.addrs.Collapse, e.timeouts.Affordance); err != nil {
		e.logger.Warn("could not collapse replies", "thread", e.pos.Thread, "error", err)
	}
	e.advanceThread()
	return StateAdvance
}

// advance decides the completed thread and returns what to emit.
func (e *Engine) advance() *model.CommentRecord {
	th := e.thread
	e.thread = nil

	rec := e.filter.Decide(th.record)
	if rec == nil {
		e.stats.Suppressed++
		e.logger.Debug("thread suppressed", "thread", e.pos.Thread-1, "replies", len(th.record.Children))
		return nil
	}

	out := rec.Clone()
	e.stats.Emitted += out.Count()
	return &out
}

func (e *Engine) advanceThread() {
	e.pos.Thread++
	e.pos.Reply = 0
}

// checkBudget returns the terminal state to move to when the traversal must
// stop before the next thread.
func (e *Engine) checkBudget(ctx context.Context) (State, bool) {
	if ctx.Err() != nil {
		return e.finish(model.EndReasonCancelled), true
	}
	switch e.budget.Check(e.stats.Parsed, e.stats.StartedAt, e.now()) {
	case budget.CountReached:
		return e.finish(model.EndReasonCount), true
	case budget.DeadlineReached:
		return e.finish(model.EndReasonDeadline), true
	default:
		return e.state, false
	}
}

// readComment reads the body, author and permalink of one comment.
// A missing permalink is not an error.
func (e *Engine) readComment(ctx context.Context, body surface.Node, author, link address.Address) (model.CommentRecord, error) {
	content, err := e.surface.ReadText(ctx, body)
	if err != nil {
		return model.CommentRecord{}, fmt.Errorf("failed to read comment text: %w", err)
	}
	name, err := surface.LocateText(ctx, e.surface, author)
	if err != nil {
		return model.CommentRecord{}, fmt.Errorf("failed to read commenter: %w", err)
	}
	return model.CommentRecord{
		Commenter: normalizeCommenter(name),
		Content:   normalizeContent(content),
		Link:      surface.LocateAttribute(ctx, e.surface, link, "href"),
	}, nil
}

// finish ends the traversal cleanly.
func (e *Engine) finish(reason model.EndReason) State {
	e.stats.EndReason = reason
	e.logger.Debug("traversal finished",
		"reason", reason,
		"parsed", e.stats.Parsed,
		"emitted", e.stats.Emitted,
	)
	e.release()
	return StateExhausted
}

// fail logs err with the position and partial record, then ends the traversal.
func (e *Engine) fail(err error) State {
	err = fmt.Errorf("%w: %w", ErrFault, err)
	e.stats.EndReason = model.EndReasonFault
	e.stats.Err = err

	attrs := []any{
		"state", e.state,
		"thread", e.pos.Thread,
		"reply", e.pos.Reply,
		"error", err,
	}
	if e.thread != nil {
		attrs = append(attrs, slog.Group("partial",
			"commenter", e.thread.record.Commenter,
			"content", e.thread.record.Content,
			"link", e.thread.record.Link,
			"children", len(e.thread.record.Children),
			"expanded", e.thread.expanded,
		))
	}
	e.logger.Error("traversal fault", attrs...)

	e.thread = nil
	e.release()
	return StateFaulted
}

// release closes the surface the first time it is called.
func (e *Engine) release() {
	if e.released {
		return
	}
	e.released = true
	e.stats.FinishedAt = e.now()
	if err := e.surface.Close(); err != nil {
		e.closeErr = err
		e.logger.Warn("failed to release surface", "error", err)
	}
}

// normalizeCommenter trims the display name and drops the handle marker.
func normalizeCommenter(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "@")
	return norm.NFC.String(s)
}

func normalizeContent(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
