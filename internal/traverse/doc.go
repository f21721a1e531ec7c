// Package traverse walks the comment threads of a surface and produces
// comment records one at a time.
//
// An Engine is a single-pass state machine:
//
//	Idle -> AwaitThread -> LeafThread ---------------------------> Advance -> AwaitThread
//	                    \-> ExpandingReplies -> IterateReplies* -> CollapsingReplies -> Advance
//
// with the terminal states Exhausted and Faulted. Every step derives the
// addresses it needs from the current (thread, reply) position through an
// address.Scheme; nothing is cached across steps.
//
// The budget is checked before each thread. A reply loop in progress always
// runs to its end, so a count limit may be exceeded by at most the replies of
// the last thread read (see WithStrictReplyBudget to stop inside the loop).
//
// Timeouts while waiting for the next thread end the stream cleanly. Replies
// that fail to load end that thread's reply list. Any other failure is a fault:
// it is logged with the current position and the partial record, the surface
// is released, and the stream ends. The surface is released exactly once on
// every path.
package traverse
