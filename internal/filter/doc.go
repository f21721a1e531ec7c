// Package filter decides whether a completed thread is emitted.
//
// An Evaluator holds one optional, case-insensitive pattern. Texts of a thread
// (its own body and the bodies of its replies) are tested as they are read;
// once any of them matches, the whole thread passes. A thread with no match is
// discarded together with its replies.
package filter
