// Package snapshot implements surface.Surface over a saved HTML page.
//
// A snapshot never changes: clicks are accepted and counted but reveal
// nothing new, and a node that is absent when asked for is reported as a
// timeout straight away. Replies that were expanded before the page was
// saved are still read, which makes snapshots useful for replaying a page
// offline and for exercising an address scheme against real markup.
//
// Addresses are CSS selectors evaluated with goquery.
package snapshot
