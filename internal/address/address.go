package address

// Address identifies a node on the surface. Its meaning is up to the surface
// implementation; the browser and snapshot surfaces treat it as a CSS selector.
type Address string

// String returns the address text.
func (a Address) String() string {
	return string(a)
}

// Empty reports whether the address is unset.
func (a Address) Empty() bool {
	return a == ""
}

// Set is the group of addresses one traversal step needs.
type Set struct {
	// Body is the thread's comment text.
	Body Address

	// Author is the thread's author name.
	Author Address

	// Link is the thread's permalink anchor.
	Link Address

	// Expand is the affordance that reveals the thread's replies.
	Expand Address

	// Collapse is the affordance that hides the thread's replies again.
	Collapse Address

	// MoreReplies is the "load more replies" affordance inside an expanded thread.
	MoreReplies Address

	// FirstReply is the body of the first reply. Its presence after expansion
	// tells whether the reply list populated at all.
	FirstReply Address

	// ReplyBody, ReplyAuthor and ReplyLink address the reply at the current
	// reply index.
	ReplyBody   Address
	ReplyAuthor Address
	ReplyLink   Address
}

// Scheme maps zero-based traversal indices to an address Set.
// Implementations must be pure: the same indices always give the same Set.
type Scheme interface {
	Addresses(thread, reply int) Set
}

// SchemeFunc adapts an ordinary function to the Scheme interface.
type SchemeFunc func(thread, reply int) Set

// Addresses calls f(thread, reply).
func (f SchemeFunc) Addresses(thread, reply int) Set {
	return f(thread, reply)
}
