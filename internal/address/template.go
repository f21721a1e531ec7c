package address

import "fmt"

// Template describes a layout where every thread is the n-th child of one
// container and every reply is the n-th child of its thread's reply list.
//
// Thread is a format string with one %d verb that receives the 1-based thread
// position. Reply is a format string appended to the thread prefix, with one
// %d verb that receives the 1-based reply position. The remaining fields are
// suffixes appended to the thread prefix (or, for the Reply* fields, to the
// reply prefix).
type Template struct {
	Thread string
	Reply  string

	Body        string
	Author      string
	Link        string
	Expand      string
	Collapse    string
	MoreReplies string

	ReplyBody   string
	ReplyAuthor string
	ReplyLink   string
}

// Addresses implements Scheme.
func (t Template) Addresses(thread, reply int) Set {
	threadPrefix := fmt.Sprintf(t.Thread, thread+1)
	replyPrefix := threadPrefix + fmt.Sprintf(t.Reply, reply+1)
	firstReplyPrefix := threadPrefix + fmt.Sprintf(t.Reply, 1)

	return Set{
		Body:        join(threadPrefix, t.Body),
		Author:      join(threadPrefix, t.Author),
		Link:        join(threadPrefix, t.Link),
		Expand:      join(threadPrefix, t.Expand),
		Collapse:    join(threadPrefix, t.Collapse),
		MoreReplies: join(threadPrefix, t.MoreReplies),
		FirstReply:  join(firstReplyPrefix, t.ReplyBody),
		ReplyBody:   join(replyPrefix, t.ReplyBody),
		ReplyAuthor: join(replyPrefix, t.ReplyAuthor),
		ReplyLink:   join(replyPrefix, t.ReplyLink),
	}
}

// join appends suffix to prefix. An empty suffix yields an empty Address so
// that a layout can leave an affordance undefined.
func join(prefix, suffix string) Address {
	if suffix == "" {
		return ""
	}
	return Address(prefix + suffix)
}
