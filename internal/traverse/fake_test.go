package traverse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/threadscan/internal/address"
	"github.com/nao1215/threadscan/internal/surface"
)

// testScheme produces addresses like "t3/body" and "t3/r2/author" that
// fakeSurface understands.
var testScheme = address.Template{
	Thread:      "t%d",
	Reply:       "/r%d",
	Body:        "/body",
	Author:      "/author",
	Link:        "/link",
	Expand:      "/expand",
	Collapse:    "/collapse",
	MoreReplies: "/more",
	ReplyBody:   "/body",
	ReplyAuthor: "/author",
	ReplyLink:   "/link",
}

type fakeComment struct {
	author  string
	content string
	link    string
}

type fakeThread struct {
	fakeComment
	replies []fakeComment

	// pageSize is how many replies each expand or "more" click reveals.
	// Zero reveals all of them at once.
	pageSize int

	// empty shows an expand affordance that reveals nothing.
	empty bool

	// moreStalls makes "more" clicks register without revealing replies.
	moreStalls bool

	// noCollapse hides the collapse affordance.
	noCollapse bool

	// failAuthor makes reading this thread's author fail.
	failAuthor bool
}

func (t fakeThread) expandable() bool {
	return len(t.replies) > 0 || t.empty
}

// fakeSurface is an in-memory surface whose threads reveal replies when clicked.
type fakeSurface struct {
	mu sync.Mutex

	threads []fakeThread

	// visible maps an expanded thread index to its number of visible replies.
	visible map[int]int

	// clock is advanced by waitCost on every WaitForPresent call.
	clock    *fakeClock
	waitCost time.Duration

	// failClick makes clicks on addresses with this suffix fail.
	failClick string

	calls  int
	clicks []string
	closes int
}

func newFakeSurface(threads ...fakeThread) *fakeSurface {
	return &fakeSurface{
		threads: threads,
		visible: make(map[int]int),
	}
}

// parsed is a decoded test address.
type parsed struct {
	thread int
	reply  int // -1 for thread-level addresses
	kind   string
}

func parse(addr address.Address) parsed {
	parts := strings.Split(string(addr), "/")
	p := parsed{reply: -1}
	fmt.Sscanf(parts[0], "t%d", &p.thread) //nolint:errcheck
	p.thread--
	if len(parts) == 3 {
		fmt.Sscanf(parts[1], "r%d", &p.reply) //nolint:errcheck
		p.reply--
	}
	p.kind = parts[len(parts)-1]
	return p
}

func (f *fakeSurface) present(addr address.Address) bool {
	if addr.Empty() {
		return false
	}
	p := parse(addr)
	if p.thread < 0 || p.thread >= len(f.threads) {
		return false
	}
	th := f.threads[p.thread]
	visible, expanded := f.visible[p.thread]

	if p.reply >= 0 {
		return expanded && p.reply < visible
	}
	switch p.kind {
	case "body", "author":
		return true
	case "link":
		return th.link != ""
	case "expand":
		return th.expandable()
	case "collapse":
		return expanded && !th.noCollapse
	case "more":
		return expanded && !th.empty && visible < len(th.replies)
	}
	return false
}

func (f *fakeSurface) comment(p parsed) fakeComment {
	th := f.threads[p.thread]
	if p.reply >= 0 {
		return th.replies[p.reply]
	}
	return th.fakeComment
}

func (f *fakeSurface) Locate(_ context.Context, addr address.Address) (surface.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if !f.present(addr) {
		return nil, fmt.Errorf("%w: %s", surface.ErrNotFound, addr)
	}
	return addr, nil
}

func (f *fakeSurface) WaitForPresent(ctx context.Context, addr address.Address, _ time.Duration) (surface.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.clock != nil {
		f.clock.advance(f.waitCost)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !f.present(addr) {
		return nil, fmt.Errorf("%w: %s", surface.ErrTimeout, addr)
	}
	return addr, nil
}

func (f *fakeSurface) Exists(_ context.Context, addr address.Address, _ time.Duration) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.present(addr)
}

func (f *fakeSurface) ReadText(_ context.Context, n surface.Node) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	p := parse(n.(address.Address))
	c := f.comment(p)
	switch p.kind {
	case "body":
		return "  " + c.content + "\n", nil
	case "author":
		if p.reply < 0 && f.threads[p.thread].failAuthor {
			return "", errors.New("element is not attached to the page document")
		}
		return " @" + c.author + " ", nil
	}
	return "", fmt.Errorf("no text at %v", n)
}

func (f *fakeSurface) ReadAttribute(_ context.Context, n surface.Node, name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	p := parse(n.(address.Address))
	if p.kind != "link" || name != "href" {
		return ""
	}
	return f.comment(p).link
}

func (f *fakeSurface) Click(_ context.Context, n surface.Node) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	addr := n.(address.Address)
	f.clicks = append(f.clicks, string(addr))
	if f.failClick != "" && strings.HasSuffix(string(addr), f.failClick) {
		return errors.New("click intercepted")
	}

	p := parse(addr)
	th := f.threads[p.thread]
	page := th.pageSize
	if page == 0 {
		page = len(th.replies)
	}
	switch p.kind {
	case "expand":
		if th.empty {
			f.visible[p.thread] = 0
		} else {
			f.visible[p.thread] = min(page, len(th.replies))
		}
	case "more":
		if !th.moreStalls {
			f.visible[p.thread] = min(f.visible[p.thread]+page, len(th.replies))
		}
	case "collapse":
		delete(f.visible, p.thread)
	}
	return nil
}

func (f *fakeSurface) ScrollIntoView(context.Context, surface.Node) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return nil
}

func (f *fakeSurface) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

func (f *fakeSurface) clickCount(suffix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.clicks {
		if strings.HasSuffix(c, suffix) {
			n++
		}
	}
	return n
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// leafThreads returns n threads without replies.
func leafThreads(n int) []fakeThread {
	threads := make([]fakeThread, n)
	for i := range threads {
		threads[i] = fakeThread{fakeComment: fakeComment{
			author:  fmt.Sprintf("user%d", i),
			content: fmt.Sprintf("comment %d", i),
			link:    fmt.Sprintf("https://www.youtube.com/watch?v=x&lc=%d", i),
		}}
	}
	return threads
}

// replies returns n replies whose content starts with prefix.
func replies(prefix string, n int) []fakeComment {
	out := make([]fakeComment, n)
	for i := range out {
		out[i] = fakeComment{
			author:  fmt.Sprintf("%s-author%d", prefix, i),
			content: fmt.Sprintf("%s reply %d", prefix, i),
			link:    fmt.Sprintf("https://www.youtube.com/watch?v=x&lc=%s.%d", prefix, i),
		}
	}
	return out
}
