package surface

import (
	"context"
	"time"

	"github.com/nao1215/threadscan/internal/address"
)

// Node is an opaque handle to a located node.
// Only the Surface that returned it may interpret it.
type Node any

// Surface is the set of operations the traversal engine performs on a page.
type Surface interface {
	// Locate returns the first node at addr, or ErrNotFound.
	Locate(ctx context.Context, addr address.Address) (Node, error)

	// WaitForPresent waits up to timeout for a node at addr and returns it.
	// It returns ErrTimeout when the node does not appear in time.
	WaitForPresent(ctx context.Context, addr address.Address, timeout time.Duration) (Node, error)

	// Exists reports whether a node at addr appears within timeout.
	// A timeout of zero checks once without waiting.
	Exists(ctx context.Context, addr address.Address, timeout time.Duration) bool

	// ReadText returns the rendered text of n.
	ReadText(ctx context.Context, n Node) (string, error)

	// ReadAttribute returns the named attribute of n, or "" on any failure.
	ReadAttribute(ctx context.Context, n Node, name string) string

	// Click activates n. Callers treat a failed click as a missed interaction,
	// never as a reason to abort.
	Click(ctx context.Context, n Node) error

	// ScrollIntoView brings n into the viewport.
	ScrollIntoView(ctx context.Context, n Node) error

	// Close releases the surface and everything behind it.
	Close() error
}

// Navigator is implemented by surfaces that can load a page by reference.
// A variant's start hook navigates when the surface supports it.
type Navigator interface {
	Navigate(ctx context.Context, ref string) error
}

// Titler is implemented by surfaces that can report the current page title.
type Titler interface {
	Title(ctx context.Context) (string, error)
}
