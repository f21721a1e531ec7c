package surface

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/threadscan/internal/address"
)

// LocateText locates addr and returns its text.
func LocateText(ctx context.Context, s Surface, addr address.Address) (string, error) {
	n, err := s.Locate(ctx, addr)
	if err != nil {
		return "", fmt.Errorf("failed to locate %s: %w", addr, err)
	}
	text, err := s.ReadText(ctx, n)
	if err != nil {
		return "", fmt.Errorf("failed to read text of %s: %w", addr, err)
	}
	return text, nil
}

// LocateAttribute locates addr and returns the named attribute.
// Every failure, including a missing node, yields "".
func LocateAttribute(ctx context.Context, s Surface, addr address.Address, name string) string {
	if addr.Empty() {
		return ""
	}
	n, err := s.Locate(ctx, addr)
	if err != nil {
		return ""
	}
	return s.ReadAttribute(ctx, n, name)
}

// ClickIfPresent clicks the node at addr when it appears within the probe
// window. It reports whether a click was attempted and returns the click error.
func ClickIfPresent(ctx context.Context, s Surface, addr address.Address, probe time.Duration) (bool, error) {
	if addr.Empty() || !s.Exists(ctx, addr, probe) {
		return false, nil
	}
	n, err := s.Locate(ctx, addr)
	if err != nil {
		return true, err
	}
	return true, s.Click(ctx, n)
}
