package surface

import "errors"

var (
	// ErrTimeout is returned when a bounded wait expires before the node appears.
	ErrTimeout = errors.New("timed out waiting for node")

	// ErrNotFound is returned by Locate when no node matches the address.
	ErrNotFound = errors.New("node not found")

	// ErrClosed is returned when the surface has already been released.
	ErrClosed = errors.New("surface is closed")

	// ErrStaleNode is returned when a node handle no longer refers to a node.
	ErrStaleNode = errors.New("node is no longer attached")
)
