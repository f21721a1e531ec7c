package traverse

import "errors"

// ErrFault marks an unexpected failure that ended a traversal.
// Stats().Err wraps it with the underlying cause.
var ErrFault = errors.New("traversal fault")
