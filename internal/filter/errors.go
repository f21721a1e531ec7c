package filter

import "errors"

// ErrInvalidPattern is returned by New when the pattern does not compile.
var ErrInvalidPattern = errors.New("invalid filter pattern")
