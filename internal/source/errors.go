package source

import "errors"

// ErrNoVariant is returned when no registered variant recognizes a reference.
var ErrNoVariant = errors.New("no variant supports this source")
