package database

import "errors"

// ErrNotEnoughRuns is returned by Diff when a source has fewer than two runs.
var ErrNotEnoughRuns = errors.New("at least two runs of the source are needed")
