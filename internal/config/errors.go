package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so that callers can use
// errors.Is() to tell them apart.
var (
	// ErrSourceRequired is returned when no source URL is given.
	ErrSourceRequired = errors.New("no source specified: provide a video URL or use --jobs")

	// ErrNegativeDuration is returned when hours, minutes or seconds is negative.
	ErrNegativeDuration = errors.New("invalid duration: hours, minutes and seconds must be non-negative")

	// ErrDeadlineTooShort is returned when a time limit is given but the
	// combined deadline is shorter than MinDeadline.
	ErrDeadlineTooShort = errors.New("invalid duration: the time limit must be at least 30 seconds")

	// ErrInvalidLimit is returned when an explicit comment limit is negative.
	ErrInvalidLimit = errors.New("invalid limit: must be zero or greater")

	// ErrInvalidFormat is returned when the output format is not one of Formats().
	ErrInvalidFormat = errors.New("invalid output format: must be json, csv or markdown")

	// ErrInvalidTimeout is returned when a wait bound is negative.
	ErrInvalidTimeout = errors.New("invalid timeout: must be non-negative")

	// ErrInvalidClickInterval is returned when the click interval is negative.
	// Use 0 to click without pacing.
	ErrInvalidClickInterval = errors.New("invalid click interval: must be non-negative")
)
