package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Options configures Setup.
type Options struct {
	// Verbose lowers the level from Warn to Debug.
	Verbose bool

	// File, when set, receives a copy of every record. It is appended to.
	File string

	// Stderr is where records are written. Defaults to os.Stderr.
	Stderr io.Writer

	// MaxValueRunes clips long string values. Zero uses DefaultMaxValueRunes.
	MaxValueRunes int
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup builds the application logger. The returned closer releases the log
// file and must be called once logging is done.
func Setup(opts Options) (*slog.Logger, io.Closer, error) {
	w := opts.Stderr
	if w == nil {
		w = os.Stderr
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		if dir := filepath.Dir(opts.File); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) //nolint:gosec // User-provided log path is intentional
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(w, f)
		closer = f
	}

	return NewLogger(w, opts.Verbose, opts.MaxValueRunes), closer, nil
}

// NewLogger creates a text logger writing to w through a Handler.
// If verbose is true the level is Debug, otherwise Warn.
func NewLogger(w io.Writer, verbose bool, maxRunes int) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	if maxRunes == 0 {
		maxRunes = DefaultMaxValueRunes
	}
	text := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewHandler(text, maxRunes))
}
