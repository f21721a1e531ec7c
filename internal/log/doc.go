// Package log provides the slog setup used by threadscan.
//
// Handler wraps any slog.Handler and rewrites attributes before they reach it:
//   - values under credential-like keys (cookie, token, session, ...) are masked
//   - values shaped like bearer tokens, JWTs or API keys are masked
//   - long strings, such as comment bodies attached to fault logs, are clipped
//
// # Usage
//
//	logger, closer, err := log.Setup(log.Options{Verbose: true, File: "debug.log"})
//	if err != nil {
//	    return err
//	}
//	defer closer.Close()
//	slog.SetDefault(logger)
package log
