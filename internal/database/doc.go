// Package database provides SQLite-based run history for threadscan.
//
// Every scrape run is stored with its configuration, outcome and the comments
// it emitted. Comments carry a fingerprint so that two runs of the same
// source can be compared to find comments that appeared in between.
//
// The database is a single file (via the CGO-free modernc.org/sqlite driver)
// in the XDG data directory.
package database
