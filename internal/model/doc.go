// Package model defines the data structures shared across threadscan.
//
// This package contains the following main types:
//   - CommentRecord: one scraped comment, with its replies when it is a thread
//   - Document: the {"comments": [...]} output document
//   - Run: the outcome of one traversal of one source
//
// Models live in their own package so that the traversal engine, the report
// writers and the history database can share them without import cycles.
package model
