// Package pipeline runs a scrape job through a fixed sequence of steps.
//
// A Job carries the configuration and the Run record of one source. The
// default pipeline resolves the source variant and validates the job, then
// traverses the comment section while streaming records to the output
// document and the history database, and finally prints a run summary.
//
// BatchProcessor runs the jobs of a jobs file. Browser sessions are heavy, so
// jobs run one at a time unless WithConcurrency says otherwise.
package pipeline
