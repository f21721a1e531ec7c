// Package main provides the entry point for the threadscan CLI.
//
// threadscan walks the comment section of a video page, expanding reply
// threads as it goes, and writes every comment to a JSON, CSV or Markdown
// document. Runs are recorded in a local history database so that later runs
// of the same source can be compared.
//
// Usage:
//
//	threadscan scrape <url>
//	threadscan scrape --jobs .threadscan.yaml
//	threadscan history [url]
//
// See --help for all available options.
package main

// main is the entry point for threadscan.
func main() {
	Execute()
}
