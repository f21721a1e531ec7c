// Package config provides configuration structures and utilities for threadscan.
// It defines the run options for scraping a comment section (source, budget,
// filter, output format), the browser settings, and the YAML jobs file used
// for batch runs.
package config
