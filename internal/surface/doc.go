// Package surface defines the capabilities the traversal engine needs from a
// rendered page.
//
// The browser package implements Surface on top of a headless Chromium driven
// by Playwright. The snapshot package implements it over a saved HTML page.
// Every blocking call takes a timeout; a timeout is reported as ErrTimeout and
// means "absent", which callers treat as a normal outcome.
package surface
