// Package browser implements surface.Surface with a Chromium page driven by
// Playwright.
//
// Launch starts the Playwright driver, a browser, one context and one page.
// Close tears all of them down in reverse order and may be called once.
// Clicks are paced by a token bucket so that the page has time to react
// between interactions.
//
// Addresses are CSS selectors. Every locate resolves to the first match.
package browser
