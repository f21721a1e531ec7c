package browser

import "errors"

var (
	// ErrLaunch is returned when the driver, browser or page cannot be started.
	ErrLaunch = errors.New("failed to launch browser")

	// ErrNavigation is returned when the page cannot be loaded.
	ErrNavigation = errors.New("failed to navigate")
)
