package app

import "errors"

// Run and New report their outcome through these; main picks the log level by them.
var (
	// ErrAppStartup: the store or the listener could not be brought up.
	ErrAppStartup = errors.New("app startup error")
	// ErrAppShutdownNormal: stopped by signal or a closed server.
	ErrAppShutdownNormal = errors.New("app shutdown normal")
	// ErrAppShutdownWithError: in-flight requests did not drain in SHUTDOWN_WAIT.
	ErrAppShutdownWithError = errors.New("app shutdown with error")
)
