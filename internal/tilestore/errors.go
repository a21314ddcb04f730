package tilestore

import "errors"

// Sentinel errors for the store. Callers match with errors.Is; every return
// wraps one of these with request context.
var (
	// ErrNoSource is returned when GetTile is called before Init succeeded.
	ErrNoSource = errors.New("no tile source configured")

	// ErrUnsupportedSource is returned by Init for a locator that maps to
	// no backend mode.
	ErrUnsupportedSource = errors.New("unsupported tile source")

	// ErrMissingDependency is returned by Init when a backend needs an
	// optional dependency that is not compiled in.
	ErrMissingDependency = errors.New("missing optional dependency")

	// ErrFetchFailed wraps per-request transport, query and decode
	// failures. Never retried internally; retry policy belongs to the
	// caller.
	ErrFetchFailed = errors.New("tile fetch failed")

	// ErrUnsupportedMode is returned when fetch dispatch hits a mode it
	// has no implementation for.
	ErrUnsupportedMode = errors.New("unsupported source mode")
)
