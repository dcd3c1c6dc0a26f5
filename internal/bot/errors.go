package bot

import "errors"

// Error taxonomy shared across layers. Callers branch with errors.Is; the
// dispatcher is the single boundary where these are converted into
// user-facing text.
var (
	// ErrFetch covers network failures, timeouts, and non-2xx responses
	// from the scraped site.
	ErrFetch = errors.New("fetch failed")

	// ErrParse means an expected markup structure was absent. It signals
	// that the scraping rules are stale, not that data was merely missing.
	ErrParse = errors.New("parse failed")

	// ErrStore covers database connectivity and query failures.
	ErrStore = errors.New("store failed")

	// ErrResourceUnavailable means a long-lived handle (connection pool,
	// queue publisher) could not be constructed. The failure is not
	// cached; the next acquisition retries.
	ErrResourceUnavailable = errors.New("resource unavailable")

	// ErrInvalidArgument flags empty or malformed input to an internal
	// operation before any external call is made.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMalformedPayload means an inbound payload did not match the
	// expected shape. Retrying cannot succeed, so boundaries acknowledge
	// it instead of signaling retry.
	ErrMalformedPayload = errors.New("malformed payload")
)
