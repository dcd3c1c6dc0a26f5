package bot

import "context"

// Directory is read/write access to the relational beach catalog and the
// user/favorite tables.
type Directory interface {
	// FindBeach resolves a free-text query to a beach: an exact
	// case-insensitive match on name or slug first, then a substring
	// match. ok is false when nothing matched. When several partial
	// matches exist the first row wins; callers must not assume which.
	FindBeach(ctx context.Context, query string) (beach Beach, ok bool, err error)

	// ListBeachNames returns every display name, sorted ascending.
	ListBeachNames(ctx context.Context) ([]string, error)

	// RegisterUser upserts a user row. Duplicate calls are no-ops.
	RegisterUser(ctx context.Context, phone string) error

	// AddFavorite upserts a (phone, slug) favorite row. Duplicate adds
	// are no-ops, not errors.
	AddFavorite(ctx context.Context, phone, slug string) error

	// ListFavorites returns the user's favorites joined against the
	// catalog. Favorites whose beach no longer exists are excluded.
	ListFavorites(ctx context.Context, phone string) ([]FavoriteBeach, error)
}

// Forecaster fetches live data from the external surf site.
type Forecaster interface {
	// ListBeaches scrapes the spot directory page.
	ListBeaches(ctx context.Context) ([]Beach, error)

	// Forecast scrapes the per-beach forecast page. Days with no
	// qualifying hourly rows are dropped from the result.
	Forecast(ctx context.Context, slug string) ([]ForecastDay, error)
}

// Sender pushes a reply back to the chat provider. Fire and forget: non-2xx
// responses are reported as errors but never retried.
type Sender interface {
	SendText(ctx context.Context, toPhone, body string) error
}

// Publisher hands a job to the queue. Publish blocks until the queue
// acknowledges so enqueue failures are reportable upstream.
type Publisher interface {
	Publish(ctx context.Context, job Job) error
}

// DirectoryProvider yields a Directory backed by a lazily-built handle.
// Acquisition may fail with ErrResourceUnavailable; callers degrade rather
// than crash, and the next acquisition retries construction.
type DirectoryProvider interface {
	Directory(ctx context.Context) (Directory, error)
}

// PublisherProvider yields a Publisher backed by a lazily-built handle.
type PublisherProvider interface {
	Publisher(ctx context.Context) (Publisher, error)
}
