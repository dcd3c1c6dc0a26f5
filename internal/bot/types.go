// Package bot defines the core domain types and collaborator interfaces for
// the surf-forecast bot. Keeping them in one place decouples the HTTP, queue,
// scraping, and storage layers from each other and makes every collaborator
// replaceable in tests.
package bot

import "time"

// Beach is one entry of the beach catalog. Slug is the unique key and is
// also the trailing path segment of the external site's forecast page.
type Beach struct {
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	LastUpdated time.Time `json:"last_updated"`
}

// FavoriteBeach is a favorite row joined against the catalog, ready for
// rendering in a digest reply.
type FavoriteBeach struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Job is the unit of work handed through the queue: one inbound message from
// one user. It carries no state beyond transit; delivery is at-least-once,
// so everything a job triggers must be idempotent.
type Job struct {
	PhoneNumber string `json:"phone_number"`
	MessageText string `json:"message_text"`
}

// NotAvailable is the sentinel substituted for any forecast field missing in
// the source markup.
const NotAvailable = "N/A"

// HourlyReading is one forecast row for one of the target hours. Fields the
// source page omits hold NotAvailable rather than being empty.
type HourlyReading struct {
	Time           string `json:"time"`
	WaveHeight     string `json:"wave_height"`
	SeaDescription string `json:"sea_description"`
	WindSpeed      string `json:"wind_speed"`
	WindDirection  string `json:"wind_direction"`
}

// ForecastDay groups the hourly readings of a single day, in page order.
// Forecasts are rebuilt from a live fetch on every request and never
// persisted.
type ForecastDay struct {
	DayName string          `json:"day_name"`
	Hours   []HourlyReading `json:"hourly_forecast"`
}
