// Package store implements the beach directory on PostgreSQL: catalog
// lookups, user registration, and favorites. Every write is an idempotent
// upsert so the at-least-once queue can redeliver jobs safely.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jonboulle/clockwork"

	"github.com/itamarw/gosurf-bot/internal/bot"
)

// DB is the slice of pgxpool.Pool the store needs. Narrowing it keeps the
// store testable against a pgxmock pool.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store is a Directory implementation backed by a pgx connection pool.
// It assumes this schema:
//
//	CREATE TABLE beaches (
//		slug TEXT PRIMARY KEY,
//		name TEXT NOT NULL,
//		last_updated TIMESTAMPTZ NOT NULL
//	);
//	CREATE TABLE users (
//		phone_number TEXT PRIMARY KEY,
//		registered_at TIMESTAMPTZ NOT NULL
//	);
//	CREATE TABLE favorites (
//		phone_number TEXT NOT NULL REFERENCES users (phone_number),
//		beach_slug TEXT NOT NULL REFERENCES beaches (slug),
//		PRIMARY KEY (phone_number, beach_slug)
//	);
type Store struct {
	db    DB
	clock clockwork.Clock
}

// New constructs a Store. The clock stamps registered_at/last_updated so
// tests can freeze time.
func New(db DB, clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{db: db, clock: clock}
}

// Both lookup phases share one statement; only the parameter changes
// (the literal query first, then %query%).
const findBeachSQL = `SELECT slug, name FROM beaches WHERE name ILIKE $1 OR slug ILIKE $1`

// FindBeach resolves a query in two phases: an exact case-insensitive match
// on name or slug, then a substring match only if the first phase found
// nothing. The partial phase returns whichever row the store yields first.
func (s *Store) FindBeach(ctx context.Context, query string) (bot.Beach, bool, error) {
	if query == "" {
		return bot.Beach{}, false, fmt.Errorf("%w: empty beach query", bot.ErrInvalidArgument)
	}

	var beach bot.Beach
	err := s.db.QueryRow(ctx, findBeachSQL, query).Scan(&beach.Slug, &beach.Name)
	if err == nil {
		return beach, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return bot.Beach{}, false, fmt.Errorf("%w: find beach %q: %v", bot.ErrStore, query, err)
	}

	err = s.db.QueryRow(ctx, findBeachSQL, "%"+query+"%").Scan(&beach.Slug, &beach.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return bot.Beach{}, false, nil
	}
	if err != nil {
		return bot.Beach{}, false, fmt.Errorf("%w: find beach %q: %v", bot.ErrStore, query, err)
	}
	return beach, true, nil
}

// ListBeachNames returns every display name sorted ascending.
func (s *Store) ListBeachNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT name FROM beaches ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: list beaches: %v", bot.ErrStore, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: scan beach name: %v", bot.ErrStore, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list beaches: %v", bot.ErrStore, err)
	}
	return names, nil
}

// RegisterUser upserts a user row keyed by phone number. Re-registering is
// a no-op.
func (s *Store) RegisterUser(ctx context.Context, phone string) error {
	if phone == "" {
		return fmt.Errorf("%w: empty phone number", bot.ErrInvalidArgument)
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO users (phone_number, registered_at) VALUES ($1, $2)
		 ON CONFLICT (phone_number) DO NOTHING`,
		phone, s.clock.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("%w: register user %s: %v", bot.ErrStore, phone, err)
	}
	return nil
}

// AddFavorite upserts a favorite row on the composite (phone, slug) key.
// Duplicate adds are no-ops, not errors.
func (s *Store) AddFavorite(ctx context.Context, phone, slug string) error {
	if phone == "" || slug == "" {
		return fmt.Errorf("%w: phone and slug are required", bot.ErrInvalidArgument)
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO favorites (phone_number, beach_slug) VALUES ($1, $2)
		 ON CONFLICT (phone_number, beach_slug) DO NOTHING`,
		phone, slug,
	)
	if err != nil {
		return fmt.Errorf("%w: add favorite %s/%s: %v", bot.ErrStore, phone, slug, err)
	}
	return nil
}

// ListFavorites joins the user's favorites against the catalog. A favorite
// whose beach was deleted simply drops out of the join.
func (s *Store) ListFavorites(ctx context.Context, phone string) ([]bot.FavoriteBeach, error) {
	if phone == "" {
		return nil, fmt.Errorf("%w: empty phone number", bot.ErrInvalidArgument)
	}
	rows, err := s.db.Query(ctx,
		`SELECT b.slug, b.name FROM favorites f
		 JOIN beaches b ON b.slug = f.beach_slug
		 WHERE f.phone_number = $1
		 ORDER BY b.name ASC`,
		phone,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list favorites for %s: %v", bot.ErrStore, phone, err)
	}
	defer rows.Close()

	var favorites []bot.FavoriteBeach
	for rows.Next() {
		var fav bot.FavoriteBeach
		if err := rows.Scan(&fav.Slug, &fav.Name); err != nil {
			return nil, fmt.Errorf("%w: scan favorite: %v", bot.ErrStore, err)
		}
		favorites = append(favorites, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list favorites for %s: %v", bot.ErrStore, phone, err)
	}
	return favorites, nil
}

// UpsertBeaches refreshes the catalog from a scraped beach list inside one
// transaction. Any failure rolls the whole batch back.
func (s *Store) UpsertBeaches(ctx context.Context, beaches []bot.Beach) error {
	if len(beaches) == 0 {
		return fmt.Errorf("%w: empty beach list", bot.ErrInvalidArgument)
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin upsert: %v", bot.ErrStore, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	now := s.clock.Now().UTC()
	for _, beach := range beaches {
		_, err := tx.Exec(ctx,
			`INSERT INTO beaches (slug, name, last_updated) VALUES ($1, $2, $3)
			 ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name, last_updated = EXCLUDED.last_updated`,
			beach.Slug, beach.Name, now,
		)
		if err != nil {
			return fmt.Errorf("%w: upsert beach %s: %v", bot.ErrStore, beach.Slug, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit upsert: %v", bot.ErrStore, err)
	}
	return nil
}
