package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the Postgres store behind the suggestion feed: the per-user
// exercise log, the shared catalog, and the identity rows. It keeps the
// DSN alongside the pool so schema migrations run through the same
// handle.
type DB struct {
	Pool *pgxpool.Pool
	dsn  string
}

// Open connects a pool and verifies the database is reachable.
func Open(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &DB{Pool: pool, dsn: dsn}, nil
}

// Migrate applies pending schema migrations from dir. A fully migrated
// schema is a no-op.
func (db *DB) Migrate(dir string) error {
	m, err := migrate.New("file://"+dir, db.dsn)
	if err != nil {
		return fmt.Errorf("opening migrations in %s: %w", dir, err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}
