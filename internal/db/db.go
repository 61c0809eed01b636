// Package db provides PostgreSQL access to the exercise catalogue.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// schemaSQL mirrors the production table so a local database can be bootstrapped.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS exercises (
	id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	title          TEXT,
	chapter        TEXT,
	level          TEXT,
	category       TEXT,
	document_url   TEXT UNIQUE,
	is_premium     BOOLEAN NOT NULL DEFAULT FALSE,
	exercise_count INTEGER CHECK (exercise_count >= 0),
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// EnsureSchema creates the exercises table when it does not exist yet
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
