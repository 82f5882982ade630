package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS flights (
		id              TEXT PRIMARY KEY,
		airline         TEXT NOT NULL,
		origin          CHAR(3) NOT NULL,
		destination     CHAR(3) NOT NULL,
		departure_time  TIMESTAMPTZ NOT NULL,
		arrival_time    TIMESTAMPTZ NOT NULL,
		base_fare       DOUBLE PRECISION NOT NULL,
		total_seats     INTEGER NOT NULL,
		available_seats INTEGER NOT NULL,
		tier            TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS fare_history (
		id              BIGSERIAL PRIMARY KEY,
		flight_id       TEXT NOT NULL REFERENCES flights(id) ON DELETE CASCADE,
		recorded_at     TIMESTAMPTZ NOT NULL,
		price           DOUBLE PRECISION NOT NULL,
		available_seats INTEGER NOT NULL,
		demand_level    TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_fare_history_flight ON fare_history (flight_id, recorded_at);
`

// Connect opens a connection pool and verifies it with a ping
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the flight and fare history tables if they are missing
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
