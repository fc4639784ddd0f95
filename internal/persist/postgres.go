package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresOpTimeout = 5 * time.Second

const createSlotsTable = `
CREATE TABLE IF NOT EXISTS slots (
    name       TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)
`

// Postgres stores the blob as a row of the slots table.
type Postgres struct {
	pool *pgxpool.Pool
	key  string
}

// OpenPostgres connects to dsn and ensures the slots table exists.
func OpenPostgres(dsn, key string) (*Postgres, error) {
	ctx, cancel := context.WithTimeout(context.Background(), postgresOpTimeout)
	defer cancel()

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("persist: parse dsn: %w", err)
	}
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("persist: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("persist: ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, createSlotsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("persist: migrate slots: %w", err)
	}
	return &Postgres{pool: pool, key: key}, nil
}

func (p *Postgres) Read() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), postgresOpTimeout)
	defer cancel()
	var value string
	err := p.pool.QueryRow(ctx, `SELECT value FROM slots WHERE name = $1`, p.key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("persist: read slot: %w", err)
	}
	return []byte(value), nil
}

func (p *Postgres) Write(b []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), postgresOpTimeout)
	defer cancel()
	const query = `
INSERT INTO slots (name, value, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
`
	if _, err := p.pool.Exec(ctx, query, p.key, string(b), time.Now().UTC()); err != nil {
		return fmt.Errorf("persist: write slot: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
