package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres keeps save slots in a PostgreSQL table.
type Postgres struct {
	Pool *pgxpool.Pool
}

// OpenPostgres creates a connection pool and checks connectivity.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Postgres{Pool: pool}, nil
}

func (p *Postgres) ReadSlot(ctx context.Context, slot string) ([]byte, error) {
	var data []byte
	err := p.Pool.QueryRow(ctx, `SELECT data FROM save_slots WHERE slot = $1`, slot).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading slot %s: %w", slot, err)
	}
	return data, nil
}

func (p *Postgres) WriteSlot(ctx context.Context, slot string, data []byte) error {
	_, err := p.Pool.Exec(ctx, `
		INSERT INTO save_slots (slot, data, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (slot) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`, slot, data)
	if err != nil {
		return fmt.Errorf("writing slot %s: %w", slot, err)
	}
	return nil
}

func (p *Postgres) DeleteSlot(ctx context.Context, slot string) error {
	if _, err := p.Pool.Exec(ctx, `DELETE FROM save_slots WHERE slot = $1`, slot); err != nil {
		return fmt.Errorf("deleting slot %s: %w", slot, err)
	}
	return nil
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	p.Pool.Close()
	return nil
}
