package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storypal-server/internal/models"
)

// Compile-time check to ensure PgGateway implements Gateway
var _ Gateway = (*PgGateway)(nil)

// PgGateway is the remote relational backend. The kv contract keeps the
// schema to a single table; upserts make each Set atomic per key.
type PgGateway struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgGateway creates a Postgres-backed Gateway around an existing pool and
// ensures the kv table exists.
func NewPgGateway(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) (*PgGateway, error) {
	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS storypal_kv (key TEXT PRIMARY KEY, value BYTEA NOT NULL)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create storypal_kv table: %w", err)
	}
	return &PgGateway{pool: pool, logger: logger.Named("PgGateway")}, nil
}

func (g *PgGateway) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := g.pool.QueryRow(ctx, `SELECT value FROM storypal_kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		g.logger.Error("Failed to read key", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, nil
}

func (g *PgGateway) Set(ctx context.Context, key string, value []byte) error {
	_, err := g.pool.Exec(ctx,
		`INSERT INTO storypal_kv (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		key, value)
	if err != nil {
		g.logger.Error("Failed to write key", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

func (g *PgGateway) Delete(ctx context.Context, key string) error {
	_, err := g.pool.Exec(ctx, `DELETE FROM storypal_kv WHERE key = $1`, key)
	if err != nil {
		g.logger.Error("Failed to delete key", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}
