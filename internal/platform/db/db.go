package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"perfeval/internal/platform/config"
)

// Connect opens the shared pgx pool. Connection counts are modest; the
// workload is short read-modify-write transactions.
func Connect(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	poolCfg.MaxConns = 8
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 15 * time.Minute
	return pgxpool.NewWithConfig(ctx, poolCfg)
}
