package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ApplicationName is reported to the server for every sheetload session. It
// is what pg_stat_activity shows while a COPY or an advisory lock is held.
const ApplicationName = "sheetload"

const pingTimeout = 10 * time.Second

// NewPool connects to dsn and checks the server answers.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := poolConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// poolConfig parses dsn and fills in the session parameters loads rely on.
// application_name and timezone given in the DSN are kept.
func poolConfig(dsn string) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	params := cfg.ConnConfig.RuntimeParams
	if params["application_name"] == "" {
		params["application_name"] = ApplicationName
	}
	// Batch timestamps then print in the same zone as the processing date.
	if params["timezone"] == "" {
		params["timezone"] = "UTC"
	}
	// COPY of a large export can outlive a server default statement_timeout.
	params["statement_timeout"] = "0"

	return cfg, nil
}
