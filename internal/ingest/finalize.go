package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	embedsql "github.com/gyeh/deptstats/internal/sql"
)

// Finalize makes batchID the active batch of sourceID in one transaction, so
// readers see either the old data set or the new one, then runs ANALYZE.
// The transaction holds a per-source advisory lock; if another process is
// finalizing the same source, Finalize returns ErrBusy.
func Finalize(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, sourceID string, batchID uuid.UUID, recordCount int64) (time.Duration, error) {
	start := time.Now()

	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		var locked bool
		if err := tx.QueryRow(ctx, embedsql.LockSource, sourceID).Scan(&locked); err != nil {
			return fmt.Errorf("lock source: %w", err)
		}
		if !locked {
			return ErrBusy
		}

		tag, err := tx.Exec(ctx, embedsql.DeactivateOlderBatches, sourceID, batchID)
		if err != nil {
			return fmt.Errorf("deactivate older batches: %w", err)
		}
		log.Info().Int64("deactivated", tag.RowsAffected()).Msg("older batches deactivated")

		if _, err := tx.Exec(ctx, embedsql.ActivateBatch, batchID, recordCount); err != nil {
			return fmt.Errorf("activate batch: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.Info().Str("batch_id", batchID.String()).Msg("batch activated")

	if _, err := pool.Exec(ctx, embedsql.AnalyzeRecords); err != nil {
		return 0, fmt.Errorf("analyze records: %w", err)
	}
	log.Debug().Msg("ANALYZE complete")

	return time.Since(start), nil
}
