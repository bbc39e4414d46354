package ingest

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	embedsql "github.com/gyeh/deptstats/internal/sql"
)

// Cleanup deletes the records of superseded batches of sourceID. The batch
// rows stay as an audit trail.
func Cleanup(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, sourceID string) (int64, error) {
	start := time.Now()

	tag, err := pool.Exec(ctx, embedsql.DeleteInactiveRecords, sourceID)
	if err != nil {
		return 0, err
	}

	log.Info().
		Int64("records_deleted", tag.RowsAffected()).
		Dur("duration", time.Since(start)).
		Msg("history cleanup complete")

	return tag.RowsAffected(), nil
}
