package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/deptstats/internal/normalize"
	"github.com/gyeh/deptstats/internal/source"
	embedsql "github.com/gyeh/deptstats/internal/sql"
)

// PreflightResult holds the context resolved before parsing.
type PreflightResult struct {
	// SourceSHA256 is the hex digest of the fetched bytes.
	SourceSHA256 string
	// BatchID identifies this ingestion. When AlreadyLoaded is set it is the
	// id of the existing active batch instead of a new one.
	BatchID uuid.UUID
	// AlreadyLoaded is true when the active batch of the source was built
	// from identical bytes and force mode is off.
	AlreadyLoaded bool
	// ActiveRecords is the record count of the existing active batch.
	ActiveRecords int64
}

// Preflight hashes the source, compares it to the active batch, and
// registers a new pending batch unless the source is unchanged.
func Preflight(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, src *source.Text, force bool) (*PreflightResult, error) {
	start := time.Now()
	sha := normalize.TextHash(src.Raw)

	var (
		activeID    uuid.UUID
		activeSHA   string
		activeCount int64
	)
	err := pool.QueryRow(ctx, embedsql.LookupActiveBatch, src.ID).Scan(&activeID, &activeSHA, &activeCount)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("lookup active batch: %w", err)
	case activeSHA == sha && !force:
		return &PreflightResult{
			SourceSHA256:  sha,
			BatchID:       activeID,
			AlreadyLoaded: true,
			ActiveRecords: activeCount,
		}, nil
	}

	batchID := uuid.New()
	if _, err := pool.Exec(ctx, embedsql.RegisterBatch, batchID, src.ID, sha, int64(len(src.Raw))); err != nil {
		return nil, fmt.Errorf("register batch: %w", err)
	}

	log.Info().
		Str("batch_id", batchID.String()).
		Str("sha256", sha).
		Int("bytes", len(src.Raw)).
		Dur("duration", time.Since(start)).
		Msg("preflight complete")

	return &PreflightResult{
		SourceSHA256: sha,
		BatchID:      batchID,
	}, nil
}
