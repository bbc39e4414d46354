package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/deptstats/internal/db"
	"github.com/gyeh/deptstats/internal/model"
	embedsql "github.com/gyeh/deptstats/internal/sql"
)

const copyBufferSize = 1024

// StageResult holds metrics from the staging phase.
type StageResult struct {
	RecordsStaged int64
	Duration      time.Duration
}

// Stage COPY-loads records into dash.records under batchID via a
// channel-backed CopyFromSource. Row numbers follow slice order.
func Stage(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, batchID uuid.UUID, records []model.Record) (*StageResult, error) {
	start := time.Now()

	ch := make(chan *model.Record, copyBufferSize)
	errCh := make(chan error, 1)

	// Producer goroutine: feed records to the COPY writer
	go func() {
		defer close(ch)
		for i := range records {
			select {
			case ch <- &records[i]:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
		errCh <- nil
	}()

	src := db.NewRecordSource(batchID, ch)
	staged, err := pool.CopyFrom(ctx,
		pgx.Identifier{"dash", "records"},
		model.RecordColumns(),
		src,
	)
	if err != nil {
		// Unblock the producer if COPY gave up early.
		for range ch {
		}
	}

	if prodErr := <-errCh; prodErr != nil {
		return nil, fmt.Errorf("stage producer: %w", prodErr)
	}
	if err != nil {
		return nil, fmt.Errorf("stage copy: %w", err)
	}
	if staged != src.Rows() || staged != int64(len(records)) {
		return nil, fmt.Errorf("stage copy: server stored %d rows, sent %d of %d records",
			staged, src.Rows(), len(records))
	}

	dur := time.Since(start)
	log.Info().
		Int64("records_staged", staged).
		Str("duration", dur.String()).
		Float64("rows_per_sec", float64(staged)/dur.Seconds()).
		Msg("staging complete")

	return &StageResult{RecordsStaged: staged, Duration: dur}, nil
}

// UpdateStatus sets the status of a batch.
func UpdateStatus(ctx context.Context, pool *pgxpool.Pool, batchID uuid.UUID, status string) error {
	_, err := pool.Exec(ctx, embedsql.UpdateBatchStatus, batchID, status)
	return err
}
