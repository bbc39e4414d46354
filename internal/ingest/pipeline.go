package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/deptstats/internal/config"
	"github.com/gyeh/deptstats/internal/model"
	"github.com/gyeh/deptstats/internal/source"
	embedsql "github.com/gyeh/deptstats/internal/sql"
)

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// ErrNoDatabase is returned by operations that need the cache when the
// Service was built without a pool.
var ErrNoDatabase = errors.New("no database configured")

// Service ties the parse worker to the Postgres cache. A Service without a
// pool can still Parse.
type Service struct {
	pool       *pgxpool.Pool
	log        zerolog.Logger
	cfg        *config.Config
	dispatcher *Dispatcher

	// ingesting covers a whole Ingest, not just its parse phase, so two
	// ingests never race to activate batches.
	ingesting atomic.Bool
}

// NewService creates a Service. pool may be nil.
func NewService(pool *pgxpool.Pool, log zerolog.Logger, cfg *config.Config) *Service {
	return &Service{
		pool:       pool,
		log:        log,
		cfg:        cfg,
		dispatcher: NewDispatcher(log, cfg.Timeout),
	}
}

// Busy reports whether an ingest or a parse is in flight.
func (s *Service) Busy() bool {
	return s.ingesting.Load() || s.dispatcher.Busy()
}

// Parse runs text through the background worker with the configured
// synonyms and defaults. It returns ErrBusy if a parse is already running.
func (s *Service) Parse(ctx context.Context, text string) (Response, error) {
	return s.dispatcher.Do(ctx, Request{
		Text:             text,
		Synonyms:         s.cfg.Synonyms,
		Defaults:         s.cfg.Defaults,
		FlushTrailingRow: s.cfg.FlushTrailingRow,
	})
}

// Ingest parses src and replaces the cached data set of src.ID with the
// result: preflight → parse → bound check → stage → finalize → cleanup.
// Re-importing text identical to the active batch is skipped unless
// cfg.Force is set. It returns ErrBusy, before touching the database, while
// another Ingest on s is running.
func (s *Service) Ingest(ctx context.Context, src *source.Text) (*model.IngestSummary, error) {
	if s.pool == nil {
		return nil, ErrNoDatabase
	}
	if !s.ingesting.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.ingesting.Store(false)

	totalStart := time.Now()
	log := s.log.With().Str("source_id", src.ID).Logger()

	// Phase 1: Preflight
	log.Info().Str("origin", src.Origin).Msg("starting preflight")
	pf, err := Preflight(ctx, s.pool, log, src, s.cfg.Force)
	if err != nil {
		return nil, &PipelineError{Phase: "preflight", Err: err}
	}

	summary := &model.IngestSummary{
		SourceID:     src.ID,
		SourceSHA256: pf.SourceSHA256,
		BatchID:      pf.BatchID.String(),
		BytesRead:    int64(len(src.Raw)),
	}

	if pf.AlreadyLoaded {
		log.Info().
			Str("batch_id", pf.BatchID.String()).
			Str("sha256", pf.SourceSHA256).
			Msg("source unchanged since last import, skipping (use --force to re-import)")
		summary.AlreadyLoaded = true
		summary.RecordsStaged = pf.ActiveRecords
		summary.DurationTotal = time.Since(totalStart)
		return summary, nil
	}

	// Phase 2: Parse
	log.Info().Msg("parsing source")
	resp, err := s.Parse(ctx, src.Body)
	if err != nil {
		_ = UpdateStatus(ctx, s.pool, pf.BatchID, "failed")
		return nil, &PipelineError{Phase: "parse", Err: err}
	}
	summary.RowsTokenized = int64(resp.RowsRead)
	summary.RecordsBuilt = int64(len(resp.Records))
	summary.DurationParse = resp.Duration
	logCoverage(log, resp)

	// Phase 3: Bound check
	if limit := s.cfg.MaxCacheRows; limit > 0 && len(resp.Records) > limit {
		log.Warn().
			Int("records", len(resp.Records)).
			Int("max_cache_rows", limit).
			Msg("batch exceeds cache bound, not persisted")
		if err := UpdateStatus(ctx, s.pool, pf.BatchID, "oversize"); err != nil {
			return nil, &PipelineError{Phase: "bound", Err: err}
		}
		summary.DurationTotal = time.Since(totalStart)
		return summary, nil
	}

	// Phase 4: Stage
	log.Info().Msg("starting staging")
	if err := UpdateStatus(ctx, s.pool, pf.BatchID, "staging"); err != nil {
		return nil, &PipelineError{Phase: "stage", Err: err}
	}
	stageResult, err := Stage(ctx, s.pool, log, pf.BatchID, resp.Records)
	if err != nil {
		_ = UpdateStatus(ctx, s.pool, pf.BatchID, "failed")
		return nil, &PipelineError{Phase: "stage", Err: err}
	}
	summary.RecordsStaged = stageResult.RecordsStaged
	summary.DurationCopy = stageResult.Duration

	// Phase 5: Finalize
	log.Info().Msg("finalizing")
	finalizeDur, err := Finalize(ctx, s.pool, log, src.ID, pf.BatchID, stageResult.RecordsStaged)
	if err != nil {
		_ = UpdateStatus(ctx, s.pool, pf.BatchID, "failed")
		return nil, &PipelineError{Phase: "finalize", Err: err}
	}
	summary.DurationCommit = finalizeDur
	summary.Persisted = true

	// Phase 6: Prune superseded batches
	if !s.cfg.KeepHistory {
		pruned, err := Cleanup(ctx, s.pool, log, src.ID)
		if err != nil {
			log.Warn().Err(err).Msg("history cleanup failed (non-fatal)")
		}
		summary.RecordsPruned = pruned
	}

	summary.DurationTotal = time.Since(totalStart)
	log.Info().
		Int64("rows_tokenized", summary.RowsTokenized).
		Int64("records_built", summary.RecordsBuilt).
		Int64("records_staged", summary.RecordsStaged).
		Int64("records_pruned", summary.RecordsPruned).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("ingest pipeline complete")

	return summary, nil
}

// ActiveRecords returns the records of the active batch of sourceID in
// source row order. A source never ingested yields an empty slice.
func (s *Service) ActiveRecords(ctx context.Context, sourceID string) ([]model.Record, error) {
	if s.pool == nil {
		return nil, ErrNoDatabase
	}
	rows, err := s.pool.Query(ctx, embedsql.SelectActiveRecords, sourceID)
	if err != nil {
		return nil, fmt.Errorf("select active records: %w", err)
	}
	records, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.Record])
	if err != nil {
		return nil, fmt.Errorf("scan active records: %w", err)
	}
	if records == nil {
		records = []model.Record{}
	}
	return records, nil
}

func logCoverage(log zerolog.Logger, resp Response) {
	for _, b := range resp.Coverage {
		if !b.Matched() {
			log.Info().Str("field", string(b.Field)).Msg("no matching column, default applied")
			continue
		}
		log.Debug().
			Str("field", string(b.Field)).
			Str("alias", b.Alias).
			Int("column", b.Column).
			Msg("column bound")
	}
}
