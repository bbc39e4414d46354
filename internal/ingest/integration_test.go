//go:build integration

package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gyeh/deptstats/internal/config"
	"github.com/gyeh/deptstats/internal/db"
	"github.com/gyeh/deptstats/internal/logging"
	"github.com/gyeh/deptstats/internal/source"
	embedsql "github.com/gyeh/deptstats/internal/sql"
)

const (
	testPort     = 15433
	testDB       = "dashtest"
	testUser     = "postgres"
	testPassword = "postgres"
)

var testDSN string

func TestMain(m *testing.M) {
	testDSN = fmt.Sprintf("postgresql://%s:%s@localhost:%d/%s?sslmode=disable",
		testUser, testPassword, testPort, testDB)

	pg := embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(uint32(testPort)).
			Database(testDB).
			Username(testUser).
			Password(testPassword).
			Version(embeddedpostgres.V16).
			StartTimeout(30 * time.Second),
	)
	if err := pg.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start embedded postgres: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	if err := pg.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to stop embedded postgres: %v\n", err)
	}
	os.Exit(code)
}

// setupDB returns a pool on a freshly migrated schema.
func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pool, err := db.NewPool(ctx, testDSN)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	for _, stmt := range []string{
		"DROP SCHEMA IF EXISTS dash CASCADE",
		"DROP TABLE IF EXISTS public.sheetload_migrations",
	} {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}
	if err := db.ApplyMigrations(ctx, pool, logging.Setup("text", "warn")); err != nil {
		pool.Close()
		t.Fatalf("migrations: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func testConfig() *config.Config {
	cfg := &config.Config{MaxCacheRows: config.DefaultMaxCacheRows}
	cfg.ApplyDefaults()
	return cfg
}

const deptCSV = "Ngay,Ma Khoa,Ten BS,Thanh Tien\n" +
	"05/03/2026,NOI_TONG_QUAT,BS. A,150000\n" +
	"2026-03-06,NHI,BS. B,\"1,250\"\n" +
	",NGOAI,BS. C,\n"

func countRows(t *testing.T, pool *pgxpool.Pool, query string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := pool.QueryRow(context.Background(), query, args...).Scan(&n); err != nil {
		t.Fatalf("%s: %v", query, err)
	}
	return n
}

func TestIngest_RoundTrip(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	svc := NewService(pool, logging.Setup("text", "warn"), testConfig())

	summary, err := svc.Ingest(ctx, source.FromBytes("khoa", "test", []byte(deptCSV)))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if !summary.Persisted || summary.RecordsStaged != 3 || summary.RowsTokenized != 4 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	records, err := svc.ActiveRecords(ctx, "khoa")
	if err != nil {
		t.Fatalf("ActiveRecords: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].ID != "r-1" || records[0].Date != "2026-03-05" || records[0].Revenue != 150000 {
		t.Errorf("record 0 = %+v", records[0])
	}
	if records[1].DeptCode != "NHI" || records[1].Revenue != 1250 {
		t.Errorf("record 1 = %+v", records[1])
	}
	if records[2].Revenue != 0 || records[2].DoctorName != "BS. C" {
		t.Errorf("record 2 = %+v", records[2])
	}
}

func TestIngest_SkipsUnchangedSource(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	svc := NewService(pool, logging.Setup("text", "warn"), testConfig())

	first, err := svc.Ingest(ctx, source.FromBytes("khoa", "test", []byte(deptCSV)))
	if err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	second, err := svc.Ingest(ctx, source.FromBytes("khoa", "test", []byte(deptCSV)))
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if !second.AlreadyLoaded || second.BatchID != first.BatchID {
		t.Errorf("expected skip with batch %s, got %+v", first.BatchID, second)
	}
	if n := countRows(t, pool, "SELECT count(*) FROM dash.batches"); n != 1 {
		t.Errorf("expected 1 batch, got %d", n)
	}
}

func TestIngest_ReplacesActiveBatch(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	svc := NewService(pool, logging.Setup("text", "warn"), testConfig())

	if _, err := svc.Ingest(ctx, source.FromBytes("khoa", "test", []byte(deptCSV))); err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	updated := "Ngay,Thanh Tien\n2026-04-01,10\n"
	summary, err := svc.Ingest(ctx, source.FromBytes("khoa", "test", []byte(updated)))
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if summary.RecordsPruned != 3 {
		t.Errorf("expected 3 pruned records, got %d", summary.RecordsPruned)
	}

	records, err := svc.ActiveRecords(ctx, "khoa")
	if err != nil {
		t.Fatalf("ActiveRecords: %v", err)
	}
	if len(records) != 1 || records[0].Date != "2026-04-01" {
		t.Fatalf("unexpected active records: %+v", records)
	}
	if n := countRows(t, pool, "SELECT count(*) FROM dash.batches WHERE source_id = $1 AND active", "khoa"); n != 1 {
		t.Errorf("expected one active batch, got %d", n)
	}
}

func TestIngest_KeepHistory(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	cfg := testConfig()
	cfg.KeepHistory = true
	svc := NewService(pool, logging.Setup("text", "warn"), cfg)

	for _, body := range []string{deptCSV, "Ngay,Thanh Tien\n2026-04-01,10\n"} {
		if _, err := svc.Ingest(ctx, source.FromBytes("khoa", "test", []byte(body))); err != nil {
			t.Fatalf("Ingest: %v", err)
		}
	}
	if n := countRows(t, pool, "SELECT count(*) FROM dash.records"); n != 4 {
		t.Errorf("expected superseded records kept, got %d rows", n)
	}
}

func TestIngest_OversizeNotPersisted(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	cfg := testConfig()
	cfg.MaxCacheRows = 5
	svc := NewService(pool, logging.Setup("text", "warn"), cfg)

	var b strings.Builder
	b.WriteString("Ngay,Thanh Tien\n")
	for i := 0; i < 6; i++ {
		b.WriteString("2026-01-0" + strconv.Itoa(i+1) + ",1\n")
	}
	summary, err := svc.Ingest(ctx, source.FromBytes("big", "test", []byte(b.String())))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if summary.Persisted || summary.RecordsBuilt != 6 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if n := countRows(t, pool, "SELECT count(*) FROM dash.records"); n != 0 {
		t.Errorf("expected no cached records, got %d", n)
	}
	var status string
	if err := pool.QueryRow(ctx, "SELECT status FROM dash.batches WHERE source_id = 'big'").Scan(&status); err != nil {
		t.Fatalf("batch status: %v", err)
	}
	if status != "oversize" {
		t.Errorf("status = %q, want oversize", status)
	}
}

func TestActiveRecords_UnknownSource(t *testing.T) {
	pool := setupDB(t)
	svc := NewService(pool, logging.Setup("text", "warn"), testConfig())

	records, err := svc.ActiveRecords(context.Background(), "missing")
	if err != nil {
		t.Fatalf("ActiveRecords: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("expected empty slice, got %#v", records)
	}
}

func TestIngest_OverlappingIngestIsBusy(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	svc := NewService(pool, logging.Setup("text", "warn"), testConfig())

	// Hold the first ingest inside its parse phase.
	started := make(chan struct{})
	release := make(chan struct{})
	svc.dispatcher.run = func(ctx context.Context, req Request, now func() time.Time) Response {
		close(started)
		<-release
		return parse(ctx, req, now)
	}

	var (
		wg       sync.WaitGroup
		firstErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = svc.Ingest(ctx, source.FromBytes("khoa", "test", []byte(deptCSV)))
	}()
	<-started

	if !svc.Busy() {
		t.Error("service should report busy during an ingest")
	}
	_, err := svc.Ingest(ctx, source.FromBytes("khoa", "test", []byte("Ngay,Thanh Tien\n2026-04-01,10\n")))
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("second Ingest: expected ErrBusy, got %v", err)
	}
	if n := countRows(t, pool, "SELECT count(*) FROM dash.batches"); n != 1 {
		t.Errorf("rejected ingest must not register a batch, got %d batches", n)
	}

	close(release)
	wg.Wait()
	if firstErr != nil {
		t.Fatalf("first Ingest: %v", firstErr)
	}

	// A later ingest runs normally.
	svc.dispatcher.run = parse
	if _, err := svc.Ingest(ctx, source.FromBytes("khoa", "test", []byte("Ngay,Thanh Tien\n2026-04-01,10\n"))); err != nil {
		t.Fatalf("third Ingest: %v", err)
	}
}

func TestIngest_SourceLockedElsewhereIsBusy(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	svc := NewService(pool, logging.Setup("text", "warn"), testConfig())

	if _, err := svc.Ingest(ctx, source.FromBytes("khoa", "test", []byte(deptCSV))); err != nil {
		t.Fatalf("first Ingest: %v", err)
	}

	// Another process finalizing the same source holds its advisory lock.
	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback(ctx)
	var locked bool
	if err := tx.QueryRow(ctx, embedsql.LockSource, "khoa").Scan(&locked); err != nil || !locked {
		t.Fatalf("take lock: locked=%v err=%v", locked, err)
	}

	_, err = svc.Ingest(ctx, source.FromBytes("khoa", "test", []byte("Ngay,Thanh Tien\n2026-04-01,10\n")))
	var pe *PipelineError
	if !errors.As(err, &pe) || pe.Phase != "finalize" || !errors.Is(err, ErrBusy) {
		t.Fatalf("expected busy finalize error, got %v", err)
	}

	records, err := svc.ActiveRecords(ctx, "khoa")
	if err != nil {
		t.Fatalf("ActiveRecords: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("first batch should stay active, got %d records", len(records))
	}
	if n := countRows(t, pool, "SELECT count(*) FROM dash.batches WHERE source_id = 'khoa' AND active"); n != 1 {
		t.Errorf("expected one active batch, got %d", n)
	}
}
