package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/deptstats/internal/config"
	"github.com/gyeh/deptstats/internal/db"
	"github.com/gyeh/deptstats/internal/exitcode"
	"github.com/gyeh/deptstats/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Parse a source and replace its cached records in the database",
	RunE:  runIngest,
}

func init() {
	addSourceFlags(ingestCmd)
	f := ingestCmd.Flags()
	f.BoolVar(&cfg.Force, "force", false, "Re-import even if the source is unchanged")
	f.BoolVar(&cfg.KeepHistory, "keep-history", false, "Keep records of superseded batches")
	f.IntVar(&cfg.MaxCacheRows, "max-cache-rows", config.DefaultMaxCacheRows, "Do not persist batches with more records (0 disables)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	txt := loadSource(ctx)

	svc := ingest.NewService(pool, log, &cfg)
	summary, err := svc.Ingest(ctx, txt)
	if err != nil {
		var pe *ingest.PipelineError
		if errors.As(err, &pe) {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("ingest failed")
			pool.Close()
			if errors.Is(pe.Err, ingest.ErrBusy) {
				os.Exit(exitcode.Busy)
			}
			switch pe.Phase {
			case "preflight":
				os.Exit(exitcode.ValidationError)
			case "parse":
				os.Exit(exitForParseError(pe.Err))
			case "stage":
				os.Exit(exitcode.CopyError)
			default:
				os.Exit(exitcode.IngestError)
			}
		}
		log.Error().Err(err).Msg("ingest failed")
		pool.Close()
		if errors.Is(err, ingest.ErrBusy) {
			os.Exit(exitcode.Busy)
		}
		os.Exit(exitcode.IngestError)
	}

	switch {
	case summary.AlreadyLoaded:
		fmt.Printf("Source %s unchanged: %d records already active\n", summary.SourceID, summary.RecordsStaged)
	case !summary.Persisted:
		fmt.Printf("Source %s parsed into %d records but not persisted (over max cache rows %d)\n",
			summary.SourceID, summary.RecordsBuilt, cfg.MaxCacheRows)
	default:
		fmt.Printf("Ingest complete: %d records active for %s, %d superseded records pruned (%.1fs)\n",
			summary.RecordsStaged, summary.SourceID, summary.RecordsPruned, summary.DurationTotal.Seconds())
	}
	return nil
}
