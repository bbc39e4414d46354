package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/deptstats/internal/exitcode"
	"github.com/gyeh/deptstats/internal/ingest"
	"github.com/gyeh/deptstats/internal/parquetio"
	"github.com/gyeh/deptstats/internal/report"
)

var exportFilter report.Filter

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Parse a source and write its records to a Parquet file",
	RunE:  runExport,
}

func init() {
	addSourceFlags(exportCmd)
	f := exportCmd.Flags()
	f.StringVar(&cfg.OutPath, "out", "", "Output Parquet path (required)")
	f.StringVar(&exportFilter.From, "from", "", "Earliest date to keep (YYYY-MM-DD)")
	f.StringVar(&exportFilter.To, "to", "", "Latest date to keep (YYYY-MM-DD)")
	f.StringVar(&exportFilter.DeptCode, "dept", report.Any, "Department code to keep")
	_ = exportCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	txt := loadSource(ctx)
	svc := ingest.NewService(nil, log, &cfg)

	resp, err := svc.Parse(ctx, txt.Body)
	if err != nil {
		log.Error().Err(err).Msg("parse failed")
		os.Exit(exitForParseError(err))
	}

	records := exportFilter.Apply(resp.Records)
	if err := parquetio.WriteFile(cfg.OutPath, txt.ID, records); err != nil {
		log.Error().Err(err).Str("out", cfg.OutPath).Msg("export failed")
		os.Exit(exitcode.IngestError)
	}
	if err := parquetio.Verify(cfg.OutPath, txt.ID, records); err != nil {
		log.Error().Err(err).Str("out", cfg.OutPath).Msg("export verification failed")
		os.Exit(exitcode.IngestError)
	}

	fmt.Printf("Exported %d of %d records to %s\n", len(records), len(resp.Records), cfg.OutPath)
	return nil
}
