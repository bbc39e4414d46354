package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gyeh/deptstats/internal/config"
	"github.com/gyeh/deptstats/internal/db"
	"github.com/gyeh/deptstats/internal/exitcode"
	"github.com/gyeh/deptstats/internal/ingest"
	"github.com/gyeh/deptstats/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ingest and records HTTP API",
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&cfg.Addr, "addr", ":8080", "Listen address")
	f.DurationVar(&cfg.Timeout, "timeout", config.DefaultTimeout, "Parse timeout per ingest request (0 disables)")
	f.BoolVar(&cfg.FlushTrailingRow, "flush-trailing-row", false, "Keep a final row that lacks a line terminator")
	f.IntVar(&cfg.MaxCacheRows, "max-cache-rows", config.DefaultMaxCacheRows, "Do not persist batches with more records (0 disables)")
	f.BoolVar(&cfg.KeepHistory, "keep-history", false, "Keep records of superseded batches")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.ValidateDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	svc := ingest.NewService(pool, log, &cfg)
	srv := web.NewServer(svc, log, cfg.RevenueTargets)
	return srv.Run(ctx, cfg.Addr)
}
