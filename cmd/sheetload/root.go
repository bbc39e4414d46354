package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/deptstats/internal/config"
	"github.com/gyeh/deptstats/internal/exitcode"
	"github.com/gyeh/deptstats/internal/logging"
)

// dotenvErr is set before any init runs, so flag defaults see .env values.
var dotenvErr = godotenv.Load()

var (
	cfg config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sheetload",
	Short: "Department spreadsheet export → normalized records loader",
	Long: "Fetches department billing exports (CSV files, URLs or Google Sheets), normalizes " +
		"them into typed records and caches them in Postgres for the dashboard.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("DEPTSTATS_DB_URL"), "Postgres connection string (or set DEPTSTATS_DB_URL)")
	pf.StringVar(&cfg.ConfigPath, "config", "", "YAML file with synonyms, defaults and revenue targets")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn or error")
}

// setup builds the logger and merges the config file under explicitly set flags.
func setup(cmd *cobra.Command, args []string) error {
	log = logging.Setup(cfg.LogFormat, cfg.LogLevel)
	if dotenvErr != nil && !os.IsNotExist(dotenvErr) {
		log.Warn().Err(dotenvErr).Msg("could not load .env")
	}

	if cfg.ConfigPath != "" {
		flags := cmd.Flags()
		flush, timeout, maxRows := cfg.FlushTrailingRow, cfg.Timeout, cfg.MaxCacheRows

		if err := cfg.LoadFromFile(cfg.ConfigPath); err != nil {
			log.Error().Err(err).Str("path", cfg.ConfigPath).Msg("config file invalid")
			os.Exit(exitcode.UsageError)
		}

		if flags.Changed("flush-trailing-row") {
			cfg.FlushTrailingRow = flush
		}
		if flags.Changed("timeout") {
			cfg.Timeout = timeout
		}
		if flags.Changed("max-cache-rows") {
			cfg.MaxCacheRows = maxRows
		}
	}
	cfg.ApplyDefaults()
	return nil
}

// addSourceFlags registers the flags that pick and parse one source.
func addSourceFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&cfg.FilePath, "file", "", "Path to a delimited text export")
	f.StringVar(&cfg.URL, "url", "", "URL of a delimited text export")
	f.StringVar(&cfg.SheetID, "sheet-id", os.Getenv("DEPTSTATS_SHEET_ID"), "Google Sheet id (or set DEPTSTATS_SHEET_ID)")
	f.StringVar(&cfg.SheetGID, "gid", "0", "Google Sheet tab id")
	f.StringVar(&cfg.SourceID, "source-id", "", "Cache key for the source (derived from the source when empty)")
	f.DurationVar(&cfg.Timeout, "timeout", config.DefaultTimeout, "Parse timeout (0 disables)")
	f.BoolVar(&cfg.FlushTrailingRow, "flush-trailing-row", false, "Keep a final row that lacks a line terminator")
}

// parseTimeout bounds source fetching on top of the worker's own deadline.
func parseTimeout() time.Duration {
	if cfg.Timeout == 0 {
		return 0
	}
	return 2 * cfg.Timeout
}
