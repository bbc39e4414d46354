package main

import (
	"context"
	"errors"
	"os"

	"github.com/gyeh/deptstats/internal/exitcode"
	"github.com/gyeh/deptstats/internal/ingest"
	"github.com/gyeh/deptstats/internal/source"
)

// commandContext returns the context for one command run, bounded by
// parseTimeout when a timeout is configured.
func commandContext() (context.Context, context.CancelFunc) {
	if d := parseTimeout(); d > 0 {
		return context.WithTimeout(context.Background(), d)
	}
	return context.WithCancel(context.Background())
}

// loadSource validates the source flags and fetches the source, exiting on
// failure.
func loadSource(ctx context.Context) *source.Text {
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	var loader source.Loader
	txt, err := loader.Load(ctx, &cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to load source")
		os.Exit(exitcode.SourceError)
	}
	log.Info().
		Str("source_id", txt.ID).
		Str("origin", txt.Origin).
		Int("bytes", len(txt.Raw)).
		Msg("source loaded")
	return txt
}

// exitForParseError maps a worker failure to an exit code.
func exitForParseError(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return exitcode.Timeout
	case errors.Is(err, ingest.ErrBusy):
		return exitcode.Busy
	}
	return exitcode.IngestError
}
