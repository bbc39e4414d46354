package main

import (
	"strconv"
	"testing"

	"github.com/spf13/cobra"

	"github.com/gyeh/deptstats/internal/config"
)

func TestMaxCacheRowsFlag(t *testing.T) {
	tests := []struct {
		name string
		cmd  *cobra.Command
	}{
		{"plan", planCmd},
		{"ingest", ingestCmd},
		{"serve", serveCmd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.cmd.Flags().Lookup("max-cache-rows")
			if f == nil {
				t.Fatal("max-cache-rows not registered")
			}
			if want := strconv.Itoa(config.DefaultMaxCacheRows); f.DefValue != want {
				t.Errorf("default = %s, want %s", f.DefValue, want)
			}
		})
	}
}

func TestPlanMaxCacheRowsParses(t *testing.T) {
	saved := cfg.MaxCacheRows
	t.Cleanup(func() { cfg.MaxCacheRows = saved })

	if err := planCmd.Flags().Set("max-cache-rows", "5"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if cfg.MaxCacheRows != 5 {
		t.Errorf("cfg.MaxCacheRows = %d, want 5", cfg.MaxCacheRows)
	}
}
