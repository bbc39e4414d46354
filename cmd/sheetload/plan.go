package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/deptstats/internal/config"
	"github.com/gyeh/deptstats/internal/header"
	"github.com/gyeh/deptstats/internal/ingest"
	"github.com/gyeh/deptstats/internal/normalize"
	"github.com/gyeh/deptstats/internal/report"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Dry-run parse with header coverage and totals (no writes)",
	RunE:  runPlan,
}

func init() {
	addSourceFlags(planCmd)
	planCmd.Flags().IntVar(&cfg.MaxCacheRows, "max-cache-rows", config.DefaultMaxCacheRows, "Warn when a batch has more records (0 disables)")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	txt := loadSource(ctx)
	svc := ingest.NewService(nil, log, &cfg)

	resp, err := svc.Parse(ctx, txt.Body)
	if err != nil {
		log.Error().Err(err).Msg("parse failed")
		os.Exit(exitForParseError(err))
	}

	fmt.Println("=== sheetload plan ===")
	fmt.Printf("Source:     %s\n", txt.ID)
	fmt.Printf("Origin:     %s\n", txt.Origin)
	fmt.Printf("SHA-256:    %s\n", normalize.TextHash(txt.Raw))
	fmt.Printf("Size:       %d bytes\n", len(txt.Raw))
	fmt.Printf("Rows:       %d (including header)\n", resp.RowsRead)
	fmt.Printf("Records:    %d\n", len(resp.Records))
	fmt.Printf("Parse time: %s\n", resp.Duration)
	fmt.Println()
	printCoverage(resp.Coverage, resp.Unused)

	s := report.Summarize(resp.Records, cfg.RevenueTargets)
	fmt.Println()
	fmt.Printf("Total revenue: %.0f\n", s.Revenue)
	if s.Target > 0 {
		fmt.Printf("Target:        %.0f (%.1f%%)\n", s.Target, s.Progress)
	}
	fmt.Println("Revenue by department:")
	for _, d := range s.Departments {
		if d.Records == 0 {
			continue
		}
		line := fmt.Sprintf("  %-14s %6d records  %15.0f", d.Code, d.Records, d.Revenue)
		if d.Target > 0 {
			line += fmt.Sprintf("  %5.1f%% of target", d.Progress)
		}
		fmt.Println(line)
	}
	if lagging := s.Lagging(); len(lagging) > 0 {
		fmt.Println("Below pace:")
		for _, d := range lagging {
			fmt.Printf("  %s (%.1f%%)\n", d.Name, d.Progress)
		}
	}

	if cfg.MaxCacheRows > 0 && len(resp.Records) > cfg.MaxCacheRows {
		fmt.Printf("\nWARNING: %d records exceed max cache rows %d; ingest will not persist this batch\n",
			len(resp.Records), cfg.MaxCacheRows)
	}
	return nil
}

func printCoverage(coverage []header.Binding, unused []string) {
	fmt.Println("Header coverage:")
	if len(coverage) == 0 {
		fmt.Println("  (no header row)")
		return
	}
	for _, b := range coverage {
		if b.Matched() {
			fmt.Printf("  %-14s column %-3d (%s)\n", b.Field, b.Column, b.Alias)
		} else {
			fmt.Printf("  %-14s default %q\n", b.Field, cfg.Defaults.For(b.Field))
		}
	}
	if len(unused) > 0 {
		fmt.Println("Unused columns (add them to synonyms to bind them):")
		for _, key := range unused {
			fmt.Printf("  %s\n", key)
		}
	}
}
