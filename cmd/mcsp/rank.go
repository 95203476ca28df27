package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ASSERT-KTH/most-cited-se-papers/internal/cache"
	"github.com/ASSERT-KTH/most-cited-se-papers/internal/collect"
	"github.com/ASSERT-KTH/most-cited-se-papers/internal/config"
	"github.com/ASSERT-KTH/most-cited-se-papers/internal/crossref"
	"github.com/ASSERT-KTH/most-cited-se-papers/internal/report"
	"github.com/ASSERT-KTH/most-cited-se-papers/internal/s2"
	"github.com/ASSERT-KTH/most-cited-se-papers/internal/venue"
)

var (
	rankConfigPath string
	rankCachePath  string
	rankReportDir  string
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rebuild ranked reports from the cache without network calls",
	Long: `Rebuild ranked reports purely from cached API responses. Targets
whose listings are not in the cache contribute nothing; papers whose
citation counts are not cached rank as unknown. Run collect first to
warm the cache.`,
	RunE: runRank,
}

func init() {
	rootCmd.AddCommand(rankCmd)
	rankCmd.Flags().StringVarP(&rankConfigPath, "config", "c", "", "Path to YAML config file")
	rankCmd.Flags().StringVar(&rankCachePath, "cache", "", "Cache database path (overrides config)")
	rankCmd.Flags().StringVarP(&rankReportDir, "out", "o", "", "Report output directory (overrides config)")
}

func runRank(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(rankConfigPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if rankCachePath != "" {
		cfg.CachePath = rankCachePath
	}
	if rankReportDir != "" {
		cfg.ReportDir = rankReportDir
	}
	// No network activity, so credentials are not required here.
	if len(cfg.Venues) == 0 {
		exitWithError(ExitConfigError, "invalid config: %v", config.ErrNoVenues)
	}

	venues, err := venue.Lookup(cfg.Venues)
	if err != nil {
		exitWithError(ExitConfigError, "invalid config: %v", err)
	}

	store, err := cache.Open(cfg.CachePath)
	if err != nil {
		exitWithError(ExitCacheError, "opening cache: %v", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metadata := crossref.NewFetcher(offlineChannel{}, store)
	citations := s2.NewFetcher(offlineChannel{}, store)

	orchestrator := collect.New(venues, cfg.YearStart, cfg.YearEnd, metadata, citations)
	result, err := orchestrator.Run(ctx)
	if err != nil {
		return fmt.Errorf("ranking run: %w", err)
	}

	paths, err := report.NewWriter(cfg.ReportDir, store).WriteAll(result)
	if err != nil {
		return fmt.Errorf("writing reports: %w", err)
	}

	summary := CollectSummary{
		Targets: len(result.Targets),
		Papers:  len(result.Ranking),
		Reports: paths,
	}
	for _, tr := range result.Targets {
		if tr.Failed {
			summary.FailedTargets++
		}
	}

	if humanOutput {
		outputHuman("Ranked %d papers across %d targets (%d not cached)\n",
			summary.Papers, summary.Targets, summary.FailedTargets)
		for _, p := range paths {
			outputHuman("  %s\n", p)
		}
		return nil
	}
	return outputJSON(summary)
}
