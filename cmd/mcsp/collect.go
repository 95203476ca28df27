package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ASSERT-KTH/most-cited-se-papers/internal/cache"
	"github.com/ASSERT-KTH/most-cited-se-papers/internal/collect"
	"github.com/ASSERT-KTH/most-cited-se-papers/internal/config"
	"github.com/ASSERT-KTH/most-cited-se-papers/internal/crossref"
	"github.com/ASSERT-KTH/most-cited-se-papers/internal/fetch"
	"github.com/ASSERT-KTH/most-cited-se-papers/internal/report"
	"github.com/ASSERT-KTH/most-cited-se-papers/internal/s2"
	"github.com/ASSERT-KTH/most-cited-se-papers/internal/venue"
)

var (
	collectConfigPath string
	collectCachePath  string
	collectReportDir  string
	collectOffline    bool
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run the collection pipeline and emit ranked reports",
	Long: `Run the full collection pipeline: fetch paper listings for every
configured (venue, year) pair, enrich each distinct paper with its
citation count, and write citation-ranked report files.

All raw API responses are cached; a re-run against an unchanged cache
makes no network calls and reproduces the same ranking. With --offline
no network calls are made at all and cache misses contribute nothing.

Examples:
  mcsp collect --config config.yml
  mcsp collect --config config.yml --out ranks --cache cache.db
  mcsp collect --config config.yml --offline`,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)
	collectCmd.Flags().StringVarP(&collectConfigPath, "config", "c", "", "Path to YAML config file")
	collectCmd.Flags().StringVar(&collectCachePath, "cache", "", "Cache database path (overrides config)")
	collectCmd.Flags().StringVarP(&collectReportDir, "out", "o", "", "Report output directory (overrides config)")
	collectCmd.Flags().BoolVar(&collectOffline, "offline", false, "Serve everything from the cache; make no network calls")
}

// CollectSummary is the JSON output of the collect command.
type CollectSummary struct {
	Targets       int      `json:"targets"`
	FailedTargets int      `json:"failed_targets"`
	Papers        int      `json:"papers"`
	Reports       []string `json:"reports"`
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(collectConfigPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if collectCachePath != "" {
		cfg.CachePath = collectCachePath
	}
	if collectReportDir != "" {
		cfg.ReportDir = collectReportDir
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "invalid config: %v", err)
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

	metadata := crossref.NewFetcher(
		metadataChannel(cfg), store,
		crossref.WithMaxPages(cfg.MaxPages),
	)
	citations := s2.NewFetcher(citationChannel(cfg), store)

	orchestrator := collect.New(venues, cfg.YearStart, cfg.YearEnd, metadata, citations)
	result, err := orchestrator.Run(ctx)
	if err != nil {
		return fmt.Errorf("collection run: %w", err)
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
		outputHuman("Collected %d papers across %d targets (%d failed)\n",
			summary.Papers, summary.Targets, summary.FailedTargets)
		for _, p := range paths {
			outputHuman("  %s\n", p)
		}
		return nil
	}
	return outputJSON(summary)
}

// metadataChannel builds the Crossref channel. Crossref asks polite
// clients to identify themselves with a mailto User-Agent.
func metadataChannel(cfg *config.Config) crossref.Getter {
	if collectOffline {
		return offlineChannel{}
	}
	opts := []fetch.Option{
		fetch.WithRetry(cfg.MaxRetryAttempts, cfg.BackoffBase(), cfg.BackoffMultiplier),
	}
	if cfg.CrossrefMailto != "" {
		opts = append(opts, fetch.WithHeader("User-Agent",
			fmt.Sprintf("mcsp/%s (mailto:%s)", Version, cfg.CrossrefMailto)))
	}
	return fetch.NewChannel(crossref.APIName, cfg.CrossrefInterval(), opts...)
}

// citationChannel builds the Semantic Scholar channel.
func citationChannel(cfg *config.Config) s2.Getter {
	if collectOffline {
		return offlineChannel{}
	}
	return fetch.NewChannel(s2.APIName, cfg.S2Interval(),
		fetch.WithRetry(cfg.MaxRetryAttempts, cfg.BackoffBase(), cfg.BackoffMultiplier),
		fetch.WithHeader("x-api-key", cfg.S2APIKey),
	)
}

// offlineChannel refuses all network traffic so the pipeline runs
// purely from the cache.
type offlineChannel struct{}

func (offlineChannel) Get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	log.Printf("offline: skipping %s", rawURL)
	return nil, fmt.Errorf("offline mode: %w", fetch.ErrNetworkError)
}
