package main

import (
	"github.com/spf13/cobra"

	"github.com/ASSERT-KTH/most-cited-se-papers/internal/cache"
)

var cacheDBPath string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the response cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show entry counts per cache namespace",
	RunE:  runCacheInfo,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear <namespace>",
	Short: "Clear one cache namespace (crossref, citations, or ranks)",
	Long: `Clear one cache namespace. This is the manual invalidation path:
the pipeline itself never expires entries. Cleared entries are
re-fetched on the next collect run.`,
	Args: cobra.ExactArgs(1),
	RunE: runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.PersistentFlags().StringVar(&cacheDBPath, "cache", "cache.db", "Cache database path")
}

// CacheInfoResponse is the JSON output of cache info.
type CacheInfoResponse struct {
	Path       string         `json:"path"`
	Namespaces map[string]int `json:"namespaces"`
}

func runCacheInfo(cmd *cobra.Command, args []string) error {
	store, err := cache.Open(cacheDBPath)
	if err != nil {
		exitWithError(ExitCacheError, "opening cache: %v", err)
	}
	defer store.Close()

	info := CacheInfoResponse{Path: cacheDBPath, Namespaces: make(map[string]int)}
	for _, ns := range cache.Namespaces {
		count, err := store.Count(ns)
		if err != nil {
			exitWithError(ExitCacheError, "counting namespace %s: %v", ns, err)
		}
		info.Namespaces[ns] = count
	}

	if humanOutput {
		outputHuman("Cache: %s\n", info.Path)
		for _, ns := range cache.Namespaces {
			outputHuman("  %-10s %d entries\n", ns, info.Namespaces[ns])
		}
		return nil
	}
	return outputJSON(info)
}

// CacheClearResponse is the JSON output of cache clear.
type CacheClearResponse struct {
	Namespace string `json:"namespace"`
	Removed   int64  `json:"removed"`
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	namespace := args[0]
	known := false
	for _, ns := range cache.Namespaces {
		if ns == namespace {
			known = true
			break
		}
	}
	if !known {
		exitWithError(ExitError, "unknown namespace %q (valid: %v)", namespace, cache.Namespaces)
	}

	store, err := cache.Open(cacheDBPath)
	if err != nil {
		exitWithError(ExitCacheError, "opening cache: %v", err)
	}
	defer store.Close()

	removed, err := store.Clear(namespace)
	if err != nil {
		exitWithError(ExitCacheError, "clearing namespace: %v", err)
	}

	if humanOutput {
		outputHuman("Removed %d entries from %s\n", removed, namespace)
		return nil
	}
	return outputJSON(CacheClearResponse{Namespace: namespace, Removed: removed})
}
