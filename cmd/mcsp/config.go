package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ASSERT-KTH/most-cited-se-papers/internal/config"
)

var (
	configForce    bool
	showConfigPath string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage mcsp configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Long: `Write a default configuration file. The Semantic Scholar API key is
left empty and must be filled in (or provided via ` + config.EnvS2APIKey + `)
before collect will run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite an existing file")
	configShowCmd.Flags().StringVarP(&showConfigPath, "config", "c", "", "Configuration file path")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultPath
	if len(args) == 1 {
		path = args[0]
	}

	if !configForce {
		if _, err := os.Stat(path); err == nil {
			exitWithError(ExitConfigError, "%s already exists (use --force to overwrite)", path)
		}
	}

	cfg := config.Default()
	if err := cfg.Save(path); err != nil {
		exitWithError(ExitConfigError, "writing config: %v", err)
	}

	if humanOutput {
		outputHuman("Wrote %s\n", path)
		return nil
	}
	return outputJSON(map[string]string{"path": path})
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(showConfigPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	// Never print credentials.
	shown := *cfg
	if shown.S2APIKey != "" {
		shown.S2APIKey = "(set)"
	}

	if humanOutput {
		outputHuman("Venues:    %v\n", shown.Venues)
		outputHuman("Years:     %d-%d\n", shown.YearStart, shown.YearEnd)
		outputHuman("Cache:     %s\n", shown.CachePath)
		outputHuman("Reports:   %s\n", shown.ReportDir)
		outputHuman("S2 key:    %s\n", shown.S2APIKey)
		return nil
	}
	return outputJSON(shown)
}
