package main

import (
	"fmt"
	"os"

	"issue-analyzer/config"
	"issue-analyzer/internal/logger"

	"github.com/spf13/cobra"
)

var (
	configPath string
	app        *application
)

var rootCmd = &cobra.Command{
	Use:   "issue-analyzer",
	Short: "Classify, risk-score and deduplicate repository issues",
	Long: `issue-analyzer ingests the issues of a repository, predicts a priority for
each one with a Naive Bayes classifier, turns the prediction into a 0-10 risk
score and reports pairs of issues that look like duplicates.

Configuration is read from config.yaml (or CONFIG_PATH, or --config) and can be
overridden with environment variables such as STORE_BACKEND, REDIS_HOST and
GITHUB_TOKEN.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		log, err := logger.New(cfg.LogMode)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create logger: %v\n", err)
			os.Exit(1)
		}

		withStore := cmd.Annotations[annotationStore] != storeNone
		app, err = newApplication(cmd.Context(), cfg, log, withStore)
		if err != nil {
			log.Error("startup failed", "error", err)
			log.Sync()
			os.Exit(1)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app != nil {
			app.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the YAML config file (default config.yaml or $CONFIG_PATH)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
