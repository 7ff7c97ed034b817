package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded analysis runs of a repository",
	Run: func(cmd *cobra.Command, args []string) {
		repoID, _ := cmd.Flags().GetString("repo")
		limit, _ := cmd.Flags().GetInt("limit")
		app.warnEphemeralStore(os.Stderr, "run history")

		runs, err := app.store.ListAnalysisRuns(cmd.Context(), repoID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if limit > 0 && len(runs) > limit {
			runs = runs[len(runs)-limit:]
		}
		printRuns(os.Stdout, repoID, runs)
	},
}

func init() {
	historyCmd.Flags().StringP("repo", "r", "", "Repository as owner/name")
	historyCmd.Flags().IntP("limit", "n", 10, "Number of most recent runs to show (0 for all)")
	_ = historyCmd.MarkFlagRequired("repo")
	rootCmd.AddCommand(historyCmd)
}
