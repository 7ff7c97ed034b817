package main

import (
	"errors"
	"fmt"
	"os"

	"issue-analyzer/internal/repositories"
	"issue-analyzer/internal/services"

	"github.com/spf13/cobra"
)

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "Detect duplicate issues within a repository",
	Long: `Compare every pair of a repository's stored issues and report those whose
text similarity reaches the configured threshold (analysis.duplicate_threshold,
0.40 by default).

Examples:
  issue-analyzer duplicates --repo octo/app --sync
  issue-analyzer duplicates --repo octo/app`,
	Run: func(cmd *cobra.Command, args []string) {
		repoID, _ := cmd.Flags().GetString("repo")
		doSync, _ := cmd.Flags().GetBool("sync")
		ctx := cmd.Context()

		if doSync {
			if _, err := app.syncRepository(ctx, repoID); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}

		pairs, err := app.service.DetectDuplicates(ctx, repoID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				fmt.Fprintf(os.Stderr, "Error: repository %s is not in the store; run with --sync\n", repoID)
				os.Exit(1)
			}
			var persistErr *services.PersistenceError
			if errors.As(err, &persistErr) {
				printDuplicates(os.Stdout, pairs)
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printDuplicates(os.Stdout, pairs)
	},
}

func init() {
	duplicatesCmd.Flags().StringP("repo", "r", "", "Repository as owner/name")
	duplicatesCmd.Flags().Bool("sync", false, "Fetch issues from the source before detecting")
	_ = duplicatesCmd.MarkFlagRequired("repo")
	rootCmd.AddCommand(duplicatesCmd)
}
