package main

import (
	"errors"
	"fmt"
	"os"

	"issue-analyzer/internal/repositories"
	"issue-analyzer/internal/services"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Classify, score and deduplicate a repository's issues",
	Long: `Run the full pipeline over the issues stored for a repository: predict a
priority and risk score for each issue, detect duplicate pairs and record the
run in the repository history.

Examples:
  issue-analyzer analyze --repo octo/app --sync
  issue-analyzer analyze --repo octo/app`,
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

		result, err := app.service.RunPipeline(ctx, repoID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				fmt.Fprintf(os.Stderr, "Error: repository %s is not in the store; run with --sync\n", repoID)
				os.Exit(1)
			}
			var persistErr *services.PersistenceError
			if !errors.As(err, &persistErr) {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			// results were computed; show them before failing
			printAssessments(os.Stdout, result.Assessments)
			printDuplicates(os.Stdout, result.Duplicates)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		printAssessments(os.Stdout, result.Assessments)
		printDuplicates(os.Stdout, result.Duplicates)
		fmt.Printf("%s Run %s recorded\n", green("✓"), result.Run.ID)
	},
}

func init() {
	analyzeCmd.Flags().StringP("repo", "r", "", "Repository as owner/name")
	analyzeCmd.Flags().Bool("sync", false, "Fetch issues from the source before analyzing")
	_ = analyzeCmd.MarkFlagRequired("repo")
	rootCmd.AddCommand(analyzeCmd)
}
