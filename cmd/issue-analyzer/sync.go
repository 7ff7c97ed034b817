package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch a repository's issues into the store",
	Long: `Fetch every issue of a repository from the configured source (GitHub or a
JSON file) and store it with the repository record. Earlier issues of the
repository are replaced.

Examples:
  issue-analyzer sync --repo octo/app`,
	Run: func(cmd *cobra.Command, args []string) {
		repoID, _ := cmd.Flags().GetString("repo")
		app.warnEphemeralStore(os.Stderr, "the synced issues")

		count, err := app.syncRepository(cmd.Context(), repoID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s Synced %d issues from %s\n", green("✓"), count, repoID)
	},
}

func init() {
	syncCmd.Flags().StringP("repo", "r", "", "Repository as owner/name")
	_ = syncCmd.MarkFlagRequired("repo")
	rootCmd.AddCommand(syncCmd)
}
