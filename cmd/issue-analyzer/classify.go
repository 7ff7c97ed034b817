package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <text>",
	Short: "Predict the priority of a piece of issue text",
	Long: `Run the priority classifier on free text and print the label, its
confidence and the full probability distribution.

Examples:
  issue-analyzer classify "App crashes on login"
  issue-analyzer classify Typo in footer`,
	Args:        cobra.MinimumNArgs(1),
	Annotations: map[string]string{annotationStore: storeNone},
	Run: func(cmd *cobra.Command, args []string) {
		text := strings.Join(args, " ")
		printPrediction(os.Stdout, text, app.service.Classify(text))
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
