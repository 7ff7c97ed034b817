package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"issue-analyzer/internal/models"

	"github.com/fatih/color"
)

var (
	cyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed, color.Bold).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

func levelColor(level models.RiskLevel) func(a ...interface{}) string {
	switch level {
	case models.RiskLevelCritical:
		return red
	case models.RiskLevelHigh:
		return color.New(color.FgRed).SprintFunc()
	case models.RiskLevelModerate:
		return yellow
	default:
		return green
	}
}

func printPrediction(w io.Writer, text string, p models.PredictionResult) {
	fmt.Fprintf(w, "\n%s\n", cyan("=== Priority Prediction ==="))
	fmt.Fprintf(w, "  Text:       %s\n", text)
	fmt.Fprintf(w, "  Priority:   %s\n", p.Label)
	fmt.Fprintf(w, "  Confidence: %.1f%%\n", p.Confidence*100)
	for _, label := range models.Priorities {
		fmt.Fprintf(w, "    %-6s %s\n", label, gray(fmt.Sprintf("%.4f", p.Probabilities[label])))
	}
	fmt.Fprintln(w)
}

// printAssessments lists assessments by descending risk, then by descending
// predicted priority, then by issue id.
func printAssessments(w io.Writer, assessments []models.RiskAssessment) {
	sorted := append([]models.RiskAssessment{}, assessments...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.RiskScore != b.RiskScore {
			return a.RiskScore > b.RiskScore
		}
		if a.PredictedPriority.Severity() != b.PredictedPriority.Severity() {
			return a.PredictedPriority.Severity() > b.PredictedPriority.Severity()
		}
		return a.IssueID < b.IssueID
	})

	fmt.Fprintf(w, "\n%s\n", cyan(fmt.Sprintf("=== Risk Assessments (%d) ===", len(sorted))))
	if len(sorted) == 0 {
		fmt.Fprintf(w, "  %s\n\n", gray("No issues analyzed"))
		return
	}
	for _, a := range sorted {
		colorize := levelColor(a.RiskLevel)
		fmt.Fprintf(w, "  %s %-8s %4.1f  #%s\n", colorize("●"), colorize(string(a.RiskLevel)), a.RiskScore, a.IssueID)
		fmt.Fprintf(w, "      %s\n", a.Summary)
		if len(a.Keywords) > 0 {
			fmt.Fprintf(w, "      %s %s\n", gray("keywords:"), strings.Join(a.Keywords, ", "))
		}
	}
	fmt.Fprintln(w)
}

func printDuplicates(w io.Writer, pairs []models.DuplicatePair) {
	fmt.Fprintf(w, "\n%s\n", cyan(fmt.Sprintf("=== Duplicate Pairs (%d) ===", len(pairs))))
	if len(pairs) == 0 {
		fmt.Fprintf(w, "  %s\n\n", gray("No duplicates found"))
		return
	}
	for _, p := range pairs {
		fmt.Fprintf(w, "  #%s ~ #%s  %s\n", p.OriginalIssueID, p.DuplicateIssueID,
			yellow(fmt.Sprintf("%.0f%%", p.SimilarityScore*100)))
	}
	fmt.Fprintln(w)
}

// printRuns lists runs newest first.
func printRuns(w io.Writer, repoID string, runs []models.AnalysisRun) {
	fmt.Fprintf(w, "\n%s\n", cyan("=== Analysis History: "+repoID+" ==="))
	if len(runs) == 0 {
		fmt.Fprintf(w, "  %s\n\n", gray("No runs recorded"))
		return
	}
	for i := len(runs) - 1; i >= 0; i-- {
		r := runs[i]
		fmt.Fprintf(w, "  %s  %s\n", r.CompletedAt.Format("2006-01-02 15:04:05"), gray(r.ID))
		fmt.Fprintf(w, "    issues %d  high %s  medium %s  low %s  duplicates %d\n",
			r.TotalIssues,
			red(fmt.Sprintf("%d", r.HighCount)),
			yellow(fmt.Sprintf("%d", r.MediumCount)),
			green(fmt.Sprintf("%d", r.LowCount)),
			r.DuplicatePairs)
	}
	fmt.Fprintln(w)
}
