package models

import "time"

// Priority is the classifier label set. It is fixed to exactly three values.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Priorities lists the labels from lowest to highest severity.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// IsValid checks if priority is one of the known labels
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// Severity orders priorities; LOW is 0.
func (p Priority) Severity() int {
	switch p {
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// PredictionResult is the classifier output for one text.
type PredictionResult struct {
	Label         Priority             `json:"label"`
	Confidence    float64              `json:"confidence"`
	Probabilities map[Priority]float64 `json:"probabilities,omitempty"`
}

type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelModerate RiskLevel = "MODERATE"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

// ImpactCategory names the keyword group that matched an issue's text.
type ImpactCategory string

const (
	ImpactCritical    ImpactCategory = "critical"
	ImpactFunctional  ImpactCategory = "functional"
	ImpactPerformance ImpactCategory = "performance"
	ImpactNone        ImpactCategory = "none"
)

// RiskAssessment is the per-issue result of an analysis run.
type RiskAssessment struct {
	IssueID           string         `json:"issue_id"`
	RepositoryID      string         `json:"repository_id"`
	PredictedPriority Priority       `json:"predicted_priority"`
	ConfidenceScore   float64        `json:"confidence_score"`
	RiskScore         float64        `json:"risk_score"`
	RiskLevel         RiskLevel      `json:"risk_level"`
	ImpactCategory    ImpactCategory `json:"impact_category"`
	AgeDays           int            `json:"age_days"`
	Keywords          []string       `json:"keywords,omitempty"`
	Summary           string         `json:"summary"`
	RunID             string         `json:"run_id,omitempty"`
	AnalyzedAt        time.Time      `json:"analyzed_at"`
}

// DuplicatePair links two issues of one repository whose texts are similar.
// OriginalIssueID is the issue discovered first.
type DuplicatePair struct {
	RepositoryID     string    `json:"repository_id"`
	OriginalIssueID  string    `json:"original_issue_id"`
	DuplicateIssueID string    `json:"duplicate_issue_id"`
	SimilarityScore  float64   `json:"similarity_score"`
	DetectedAt       time.Time `json:"detected_at"`
}

// Key identifies the pair independently of when it was detected.
func (p DuplicatePair) Key() string {
	return p.OriginalIssueID + "|" + p.DuplicateIssueID
}

// AnalysisRun records the outcome of one full pipeline run over a repository.
type AnalysisRun struct {
	ID             string    `json:"id"`
	RepositoryID   string    `json:"repository_id"`
	TotalIssues    int       `json:"total_issues"`
	HighCount      int       `json:"high_priority_count"`
	MediumCount    int       `json:"medium_priority_count"`
	LowCount       int       `json:"low_priority_count"`
	DuplicatePairs int       `json:"duplicate_pairs"`
	StartedAt      time.Time `json:"started_at"`
	CompletedAt    time.Time `json:"completed_at"`
}

// Count adds one assessment to the per-priority totals.
func (r *AnalysisRun) Count(a RiskAssessment) {
	r.TotalIssues++
	switch a.PredictedPriority {
	case PriorityHigh:
		r.HighCount++
	case PriorityMedium:
		r.MediumCount++
	default:
		r.LowCount++
	}
}
