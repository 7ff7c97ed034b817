package risk

import (
	"fmt"
	"math"
	"strings"
	"time"

	"issue-analyzer/internal/models"
	"issue-analyzer/internal/textproc"
)

const (
	MaxScore      = 10.0
	MinConfidence = 0.05

	maxAgeWeight    = 2.0
	ageWeightPer30d = 0.4
)

// impactRule is one keyword group. A token matches a term when it starts with it.
type impactRule struct {
	category models.ImpactCategory
	modifier float64
	terms    []string
}

// Evaluated in order; the first matching group wins.
var impactRules = []impactRule{
	{category: models.ImpactCritical, modifier: 3.5, terms: []string{"crash", "fatal", "security", "vulnerab"}},
	{category: models.ImpactFunctional, modifier: 2.0, terms: []string{"broken", "cannot", "fail"}},
	{category: models.ImpactPerformance, modifier: 1.0, terms: []string{"slow", "load", "performance", "optimiz"}},
}

// Scorer turns a prediction and an issue into a RiskAssessment.
type Scorer struct {
	now func() time.Time
}

func NewScorer() *Scorer {
	return &Scorer{now: time.Now}
}

// NewScorerWithClock fixes the reference time used for issue age.
func NewScorerWithClock(now func() time.Time) *Scorer {
	return &Scorer{now: now}
}

// BaseWeight maps the predicted label to its starting weight.
func BaseWeight(p models.Priority) float64 {
	switch p {
	case models.PriorityHigh:
		return 5.0
	case models.PriorityMedium:
		return 3.0
	default:
		return 1.0
	}
}

// DetectImpact classifies the normalized text by keyword group.
func DetectImpact(text string) (models.ImpactCategory, float64) {
	tokens := textproc.Tokens(text)
	for _, rule := range impactRules {
		for _, tok := range tokens {
			for _, term := range rule.terms {
				if strings.HasPrefix(tok, term) {
					return rule.category, rule.modifier
				}
			}
		}
	}
	return models.ImpactNone, 0
}

// AgeDays returns whole days between created and now. A zero or future
// creation time counts as zero days.
func AgeDays(created, now time.Time) int {
	if created.IsZero() || created.After(now) {
		return 0
	}
	return int(now.Sub(created).Hours() / 24)
}

// AgeWeight grows 0.4 per 30 days and caps at 2.0.
func AgeWeight(days int) float64 {
	if days <= 0 {
		return 0
	}
	return math.Min(maxAgeWeight, float64(days)/30.0*ageWeightPer30d)
}

// LevelFor buckets a final score. Boundaries are inclusive.
func LevelFor(score float64) models.RiskLevel {
	switch {
	case score >= 8.5:
		return models.RiskLevelCritical
	case score >= 6.5:
		return models.RiskLevelHigh
	case score >= 4.0:
		return models.RiskLevelModerate
	default:
		return models.RiskLevelLow
	}
}

// Compute combines the weighted stages into the final 0-10 score, rounded
// to one decimal.
func Compute(label models.Priority, impactModifier float64, days int, confidence float64) float64 {
	confidenceFactor := math.Max(MinConfidence, confidence)
	if math.IsNaN(confidence) {
		confidenceFactor = MinConfidence
	}

	raw := BaseWeight(label) + impactModifier + AgeWeight(days)
	final := math.Min(MaxScore, raw*(0.8+confidenceFactor*0.4))
	final = math.Max(0, final)
	return round(final, 1)
}

// Score produces the assessment for one issue. It never fails.
func (s *Scorer) Score(issue models.Issue, prediction models.PredictionResult) models.RiskAssessment {
	now := s.now()
	category, modifier := DetectImpact(issue.Text())
	days := AgeDays(issue.CreatedAt, now)
	score := Compute(prediction.Label, modifier, days, prediction.Confidence)
	level := LevelFor(score)
	confidence := math.Max(MinConfidence, prediction.Confidence)

	return models.RiskAssessment{
		IssueID:           issue.ID,
		RepositoryID:      issue.RepositoryID,
		PredictedPriority: prediction.Label,
		ConfidenceScore:   round(confidence, 2),
		RiskScore:         score,
		RiskLevel:         level,
		ImpactCategory:    category,
		AgeDays:           days,
		Summary:           Summarize(prediction.Label, category, confidence, level, days),
		AnalyzedAt:        now,
	}
}

// Summarize renders the human readable explanation of an assessment.
func Summarize(label models.Priority, category models.ImpactCategory, confidence float64, level models.RiskLevel, days int) string {
	impact := "no impact keywords"
	if category != models.ImpactNone {
		impact = string(category) + " impact keywords"
	}
	return fmt.Sprintf("Predicted %s priority with %.0f%% confidence (%s). Risk level %s; issue age %d days.",
		label, confidence*100, impact, level, days)
}

func round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
