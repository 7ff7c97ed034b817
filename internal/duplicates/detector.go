package duplicates

import (
	"math"
	"time"

	"issue-analyzer/internal/models"
	"issue-analyzer/internal/textproc"
)

// DefaultThreshold is the minimum similarity reported as a duplicate.
const DefaultThreshold = 0.40

// Detector compares every pair of issues of one repository.
type Detector struct {
	threshold float64
	weighting Weighting
	now       func() time.Time
}

// Option configures a Detector.
type Option func(*Detector)

// WithThreshold overrides DefaultThreshold.
func WithThreshold(threshold float64) Option {
	return func(d *Detector) {
		d.threshold = threshold
	}
}

// WithWeighting selects the vector weighting.
func WithWeighting(weighting Weighting) Option {
	return func(d *Detector) {
		d.weighting = weighting
	}
}

// WithClock fixes the detection timestamp source.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) {
		d.now = now
	}
}

func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		threshold: DefaultThreshold,
		weighting: WeightingTermFrequency,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Threshold returns the configured similarity threshold.
func (d *Detector) Threshold() float64 {
	return d.threshold
}

// Similarity compares two issues on their own, using raw term counts.
// It is symmetric.
func (d *Detector) Similarity(a, b models.Issue) float64 {
	return Cosine(textproc.TokenizeWeighted(a.Text()), textproc.TokenizeWeighted(b.Text()))
}

// Detect checks all n*(n-1)/2 pairs and returns those at or above the
// threshold, ordered by discovery (i<j).
func (d *Detector) Detect(issues []models.Issue) []models.DuplicatePair {
	vectors := d.vectors(issues)
	detectedAt := d.now()

	var pairs []models.DuplicatePair
	for i := 0; i < len(issues); i++ {
		for j := i + 1; j < len(issues); j++ {
			if issues[i].ID == issues[j].ID {
				continue
			}

			sim := Cosine(vectors[i], vectors[j])
			if sim < d.threshold {
				continue
			}

			pairs = append(pairs, models.DuplicatePair{
				RepositoryID:     issues[i].RepositoryID,
				OriginalIssueID:  issues[i].ID,
				DuplicateIssueID: issues[j].ID,
				SimilarityScore:  math.Round(sim*100) / 100,
				DetectedAt:       detectedAt,
			})
		}
	}
	return pairs
}

func (d *Detector) vectors(issues []models.Issue) []textproc.TermVector {
	vectors := make([]textproc.TermVector, len(issues))
	for i, issue := range issues {
		vectors[i] = textproc.TokenizeWeighted(issue.Text())
	}

	if d.weighting == WeightingTFIDF {
		weigher := NewTFIDFWeigher(vectors)
		for i, vec := range vectors {
			vectors[i] = weigher.Weigh(vec)
		}
	}
	return vectors
}
