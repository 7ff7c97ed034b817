package classifier

import (
	"math"

	"issue-analyzer/internal/models"
	"issue-analyzer/internal/textproc"
)

// MinConfidence is the floor applied to every prediction's confidence.
const MinConfidence = 0.05

// Classifier predicts a priority label for free text.
type Classifier struct {
	model *Model
}

// New wraps a trained model.
func New(model *Model) *Classifier {
	return &Classifier{model: model}
}

// NewDefault trains a classifier on the embedded corpus.
func NewDefault() (*Classifier, error) {
	examples, err := DefaultTrainingSet()
	if err != nil {
		return nil, err
	}
	model, err := Train(examples)
	if err != nil {
		return nil, err
	}
	return New(model), nil
}

// Model returns the shared, read-only model.
func (c *Classifier) Model() *Model {
	return c.model
}

// Predict classifies text. It never fails: empty or unseen text still yields
// a label from the priors, with the confidence floored at MinConfidence.
func (c *Classifier) Predict(text string) models.PredictionResult {
	words := textproc.Tokens(text)
	vocabSize := float64(c.model.VocabularySize())
	total := float64(c.model.totalSamples)

	logScores := make(map[models.Priority]float64, len(models.Priorities))
	for _, label := range models.Priorities {
		score := math.Log(float64(c.model.docCounts[label]) / total)
		denominator := float64(c.model.tokenTotals[label]) + vocabSize
		counts := c.model.wordCounts[label]

		for _, word := range words {
			score += math.Log((float64(counts[word]) + 1.0) / denominator)
		}
		logScores[label] = score
	}

	probabilities := softmax(logScores)

	// Priorities is ordered LOW→HIGH and only a strictly greater probability
	// replaces the current best, so ties go to the less severe label.
	best := models.Priorities[0]
	for _, label := range models.Priorities[1:] {
		if probabilities[label] > probabilities[best] {
			best = label
		}
	}

	return models.PredictionResult{
		Label:         best,
		Confidence:    math.Max(MinConfidence, probabilities[best]),
		Probabilities: probabilities,
	}
}

func softmax(logScores map[models.Priority]float64) map[models.Priority]float64 {
	maxScore := math.Inf(-1)
	for _, s := range logScores {
		if s > maxScore {
			maxScore = s
		}
	}

	probabilities := make(map[models.Priority]float64, len(logScores))
	var sum float64
	for label, s := range logScores {
		p := math.Exp(s - maxScore)
		probabilities[label] = p
		sum += p
	}
	for label := range probabilities {
		probabilities[label] /= sum
	}
	return probabilities
}
