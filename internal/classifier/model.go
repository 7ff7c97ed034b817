package classifier

import (
	"fmt"
	"strings"

	"issue-analyzer/internal/models"
	"issue-analyzer/internal/textproc"
)

// Model holds the multinomial Naive Bayes counts. It is built once by Train
// and never mutated afterwards, so one *Model may serve any number of
// concurrent predictions.
type Model struct {
	wordCounts   map[models.Priority]map[string]int
	docCounts    map[models.Priority]int
	tokenTotals  map[models.Priority]int
	totalSamples int
	vocabulary   map[string]struct{}
}

// Train builds a model from labeled examples. Every label of the fixed
// label set must have at least one example.
func Train(examples []TrainingExample) (*Model, error) {
	m := &Model{
		wordCounts:  make(map[models.Priority]map[string]int, len(models.Priorities)),
		docCounts:   make(map[models.Priority]int, len(models.Priorities)),
		tokenTotals: make(map[models.Priority]int, len(models.Priorities)),
		vocabulary:  make(map[string]struct{}),
	}
	for _, label := range models.Priorities {
		m.wordCounts[label] = make(map[string]int)
	}

	for _, ex := range examples {
		if !ex.Label.IsValid() {
			return nil, fmt.Errorf("invalid training label %q for example %q", ex.Label, ex.Text)
		}

		m.totalSamples++
		m.docCounts[ex.Label]++

		for _, word := range textproc.Tokens(ex.Text) {
			m.wordCounts[ex.Label][word]++
			m.tokenTotals[ex.Label]++
			m.vocabulary[word] = struct{}{}
		}
	}

	var missing []string
	for _, label := range models.Priorities {
		if m.docCounts[label] == 0 {
			missing = append(missing, string(label))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("training set has no examples for: %s", strings.Join(missing, ", "))
	}

	return m, nil
}

// TotalSamples returns the number of training examples.
func (m *Model) TotalSamples() int {
	return m.totalSamples
}

// VocabularySize returns the number of distinct training words.
func (m *Model) VocabularySize() int {
	return len(m.vocabulary)
}

// DocumentCount returns the number of examples labeled label.
func (m *Model) DocumentCount(label models.Priority) int {
	return m.docCounts[label]
}

// WordCount returns how often word occurred in examples labeled label.
func (m *Model) WordCount(label models.Priority, word string) int {
	return m.wordCounts[label][word]
}
