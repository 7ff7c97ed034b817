package classifier

import (
	"sync"
	"testing"

	"issue-analyzer/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := NewDefault()
	require.NoError(t, err)
	return c
}

func TestDefaultTrainingSet(t *testing.T) {
	examples, err := DefaultTrainingSet()
	require.NoError(t, err)

	perLabel := make(map[models.Priority]int)
	for _, ex := range examples {
		assert.True(t, ex.Label.IsValid())
		assert.NotEmpty(t, ex.Text)
		perLabel[ex.Label]++
	}

	require.Len(t, perLabel, 3)
	assert.Equal(t, perLabel[models.PriorityHigh], perLabel[models.PriorityMedium])
	assert.Equal(t, perLabel[models.PriorityMedium], perLabel[models.PriorityLow])
}

func TestLoadTrainingSet(t *testing.T) {
	t.Run("unknown label", func(t *testing.T) {
		_, err := LoadTrainingSet([]byte("URGENT:\n  - everything is on fire\n"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown label")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := LoadTrainingSet([]byte("HIGH: [unterminated"))
		assert.Error(t, err)
	})
}

func TestTrain(t *testing.T) {
	t.Run("counts", func(t *testing.T) {
		model, err := Train([]TrainingExample{
			{Text: "app crashes", Label: models.PriorityHigh},
			{Text: "app crashes again", Label: models.PriorityHigh},
			{Text: "slow page", Label: models.PriorityMedium},
			{Text: "typo", Label: models.PriorityLow},
		})
		require.NoError(t, err)

		assert.Equal(t, 4, model.TotalSamples())
		assert.Equal(t, 2, model.DocumentCount(models.PriorityHigh))
		assert.Equal(t, 2, model.WordCount(models.PriorityHigh, "crashes"))
		assert.Equal(t, 0, model.WordCount(models.PriorityLow, "crashes"))
		assert.Equal(t, 6, model.VocabularySize())
	})

	t.Run("missing label", func(t *testing.T) {
		_, err := Train([]TrainingExample{
			{Text: "app crashes", Label: models.PriorityHigh},
			{Text: "slow page", Label: models.PriorityMedium},
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "LOW")
	})

	t.Run("invalid label", func(t *testing.T) {
		_, err := Train([]TrainingExample{{Text: "x", Label: "URGENT"}})
		assert.Error(t, err)
	})
}

func TestClassifier_Predict(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		name          string
		text          string
		expected      models.Priority
		minConfidence float64
	}{
		{name: "system outage", text: "critical crash error system down", expected: models.PriorityHigh, minConfidence: 0.5},
		{name: "documentation typo", text: "typo in documentation", expected: models.PriorityLow, minConfidence: 0.5},
		{name: "slow dashboard", text: "dashboard loads slowly", expected: models.PriorityMedium, minConfidence: 0.5},
		{name: "feature request", text: "Add dark mode", expected: models.PriorityMedium, minConfidence: 0.5},
		{name: "readme", text: "Update the README with install steps", expected: models.PriorityLow, minConfidence: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Predict(tt.text)
			assert.Equal(t, tt.expected, result.Label)
			assert.Greater(t, result.Confidence, tt.minConfidence)
			assert.LessOrEqual(t, result.Confidence, 1.0)
		})
	}
}

func TestClassifier_PredictEmptyText(t *testing.T) {
	c := newTestClassifier(t)

	for _, text := range []string{"", "   ", "1234 !!"} {
		result := c.Predict(text)
		assert.Equal(t, models.PriorityLow, result.Label)
		assert.GreaterOrEqual(t, result.Confidence, MinConfidence)
		assert.InDelta(t, 1.0/3.0, result.Confidence, 1e-9)
	}
}

func TestClassifier_ProbabilitiesSumToOne(t *testing.T) {
	c := newTestClassifier(t)

	texts := []string{
		"",
		"critical crash error system down",
		"typo in documentation",
		"xyzzy plugh frobnicate",
		"Login fails on submit and the whole page freezes while loading",
	}
	for _, text := range texts {
		result := c.Predict(text)
		require.Len(t, result.Probabilities, 3)

		var sum float64
		for _, p := range result.Probabilities {
			assert.GreaterOrEqual(t, p, 0.0)
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "text %q", text)
		assert.Equal(t, result.Probabilities[result.Label], result.Confidence)
	}
}

func TestClassifier_UnseenWordsKeepProbabilityNonZero(t *testing.T) {
	c := newTestClassifier(t)

	result := c.Predict("xyzzy plugh frobnicate quux")
	for _, label := range models.Priorities {
		assert.Greater(t, result.Probabilities[label], 0.0)
	}
	assert.GreaterOrEqual(t, result.Confidence, MinConfidence)
}

func TestClassifier_ConcurrentPredict(t *testing.T) {
	c := newTestClassifier(t)
	expected := c.Predict("critical crash error system down")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := c.Predict("critical crash error system down")
			assert.Equal(t, expected.Label, result.Label)
			assert.Equal(t, expected.Confidence, result.Confidence)
		}()
	}
	wg.Wait()
}
