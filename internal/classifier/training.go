package classifier

import (
	_ "embed"
	"fmt"

	"issue-analyzer/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed training_data.yaml
var defaultCorpus []byte

// TrainingExample is one labeled sentence of the priority corpus.
type TrainingExample struct {
	Text  string          `yaml:"text" json:"text"`
	Label models.Priority `yaml:"label" json:"label"`
}

// LoadTrainingSet parses a YAML document mapping each label to its example
// sentences. Examples come back grouped by label, LOW first.
func LoadTrainingSet(data []byte) ([]TrainingExample, error) {
	var corpus map[string][]string
	if err := yaml.Unmarshal(data, &corpus); err != nil {
		return nil, fmt.Errorf("failed to parse training corpus: %w", err)
	}

	for label := range corpus {
		if !models.Priority(label).IsValid() {
			return nil, fmt.Errorf("unknown label in training corpus: %q", label)
		}
	}

	var examples []TrainingExample
	for _, label := range models.Priorities {
		for _, text := range corpus[string(label)] {
			examples = append(examples, TrainingExample{Text: text, Label: label})
		}
	}
	return examples, nil
}

// DefaultTrainingSet returns the corpus compiled into the binary.
func DefaultTrainingSet() ([]TrainingExample, error) {
	return LoadTrainingSet(defaultCorpus)
}
