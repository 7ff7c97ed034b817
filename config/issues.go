package config

import (
	"encoding/json"
	"fmt"
	"os"

	"issue-analyzer/internal/models"
)

// LoadFromFile reads a JSON array of issues. Every issue must carry an id.
func LoadFromFile(path string) ([]models.Issue, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var issues []models.Issue
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&issues); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	for i, issue := range issues {
		if issue.ID == "" {
			return nil, fmt.Errorf("decode %s: issue at index %d has no id", path, i)
		}
	}
	return issues, nil
}
