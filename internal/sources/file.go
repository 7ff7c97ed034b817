package sources

import (
	"context"

	"issue-analyzer/config"
	"issue-analyzer/internal/models"
)

// FileSource reads issues from a JSON file. Issues without a repository id
// belong to whichever repository is requested.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) FetchIssues(ctx context.Context, repo models.Repository) ([]models.Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	issues, err := config.LoadFromFile(s.path)
	if err != nil {
		return nil, err
	}

	matched := make([]models.Issue, 0, len(issues))
	for _, issue := range issues {
		if issue.RepositoryID != "" && issue.RepositoryID != repo.ID {
			continue
		}
		issue.RepositoryID = repo.ID
		matched = append(matched, issue)
	}
	return matched, nil
}
