package sources

import (
	"context"

	"issue-analyzer/internal/models"
)

// IssueSource supplies the issue corpus of a repository.
type IssueSource interface {
	FetchIssues(ctx context.Context, repo models.Repository) ([]models.Issue, error)
}
