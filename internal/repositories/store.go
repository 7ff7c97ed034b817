package repositories

import (
	"context"
	"errors"

	"issue-analyzer/internal/models"
)

// Store is the system of record for repositories, their issues and analysis
// results. Implementations serialize their own writes.
//
// Risk assessments are upserted by issue id and duplicate pairs by
// (original, duplicate), so re-running an analysis replaces earlier results
// instead of accumulating rows. Analysis runs are kept as history.
type Store interface {
	// Repositories
	FindRepository(ctx context.Context, repoID string) (*models.Repository, error)
	SaveRepository(ctx context.Context, repo *models.Repository) error
	ListRepositories(ctx context.Context) ([]*models.Repository, error)

	// Issues, returned in the order they were saved
	GetIssues(ctx context.Context, repoID string) ([]models.Issue, error)
	SaveIssues(ctx context.Context, repoID string, issues []models.Issue) error

	// Results. A replace discards whatever the repository held before, so
	// results of removed issues and pairs that stopped matching disappear.
	ReplaceRiskAssessments(ctx context.Context, repoID string, assessments []models.RiskAssessment) error
	GetRiskAssessments(ctx context.Context, repoID string) ([]models.RiskAssessment, error)
	ReplaceDuplicatePairs(ctx context.Context, repoID string, pairs []models.DuplicatePair) error
	GetDuplicatePairs(ctx context.Context, repoID string) ([]models.DuplicatePair, error)

	// History
	SaveAnalysisRun(ctx context.Context, run models.AnalysisRun) error
	ListAnalysisRuns(ctx context.Context, repoID string) ([]models.AnalysisRun, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}

// ErrNotFound is wrapped by every lookup of an unknown record.
var ErrNotFound = errors.New("not found")

// StoreError represents errors from a store operation
type StoreError struct {
	Operation string
	Key       string
	Err       error
	Message   string
}

func (e *StoreError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	prefix := e.Operation
	if e.Key != "" {
		prefix += " (key: " + e.Key + ")"
	}
	if e.Err != nil {
		return prefix + ": " + e.Err.Error()
	}
	return prefix + ": unknown error"
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new store error
func NewStoreError(operation, key string, err error, message string) *StoreError {
	return &StoreError{
		Operation: operation,
		Key:       key,
		Err:       err,
		Message:   message,
	}
}

// RepositoryNotFoundError reports an unknown repository id. It matches
// errors.Is(err, ErrNotFound).
func RepositoryNotFoundError(repoID string) error {
	return NewStoreError("find_repository", repoID, ErrNotFound, "repository not found: "+repoID)
}

func InvalidRecordError(operation, key, reason string) error {
	return NewStoreError(operation, key, nil, "invalid record: "+reason)
}

// IsNotFound reports whether err marks a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// prepareAssessments stamps every assessment with repoID and indexes them by
// issue id. A later assessment of the same issue wins.
func prepareAssessments(repoID string, assessments []models.RiskAssessment) ([]string, map[string]models.RiskAssessment, error) {
	if repoID == "" {
		return nil, nil, InvalidRecordError("replace_risk_assessments", "", "repository id is required")
	}

	order := make([]string, 0, len(assessments))
	byIssue := make(map[string]models.RiskAssessment, len(assessments))
	for _, a := range assessments {
		if a.IssueID == "" {
			return nil, nil, InvalidRecordError("replace_risk_assessments", repoID, "issue id is required")
		}
		a.RepositoryID = repoID
		if _, seen := byIssue[a.IssueID]; !seen {
			order = append(order, a.IssueID)
		}
		byIssue[a.IssueID] = a
	}
	return order, byIssue, nil
}

// preparePairs stamps every pair with repoID and indexes them by pair key.
func preparePairs(repoID string, pairs []models.DuplicatePair) ([]string, map[string]models.DuplicatePair, error) {
	if repoID == "" {
		return nil, nil, InvalidRecordError("replace_duplicate_pairs", "", "repository id is required")
	}

	order := make([]string, 0, len(pairs))
	byKey := make(map[string]models.DuplicatePair, len(pairs))
	for _, p := range pairs {
		if p.OriginalIssueID == "" || p.DuplicateIssueID == "" {
			return nil, nil, InvalidRecordError("replace_duplicate_pairs", p.Key(), "both issue ids are required")
		}
		if p.OriginalIssueID == p.DuplicateIssueID {
			return nil, nil, InvalidRecordError("replace_duplicate_pairs", p.Key(), "an issue cannot duplicate itself")
		}
		p.RepositoryID = repoID
		if _, seen := byKey[p.Key()]; !seen {
			order = append(order, p.Key())
		}
		byKey[p.Key()] = p
	}
	return order, byKey, nil
}
