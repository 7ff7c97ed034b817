package repositories

import (
	"context"
	"sort"
	"sync"

	"issue-analyzer/internal/models"
)

// MemoryStore implements Store with in-process maps. It backs the CLI when no
// Redis server is configured and serves as the reference in tests.
type MemoryStore struct {
	mu          sync.RWMutex
	repos       map[string]models.Repository
	issues      map[string][]models.Issue
	assessments map[string]map[string]models.RiskAssessment
	duplicates  map[string]map[string]models.DuplicatePair
	runs        map[string][]models.AnalysisRun
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		repos:       make(map[string]models.Repository),
		issues:      make(map[string][]models.Issue),
		assessments: make(map[string]map[string]models.RiskAssessment),
		duplicates:  make(map[string]map[string]models.DuplicatePair),
		runs:        make(map[string][]models.AnalysisRun),
	}
}

func (s *MemoryStore) FindRepository(ctx context.Context, repoID string) (*models.Repository, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	repo, ok := s.repos[repoID]
	if !ok {
		return nil, RepositoryNotFoundError(repoID)
	}
	return &repo, nil
}

func (s *MemoryStore) SaveRepository(ctx context.Context, repo *models.Repository) error {
	if repo == nil || repo.ID == "" {
		return InvalidRecordError("save_repository", "", "repository id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.repos[repo.ID] = *repo
	return nil
}

func (s *MemoryStore) ListRepositories(ctx context.Context) ([]*models.Repository, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	repos := make([]*models.Repository, 0, len(s.repos))
	for _, repo := range s.repos {
		r := repo
		repos = append(repos, &r)
	}
	sort.Slice(repos, func(i, j int) bool { return repos[i].ID < repos[j].ID })
	return repos, nil
}

func (s *MemoryStore) GetIssues(ctx context.Context, repoID string) ([]models.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.repos[repoID]; !ok {
		return nil, RepositoryNotFoundError(repoID)
	}
	return append([]models.Issue{}, s.issues[repoID]...), nil
}

// SaveIssues replaces the stored issue set of a repository.
func (s *MemoryStore) SaveIssues(ctx context.Context, repoID string, issues []models.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.repos[repoID]; !ok {
		return RepositoryNotFoundError(repoID)
	}

	stored := make([]models.Issue, len(issues))
	for i, issue := range issues {
		if issue.ID == "" {
			return InvalidRecordError("save_issues", repoID, "issue id is required")
		}
		issue.RepositoryID = repoID
		stored[i] = issue
	}
	s.issues[repoID] = stored
	return nil
}

// ReplaceRiskAssessments swaps in a new assessment set for the repository.
func (s *MemoryStore) ReplaceRiskAssessments(ctx context.Context, repoID string, assessments []models.RiskAssessment) error {
	_, byIssue, err := prepareAssessments(repoID, assessments)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.assessments[repoID] = byIssue
	return nil
}

// GetRiskAssessments returns the current assessments ordered by issue id.
func (s *MemoryStore) GetRiskAssessments(ctx context.Context, repoID string) ([]models.RiskAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.RiskAssessment, 0, len(s.assessments[repoID]))
	for _, a := range s.assessments[repoID] {
		result = append(result, a)
	}
	sortAssessments(result)
	return result, nil
}

// ReplaceDuplicatePairs swaps in a new pair set for the repository.
func (s *MemoryStore) ReplaceDuplicatePairs(ctx context.Context, repoID string, pairs []models.DuplicatePair) error {
	_, byKey, err := preparePairs(repoID, pairs)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.duplicates[repoID] = byKey
	return nil
}

// GetDuplicatePairs returns the current pairs ordered by pair key.
func (s *MemoryStore) GetDuplicatePairs(ctx context.Context, repoID string) ([]models.DuplicatePair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.DuplicatePair, 0, len(s.duplicates[repoID]))
	for _, p := range s.duplicates[repoID] {
		result = append(result, p)
	}
	sortPairs(result)
	return result, nil
}

func (s *MemoryStore) SaveAnalysisRun(ctx context.Context, run models.AnalysisRun) error {
	if run.ID == "" || run.RepositoryID == "" {
		return InvalidRecordError("save_analysis_run", run.ID, "run id and repository id are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.RepositoryID] = append(s.runs[run.RepositoryID], run)
	if repo, ok := s.repos[run.RepositoryID]; ok {
		completed := run.CompletedAt
		repo.AnalyzedAt = &completed
		s.repos[run.RepositoryID] = repo
	}
	return nil
}

// ListAnalysisRuns returns runs oldest first.
func (s *MemoryStore) ListAnalysisRuns(ctx context.Context, repoID string) ([]models.AnalysisRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.AnalysisRun{}, s.runs[repoID]...), nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close() error {
	return nil
}

func sortAssessments(a []models.RiskAssessment) {
	sort.Slice(a, func(i, j int) bool { return a[i].IssueID < a[j].IssueID })
}

func sortPairs(p []models.DuplicatePair) {
	sort.Slice(p, func(i, j int) bool { return p[i].Key() < p[j].Key() })
}
