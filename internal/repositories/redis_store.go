package repositories

import (
	"context"
	"encoding/json"
	"sort"

	"issue-analyzer/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key layout
	repoKeyPrefix        = "repo:"
	repoIndexKey         = "repos:index"
	issuesKeySuffix      = ":issues"
	assessmentsKeySuffix = ":assessments"
	duplicatesKeySuffix  = ":duplicates"
	runsKeySuffix        = ":runs"
)

// RedisStore implements Store using Redis
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis-based store
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
	}
}

func repoKey(repoID string) string        { return repoKeyPrefix + repoID }
func issuesKey(repoID string) string      { return repoKeyPrefix + repoID + issuesKeySuffix }
func assessmentsKey(repoID string) string { return repoKeyPrefix + repoID + assessmentsKeySuffix }
func duplicatesKey(repoID string) string  { return repoKeyPrefix + repoID + duplicatesKeySuffix }
func runsKey(repoID string) string        { return repoKeyPrefix + repoID + runsKeySuffix }

// FindRepository retrieves a repository by ID
func (r *RedisStore) FindRepository(ctx context.Context, repoID string) (*models.Repository, error) {
	data, err := r.client.Get(ctx, repoKey(repoID)).Result()
	if err == redis.Nil {
		return nil, RepositoryNotFoundError(repoID)
	}
	if err != nil {
		return nil, NewStoreError("find_repository", repoID, err, "")
	}

	var repo models.Repository
	if err := json.Unmarshal([]byte(data), &repo); err != nil {
		return nil, NewStoreError("find_repository", repoID, err, "failed to unmarshal repository")
	}
	return &repo, nil
}

// SaveRepository creates or replaces a repository record
func (r *RedisStore) SaveRepository(ctx context.Context, repo *models.Repository) error {
	if repo == nil || repo.ID == "" {
		return InvalidRecordError("save_repository", "", "repository id is required")
	}

	repoJSON, err := json.Marshal(repo)
	if err != nil {
		return NewStoreError("save_repository", repo.ID, err, "failed to marshal repository")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, repoKey(repo.ID), repoJSON, 0)
	pipe.SAdd(ctx, repoIndexKey, repo.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return NewStoreError("save_repository", repo.ID, err, "failed to execute transaction")
	}
	return nil
}

// ListRepositories returns every indexed repository ordered by ID
func (r *RedisStore) ListRepositories(ctx context.Context) ([]*models.Repository, error) {
	ids, err := r.client.SMembers(ctx, repoIndexKey).Result()
	if err != nil {
		return nil, NewStoreError("list_repositories", repoIndexKey, err, "")
	}
	if len(ids) == 0 {
		return []*models.Repository{}, nil
	}
	sort.Strings(ids)

	// Use pipeline for batch get
	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, repoKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, NewStoreError("list_repositories", "", err, "failed to execute batch get")
	}

	repos := make([]*models.Repository, 0, len(ids))
	for i, cmd := range cmds {
		data, err := cmd.Result()
		if err == redis.Nil {
			// Index entry without a record
			continue
		}
		if err != nil {
			return nil, NewStoreError("list_repositories", ids[i], err, "")
		}

		var repo models.Repository
		if err := json.Unmarshal([]byte(data), &repo); err != nil {
			return nil, NewStoreError("list_repositories", ids[i], err, "failed to unmarshal repository")
		}
		repos = append(repos, &repo)
	}
	return repos, nil
}

// GetIssues returns the repository's issues in the order they were saved
func (r *RedisStore) GetIssues(ctx context.Context, repoID string) ([]models.Issue, error) {
	if err := r.requireRepository(ctx, "get_issues", repoID); err != nil {
		return nil, err
	}

	items, err := r.client.LRange(ctx, issuesKey(repoID), 0, -1).Result()
	if err != nil {
		return nil, NewStoreError("get_issues", repoID, err, "")
	}

	issues := make([]models.Issue, 0, len(items))
	for _, item := range items {
		var issue models.Issue
		if err := json.Unmarshal([]byte(item), &issue); err != nil {
			return nil, NewStoreError("get_issues", repoID, err, "failed to unmarshal issue")
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

// SaveIssues atomically replaces the repository's issue list
func (r *RedisStore) SaveIssues(ctx context.Context, repoID string, issues []models.Issue) error {
	if err := r.requireRepository(ctx, "save_issues", repoID); err != nil {
		return err
	}

	values := make([]interface{}, 0, len(issues))
	for _, issue := range issues {
		if issue.ID == "" {
			return InvalidRecordError("save_issues", repoID, "issue id is required")
		}
		issue.RepositoryID = repoID
		data, err := json.Marshal(issue)
		if err != nil {
			return NewStoreError("save_issues", issue.ID, err, "failed to marshal issue")
		}
		values = append(values, data)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, issuesKey(repoID))
	if len(values) > 0 {
		pipe.RPush(ctx, issuesKey(repoID), values...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return NewStoreError("save_issues", repoID, err, "failed to execute transaction")
	}
	return nil
}

// ReplaceRiskAssessments atomically replaces the repository's assessment hash
func (r *RedisStore) ReplaceRiskAssessments(ctx context.Context, repoID string, assessments []models.RiskAssessment) error {
	order, byIssue, err := prepareAssessments(repoID, assessments)
	if err != nil {
		return err
	}

	fields := make([]interface{}, 0, 2*len(order))
	for _, issueID := range order {
		data, err := json.Marshal(byIssue[issueID])
		if err != nil {
			return NewStoreError("replace_risk_assessments", issueID, err, "failed to marshal assessment")
		}
		fields = append(fields, issueID, data)
	}

	if err := r.replaceHash(ctx, assessmentsKey(repoID), fields); err != nil {
		return NewStoreError("replace_risk_assessments", repoID, err, "")
	}
	return nil
}

// GetRiskAssessments returns the current assessments ordered by issue ID
func (r *RedisStore) GetRiskAssessments(ctx context.Context, repoID string) ([]models.RiskAssessment, error) {
	entries, err := r.client.HGetAll(ctx, assessmentsKey(repoID)).Result()
	if err != nil {
		return nil, NewStoreError("get_risk_assessments", repoID, err, "")
	}

	result := make([]models.RiskAssessment, 0, len(entries))
	for issueID, data := range entries {
		var a models.RiskAssessment
		if err := json.Unmarshal([]byte(data), &a); err != nil {
			return nil, NewStoreError("get_risk_assessments", issueID, err, "failed to unmarshal assessment")
		}
		result = append(result, a)
	}
	sortAssessments(result)
	return result, nil
}

// ReplaceDuplicatePairs atomically replaces the repository's pair hash
func (r *RedisStore) ReplaceDuplicatePairs(ctx context.Context, repoID string, pairs []models.DuplicatePair) error {
	order, byKey, err := preparePairs(repoID, pairs)
	if err != nil {
		return err
	}

	fields := make([]interface{}, 0, 2*len(order))
	for _, key := range order {
		data, err := json.Marshal(byKey[key])
		if err != nil {
			return NewStoreError("replace_duplicate_pairs", key, err, "failed to marshal pair")
		}
		fields = append(fields, key, data)
	}

	if err := r.replaceHash(ctx, duplicatesKey(repoID), fields); err != nil {
		return NewStoreError("replace_duplicate_pairs", repoID, err, "")
	}
	return nil
}

// GetDuplicatePairs returns the current pairs ordered by pair key
func (r *RedisStore) GetDuplicatePairs(ctx context.Context, repoID string) ([]models.DuplicatePair, error) {
	entries, err := r.client.HGetAll(ctx, duplicatesKey(repoID)).Result()
	if err != nil {
		return nil, NewStoreError("get_duplicate_pairs", repoID, err, "")
	}

	result := make([]models.DuplicatePair, 0, len(entries))
	for key, data := range entries {
		var p models.DuplicatePair
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, NewStoreError("get_duplicate_pairs", key, err, "failed to unmarshal pair")
		}
		result = append(result, p)
	}
	sortPairs(result)
	return result, nil
}

// SaveAnalysisRun appends the run to the repository history and stamps the
// repository's AnalyzedAt.
func (r *RedisStore) SaveAnalysisRun(ctx context.Context, run models.AnalysisRun) error {
	if run.ID == "" || run.RepositoryID == "" {
		return InvalidRecordError("save_analysis_run", run.ID, "run id and repository id are required")
	}

	runJSON, err := json.Marshal(run)
	if err != nil {
		return NewStoreError("save_analysis_run", run.ID, err, "failed to marshal run")
	}

	repo, err := r.FindRepository(ctx, run.RepositoryID)
	if err != nil && !IsNotFound(err) {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, runsKey(run.RepositoryID), runJSON)
	if repo != nil {
		completed := run.CompletedAt
		repo.AnalyzedAt = &completed
		repoJSON, err := json.Marshal(repo)
		if err != nil {
			return NewStoreError("save_analysis_run", repo.ID, err, "failed to marshal repository")
		}
		pipe.Set(ctx, repoKey(repo.ID), repoJSON, 0)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return NewStoreError("save_analysis_run", run.ID, err, "failed to execute transaction")
	}
	return nil
}

// ListAnalysisRuns returns runs oldest first
func (r *RedisStore) ListAnalysisRuns(ctx context.Context, repoID string) ([]models.AnalysisRun, error) {
	items, err := r.client.LRange(ctx, runsKey(repoID), 0, -1).Result()
	if err != nil {
		return nil, NewStoreError("list_analysis_runs", repoID, err, "")
	}

	runs := make([]models.AnalysisRun, 0, len(items))
	for _, item := range items {
		var run models.AnalysisRun
		if err := json.Unmarshal([]byte(item), &run); err != nil {
			return nil, NewStoreError("list_analysis_runs", repoID, err, "failed to unmarshal run")
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// Ping checks if Redis connection is alive
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// replaceHash deletes key and refills it with field/value pairs in one transaction
func (r *RedisStore) replaceHash(ctx context.Context, key string, fields []interface{}) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(fields) > 0 {
		pipe.HSet(ctx, key, fields...)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisStore) requireRepository(ctx context.Context, operation, repoID string) error {
	exists, err := r.client.Exists(ctx, repoKey(repoID)).Result()
	if err != nil {
		return NewStoreError(operation, repoID, err, "")
	}
	if exists == 0 {
		return RepositoryNotFoundError(repoID)
	}
	return nil
}
