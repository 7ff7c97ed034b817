package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"issue-analyzer/internal/logger"
	"issue-analyzer/internal/models"

	"golang.org/x/time/rate"
)

const (
	DefaultGitHubAPIURL = "https://api.github.com"
	githubPageSize      = 100
	maxErrorBody        = 512
)

type githubIssue struct {
	ID          int64         `json:"id"`
	Number      int           `json:"number"`
	Title       string        `json:"title"`
	Body        string        `json:"body"`
	State       string        `json:"state"`
	CreatedAt   string        `json:"created_at"`
	Labels      []githubLabel `json:"labels"`
	PullRequest *struct{}     `json:"pull_request"`
}

type githubLabel struct {
	Name string `json:"name"`
}

// StatusError is returned when GitHub answers with a non-200 status.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GitHub API returned %d for %s: %s", e.StatusCode, e.URL, e.Body)
}

type GitHubOptions struct {
	BaseURL           string
	Token             string
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
	HTTPClient        *http.Client
}

// GitHubSource reads issues through the GitHub REST API. Requests are
// throttled client-side and pull requests are skipped.
type GitHubSource struct {
	baseURL string
	token   string
	client  *http.Client
	limiter *rate.Limiter
	log     *logger.Logger
}

func NewGitHubSource(opts GitHubOptions, log *logger.Logger) *GitHubSource {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultGitHubAPIURL
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 1
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &GitHubSource{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		log:     log,
	}
}

// FetchIssues pages through every issue of repo, open and closed.
func (s *GitHubSource) FetchIssues(ctx context.Context, repo models.Repository) ([]models.Issue, error) {
	if repo.Owner == "" || repo.Name == "" {
		return nil, fmt.Errorf("repository %q must have owner and name", repo.ID)
	}

	var all []models.Issue
	skipped := 0
	for page := 1; ; page++ {
		items, err := s.fetchPage(ctx, repo, page)
		if err != nil {
			return nil, fmt.Errorf("fetch issues page %d of %s: %w", page, repo.ID, err)
		}

		for _, item := range items {
			if item.PullRequest != nil {
				skipped++
				continue
			}
			all = append(all, convertGitHubIssue(item, repo.ID))
		}

		if len(items) < githubPageSize {
			break
		}
	}

	s.log.Info("github fetch done", "repository_id", repo.ID, "issues", len(all), "pull_requests_skipped", skipped)
	return all, nil
}

func (s *GitHubSource) fetchPage(ctx context.Context, repo models.Repository, page int) ([]githubIssue, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	apiURL := fmt.Sprintf("%s/repos/%s/%s/issues?state=all&per_page=%d&page=%d",
		s.baseURL, url.PathEscape(repo.Owner), url.PathEscape(repo.Name), githubPageSize, page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: apiURL, Body: string(body)}
	}

	var items []githubIssue
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	s.log.Debug("github page fetched", "repository_id", repo.ID, "page", page, "items", len(items))
	return items, nil
}

func convertGitHubIssue(item githubIssue, repoID string) models.Issue {
	// unparseable timestamps stay zero and count as unknown age
	createdAt, _ := time.Parse(time.RFC3339, item.CreatedAt)

	var labels []string
	for _, l := range item.Labels {
		labels = append(labels, l.Name)
	}

	return models.Issue{
		ID:           strconv.FormatInt(item.ID, 10),
		RepositoryID: repoID,
		Number:       item.Number,
		Title:        item.Title,
		Description:  item.Body,
		Labels:       labels,
		State:        models.ParseIssueState(item.State),
		CreatedAt:    createdAt,
	}
}
