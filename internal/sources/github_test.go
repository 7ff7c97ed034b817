package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"issue-analyzer/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issuePage(start, count int, withPR bool) []map[string]interface{} {
	items := make([]map[string]interface{}, 0, count)
	for i := 0; i < count; i++ {
		n := start + i
		item := map[string]interface{}{
			"id":         1000 + n,
			"number":     n,
			"title":      fmt.Sprintf("Issue %d", n),
			"body":       "details",
			"state":      "open",
			"created_at": "2026-01-15T10:00:00Z",
			"labels":     []map[string]string{{"name": "bug"}},
		}
		if withPR && i == 0 {
			item["pull_request"] = map[string]string{"url": "https://example.invalid/pr"}
		}
		items = append(items, item)
	}
	return items
}

func newTestSource(url string) *GitHubSource {
	return NewGitHubSource(GitHubOptions{
		BaseURL:           url,
		Token:             "ghp_test",
		RequestsPerSecond: 1000,
		Burst:             10,
	}, nil)
}

func TestGitHubSource_FetchIssues(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/repos/acme/web/issues", r.URL.Path)
		assert.Equal(t, "all", r.URL.Query().Get("state"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		assert.Equal(t, "Bearer ghp_test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		var items []map[string]interface{}
		switch page {
		case 1:
			items = issuePage(1, 100, true)
		case 2:
			items = issuePage(101, 3, false)
		default:
			t.Errorf("unexpected page %d", page)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(items)
	}))
	defer server.Close()

	issues, err := newTestSource(server.URL).FetchIssues(context.Background(), models.NewRepository("acme/web"))
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	// 103 items, the first one a pull request
	require.Len(t, issues, 102)

	first := issues[0]
	assert.Equal(t, "1002", first.ID)
	assert.Equal(t, 2, first.Number)
	assert.Equal(t, "acme/web", first.RepositoryID)
	assert.Equal(t, "Issue 2", first.Title)
	assert.Equal(t, "details", first.Description)
	assert.Equal(t, []string{"bug"}, first.Labels)
	assert.Equal(t, models.IssueStateOpen, first.State)
	assert.Equal(t, time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC), first.CreatedAt.UTC())
}

func TestGitHubSource_ConvertsMissingFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": 7, "number": 3, "title": "No body", "body": null, "state": "closed", "created_at": "garbage"}]`))
	}))
	defer server.Close()

	issues, err := newTestSource(server.URL).FetchIssues(context.Background(), models.NewRepository("acme/web"))
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "", issues[0].Description)
	assert.Equal(t, models.IssueStateClosed, issues[0].State)
	assert.True(t, issues[0].CreatedAt.IsZero())
}

func TestGitHubSource_Errors(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"Not Found"}`))
		}))
		defer server.Close()

		_, err := newTestSource(server.URL).FetchIssues(context.Background(), models.NewRepository("acme/missing"))
		require.Error(t, err)

		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
		assert.Contains(t, statusErr.Body, "Not Found")
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"not": "a list"}`))
		}))
		defer server.Close()

		_, err := newTestSource(server.URL).FetchIssues(context.Background(), models.NewRepository("acme/web"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing response")
	})

	t.Run("repository without owner", func(t *testing.T) {
		_, err := newTestSource("http://127.0.0.1:1").FetchIssues(context.Background(), models.Repository{ID: "web"})
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := newTestSource("http://127.0.0.1:1").FetchIssues(ctx, models.NewRepository("acme/web"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestGitHubSource_NoTokenSendsNoAuthorization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	src := NewGitHubSource(GitHubOptions{BaseURL: server.URL + "/", RequestsPerSecond: 100}, nil)
	issues, err := src.FetchIssues(context.Background(), models.NewRepository("acme/web"))
	require.NoError(t, err)
	assert.Empty(t, issues)
}
