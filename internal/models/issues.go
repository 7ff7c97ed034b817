package models

import (
	"strings"
	"time"
)

type IssueState int

const (
	IssueStateOpen IssueState = iota
	IssueStateClosed
	IssueStateOther
)

func (s IssueState) String() string {
	switch s {
	case IssueStateOpen:
		return "open"
	case IssueStateClosed:
		return "closed"
	default:
		return "other"
	}
}

// ParseIssueState maps a tracker state string onto IssueState.
// Anything that is not open or closed becomes IssueStateOther.
func ParseIssueState(s string) IssueState {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open", "opened", "reopened":
		return IssueStateOpen
	case "closed":
		return IssueStateClosed
	default:
		return IssueStateOther
	}
}

// MarshalJSON converts IssueState to JSON string
func (s IssueState) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON converts JSON string to IssueState
func (s *IssueState) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}
	*s = ParseIssueState(str)
	return nil
}

// Issue is a single tracker issue as supplied by an issue source.
type Issue struct {
	ID           string     `json:"id"`
	RepositoryID string     `json:"repository_id"`
	Number       int        `json:"number,omitempty"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Labels       []string   `json:"labels,omitempty"`
	State        IssueState `json:"state"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Text returns title and description joined the way every analysis stage reads them.
func (i Issue) Text() string {
	return i.Title + " " + i.Description
}

type RepositoryType string

const (
	RepositoryTypePublic  RepositoryType = "PUBLIC"
	RepositoryTypePrivate RepositoryType = "PRIVATE"
)

// Repository identifies an issue corpus. ID is usually "owner/name".
type Repository struct {
	ID         string         `json:"id"`
	Owner      string         `json:"owner"`
	Name       string         `json:"name"`
	URL        string         `json:"url,omitempty"`
	Type       RepositoryType `json:"type"`
	AnalyzedAt *time.Time     `json:"analyzed_at,omitempty"`
}

// NewRepository builds a public repository record from an "owner/name" slug.
func NewRepository(slug string) Repository {
	slug = strings.Trim(strings.TrimSpace(slug), "/")
	owner, name, _ := strings.Cut(slug, "/")
	return Repository{
		ID:    slug,
		Owner: owner,
		Name:  name,
		URL:   "https://github.com/" + slug,
		Type:  RepositoryTypePublic,
	}
}
