package jira

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/jirasync/internal/config"
)

// fixtureServer is a minimal in-memory Jira REST server backing the
// client tests. It serves serverInfo, paginated search over a fixed
// issue list, and a handful of canned issue lookups.
type fixtureServer struct {
	*httptest.Server
	issues []map[string]any

	// startAts records the pagination offsets the client requested.
	startAts []int
}

func newFixtureServer(t *testing.T, issueCount int) *fixtureServer {
	t.Helper()

	fs := &fixtureServer{}
	for i := 1; i <= issueCount; i++ {
		fs.issues = append(fs.issues, map[string]any{
			"key": fmt.Sprintf("PROJ-%d", i),
			"fields": map[string]any{
				"summary":   fmt.Sprintf("Task number %d", i),
				"issuetype": map[string]any{"name": "Task"},
				"status":    map[string]any{"name": "Open"},
				"created":   "2025-03-01T10:00:00.000+0000",
				"updated":   "2025-03-02T10:00:00.000+0000",
			},
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/rest/api/2/serverInfo", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"version":     "9.4.0",
			"buildNumber": 940000,
			"serverTitle": "Fixture Jira",
		})
	})
	mux.HandleFunc("/rest/api/2/search", fs.handleSearch)
	mux.HandleFunc("/rest/api/2/issue/", fs.handleIssue)

	fs.Server = httptest.NewServer(mux)
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fixtureServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	jql := r.URL.Query().Get("jql")
	if strings.Contains(jql, "boom") {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"errorMessages": []string{"Error in the JQL Query"},
		})
		return
	}

	startAt, _ := strconv.Atoi(r.URL.Query().Get("startAt"))
	maxResults, err := strconv.Atoi(r.URL.Query().Get("maxResults"))
	if err != nil || maxResults <= 0 {
		maxResults = 50
	}
	fs.startAts = append(fs.startAts, startAt)

	end := startAt + maxResults
	if startAt > len(fs.issues) {
		startAt = len(fs.issues)
	}
	if end > len(fs.issues) {
		end = len(fs.issues)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"startAt":    startAt,
		"maxResults": maxResults,
		"total":      len(fs.issues),
		"issues":     fs.issues[startAt:end],
	})
}

func (fs *fixtureServer) handleIssue(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/rest/api/2/issue/")
	switch key {
	case "PROJ-1":
		writeJSON(w, http.StatusOK, map[string]any{
			"key": "PROJ-1",
			"fields": map[string]any{
				"summary":     "Task number 1",
				"description": "h1. Heading\nSome *bold* text",
				"issuetype":   map[string]any{"name": "Story"},
				"status":      map[string]any{"name": "In Progress"},
				"priority":    map[string]any{"name": "High"},
				"assignee":    map[string]any{"displayName": "Alice Example"},
				"reporter":    map[string]any{"displayName": "Bob Example"},
				"created":     "2025-03-01T10:00:00.000+0000",
				"updated":     "2025-03-02T10:00:00.000+0000",
				"parent":      map[string]any{"key": "PROJ-100"},
				"labels":      []string{"backend", "urgent"},
				"attachment": []map[string]any{
					{"filename": "log.txt", "content": fs.URL + "/log.txt", "size": 500},
				},
				"comment": map[string]any{
					"comments": []map[string]any{
						{
							"author":  map[string]any{"displayName": "Alice Example"},
							"body":    "first comment",
							"created": "2025-03-03T09:00:00.000+0000",
						},
						{
							"author":  map[string]any{"displayName": "Bob Example"},
							"body":    "second comment",
							"created": "2025-03-04T09:00:00.000+0000",
						},
					},
				},
			},
		})
	case "PROJ-2":
		writeJSON(w, http.StatusOK, map[string]any{
			"key": "PROJ-2",
			"fields": map[string]any{
				"summary":   "Task number 2",
				"issuetype": map[string]any{"name": "Task"},
				"status":    map[string]any{"name": "Open"},
			},
		})
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{
			"errorMessages": []string{"Issue does not exist or you do not have permission to see it."},
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	client, err := NewClient(&config.Config{
		Jira: config.JiraConfig{
			URL:      url,
			Username: "test@example.com",
			Token:    "test-token",
		},
	})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(&config.Config{
		Jira: config.JiraConfig{URL: "https://example.atlassian.net"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JIRA_USERNAME")
	assert.Contains(t, err.Error(), "JIRA_TOKEN")
}

func TestSearchIssuesPagination(t *testing.T) {
	server := newFixtureServer(t, 150)
	client := newTestClient(t, server.URL)

	issues, err := client.SearchIssues("project = PROJ ORDER BY key ASC", nil, 0)
	require.NoError(t, err)

	assert.Len(t, issues, 150)
	assert.Equal(t, "PROJ-1", issues[0].Key)
	assert.Equal(t, "PROJ-150", issues[149].Key)
	assert.Equal(t, []int{0, 100}, server.startAts, "expected two pages of 100")
}

func TestSearchIssuesLimit(t *testing.T) {
	server := newFixtureServer(t, 150)
	client := newTestClient(t, server.URL)

	t.Run("Limit below total truncates", func(t *testing.T) {
		issues, err := client.SearchIssues("project = PROJ", nil, 5)
		require.NoError(t, err)
		require.Len(t, issues, 5)
		for i, issue := range issues {
			assert.Equal(t, fmt.Sprintf("PROJ-%d", i+1), issue.Key)
		}
	})

	t.Run("Limit across a page boundary", func(t *testing.T) {
		issues, err := client.SearchIssues("project = PROJ", nil, 120)
		require.NoError(t, err)
		assert.Len(t, issues, 120)
	})

	t.Run("Limit equal to total matches unlimited", func(t *testing.T) {
		limited, err := client.SearchIssues("project = PROJ", nil, 150)
		require.NoError(t, err)
		unlimited, err2 := client.SearchIssues("project = PROJ", nil, 0)
		require.NoError(t, err2)
		assert.Equal(t, len(unlimited), len(limited))
	})
}

func TestSearchIssuesEmptyResult(t *testing.T) {
	server := newFixtureServer(t, 0)
	client := newTestClient(t, server.URL)

	issues, err := client.SearchIssues("project = NOTHING", nil, 0)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestSearchIssuesEmptyQueryRejected(t *testing.T) {
	server := newFixtureServer(t, 1)
	client := newTestClient(t, server.URL)

	_, err := client.SearchIssues("   ", nil, 0)
	require.Error(t, err)
	assert.True(t, IsProtocolError(err))
}

func TestSearchIssuesServerRejection(t *testing.T) {
	server := newFixtureServer(t, 1)
	client := newTestClient(t, server.URL)

	_, err := client.SearchIssues("boom === boom", nil, 0)
	require.Error(t, err)
	assert.True(t, IsProtocolError(err), "a 400 response must classify as a protocol error")
}

func TestGetIssueMapsFields(t *testing.T) {
	server := newFixtureServer(t, 1)
	client := newTestClient(t, server.URL)

	issue, err := client.GetIssue("PROJ-1", nil)
	require.NoError(t, err)

	assert.Equal(t, "PROJ-1", issue.Key)
	assert.Equal(t, "Story", issue.Type)
	assert.Equal(t, "In Progress", issue.Status)
	assert.Equal(t, "Task number 1", issue.Summary)
	assert.Contains(t, issue.Description, "*bold*")
	assert.Equal(t, "High", issue.Priority)
	require.NotNil(t, issue.Assignee)
	assert.Equal(t, "Alice Example", *issue.Assignee)
	require.NotNil(t, issue.Reporter)
	assert.Equal(t, "Bob Example", *issue.Reporter)
	assert.Equal(t, "2025-03-01T10:00:00.000+0000", issue.Created)
	assert.Equal(t, "2025-03-02T10:00:00.000+0000", issue.Updated)
	require.NotNil(t, issue.Parent)
	assert.Equal(t, "PROJ-100", issue.Parent.Key)
	assert.Equal(t, []string{"backend", "urgent"}, issue.Labels)
	require.Len(t, issue.Attachments, 1)
	assert.Equal(t, "log.txt", issue.Attachments[0].Filename)
	assert.Equal(t, int64(500), issue.Attachments[0].Size)
}

func TestGetIssueOptionalFieldsAbsent(t *testing.T) {
	server := newFixtureServer(t, 2)
	client := newTestClient(t, server.URL)

	issue, err := client.GetIssue("PROJ-2", nil)
	require.NoError(t, err)

	assert.Empty(t, issue.Description)
	assert.Empty(t, issue.Priority)
	assert.Nil(t, issue.Assignee)
	assert.Nil(t, issue.Reporter)
	assert.Nil(t, issue.Parent)
	assert.Empty(t, issue.Sprint)
	assert.Empty(t, issue.Attachments)
}

func TestGetIssueNotFound(t *testing.T) {
	server := newFixtureServer(t, 1)
	client := newTestClient(t, server.URL)

	_, err := client.GetIssue("MISSING-1", nil)
	require.Error(t, err)
	require.True(t, IsProtocolError(err))

	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.True(t, pe.NotFound())
}

func TestGetComments(t *testing.T) {
	server := newFixtureServer(t, 2)
	client := newTestClient(t, server.URL)

	t.Run("Creation order preserved", func(t *testing.T) {
		comments, err := client.GetComments("PROJ-1")
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, "Alice Example", comments[0].Author)
		assert.Equal(t, "first comment", comments[0].Body)
		assert.Equal(t, "Bob Example", comments[1].Author)
	})

	t.Run("No comments is empty, not an error", func(t *testing.T) {
		comments, err := client.GetComments("PROJ-2")
		require.NoError(t, err)
		assert.Empty(t, comments)
	})
}

func TestConnectionProbe(t *testing.T) {
	t.Run("Reachable server", func(t *testing.T) {
		server := newFixtureServer(t, 1)
		client := newTestClient(t, server.URL)

		status := client.TestConnection()
		assert.True(t, status.Connected)
		assert.Equal(t, "9.4.0", status.Version)
		assert.Equal(t, 940000, status.BuildNumber)
		assert.Equal(t, "Fixture Jira", status.ServerTitle)
		assert.Empty(t, status.Error)
	})

	t.Run("Unreachable server collapses to status", func(t *testing.T) {
		server := newFixtureServer(t, 1)
		url := server.URL
		server.Close()

		client := newTestClient(t, url)
		status := client.TestConnection()
		assert.False(t, status.Connected)
		assert.NotEmpty(t, status.Error)
	})
}
