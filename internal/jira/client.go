// Package jira wraps the Jira REST API behind the read operations the
// rest of the application needs: JQL search with pagination, single
// issue fetch, comment fetch, and a connectivity probe.
package jira

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	jira "github.com/andygrunwald/go-jira"

	"github.com/danielolaszy/jirasync/internal/config"
	"github.com/danielolaszy/jirasync/internal/logging"
	"github.com/danielolaszy/jirasync/pkg/models"
)

// searchBatchSize is the page size used during JQL pagination. Jira
// caps a single search response at 100 results.
const searchBatchSize = 100

// jiraTimeFormat is the timestamp format Jira uses on the wire,
// e.g. "2025-12-11T10:30:45.123-0400".
const jiraTimeFormat = "2006-01-02T15:04:05.000-0700"

// Client handles interactions with the Jira API. The underlying
// session is established lazily on first use and reused afterwards;
// a Client is meant for a single logical caller and is not safe for
// concurrent use.
type Client struct {
	cfg    config.JiraConfig
	logger *slog.Logger
	client *jira.Client
}

// NewClient creates a new Jira client from validated configuration.
// No connection is made until the first remote call.
func NewClient(cfg *config.Config) (*Client, error) {
	if err := config.ValidateJiraConfig(cfg); err != nil {
		return nil, err
	}
	return &Client{
		cfg:    cfg.Jira,
		logger: logging.GetLogger(),
	}, nil
}

// Connect establishes a fresh session and verifies it with a server
// info request. Invoking it again redoes the handshake.
func (c *Client) Connect() error {
	c.logger.Info("connecting to jira", "url", c.cfg.URL)

	tp := jira.BasicAuthTransport{
		Username: c.cfg.Username,
		Password: c.cfg.Token,
	}
	client, err := jira.NewClient(tp.Client(), c.cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to create jira client: %w", err)
	}

	info, err := fetchServerInfo(client)
	if err != nil {
		return err
	}

	c.client = client
	c.logger.Info("connected to jira", "version", info.Version)
	return nil
}

// api returns the underlying session, connecting first if needed.
func (c *Client) api() (*jira.Client, error) {
	if c.client == nil {
		if err := c.Connect(); err != nil {
			return nil, err
		}
	}
	return c.client, nil
}

// SearchIssues runs a JQL query and returns every matching issue in
// service order, fetching pages of searchBatchSize until a short page
// or maxResults is reached. A maxResults of 0 means no cap.
//
// When fields is non-empty only those attributes are populated;
// callers restricting fields must include everything the renderer
// needs, or rendering will fail downstream.
func (c *Client) SearchIssues(jql string, fields []string, maxResults int) ([]models.Issue, error) {
	if strings.TrimSpace(jql) == "" {
		return nil, &ProtocolError{StatusCode: 400, Message: "empty JQL query"}
	}

	client, err := c.api()
	if err != nil {
		return nil, err
	}

	c.logger.Info("executing jql query", "jql", jql)

	var issues []models.Issue
	startAt := 0
	for {
		opts := &jira.SearchOptions{
			StartAt:    startAt,
			MaxResults: searchBatchSize,
			Fields:     fields,
		}
		batch, resp, err := client.Issue.Search(jql, opts)
		if err != nil {
			return nil, classify(resp, err)
		}
		if len(batch) == 0 {
			break
		}

		for i := range batch {
			issues = append(issues, fromJiraIssue(&batch[i]))
		}
		c.logger.Debug("fetched issue batch", "batch_size", len(batch), "total", len(issues))

		if maxResults > 0 && len(issues) >= maxResults {
			issues = issues[:maxResults]
			break
		}
		if len(batch) < searchBatchSize {
			break
		}
		startAt += searchBatchSize
	}

	c.logger.Info("retrieved issues", "count", len(issues))
	return issues, nil
}

// GetIssue fetches a single issue by key. Unknown keys surface as a
// ProtocolError with a not-found status.
func (c *Client) GetIssue(key string, fields []string) (models.Issue, error) {
	client, err := c.api()
	if err != nil {
		return models.Issue{}, err
	}

	c.logger.Debug("fetching issue", "key", key)

	var opts *jira.GetQueryOptions
	if len(fields) > 0 {
		opts = &jira.GetQueryOptions{Fields: strings.Join(fields, ",")}
	}
	issue, resp, err := client.Issue.Get(key, opts)
	if err != nil {
		return models.Issue{}, classify(resp, err)
	}
	return fromJiraIssue(issue), nil
}

// GetComments fetches all comments on an issue in creation order. An
// issue with no comments yields an empty slice, not an error.
func (c *Client) GetComments(key string) ([]models.Comment, error) {
	client, err := c.api()
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetching comments", "key", key)

	issue, resp, err := client.Issue.Get(key, &jira.GetQueryOptions{Fields: "comment"})
	if err != nil {
		return nil, classify(resp, err)
	}
	if issue.Fields == nil || issue.Fields.Comments == nil {
		return []models.Comment{}, nil
	}

	comments := make([]models.Comment, 0, len(issue.Fields.Comments.Comments))
	for _, comment := range issue.Fields.Comments.Comments {
		comments = append(comments, models.Comment{
			Author:  comment.Author.DisplayName,
			Created: comment.Created,
			Body:    comment.Body,
		})
	}
	return comments, nil
}

// TestConnection probes the server and reports the outcome. It never
// returns an error: any failure collapses into the status struct.
func (c *Client) TestConnection() models.ConnectionStatus {
	client, err := c.api()
	if err != nil {
		return models.ConnectionStatus{URL: c.cfg.URL, Error: err.Error()}
	}
	info, err := fetchServerInfo(client)
	if err != nil {
		return models.ConnectionStatus{URL: c.cfg.URL, Error: err.Error()}
	}
	return models.ConnectionStatus{
		Connected:   true,
		URL:         c.cfg.URL,
		Version:     info.Version,
		BuildNumber: info.BuildNumber,
		ServerTitle: info.ServerTitle,
	}
}

// serverInfo mirrors the fields we read from /rest/api/2/serverInfo.
type serverInfo struct {
	Version     string `json:"version"`
	BuildNumber int    `json:"buildNumber"`
	ServerTitle string `json:"serverTitle"`
}

// fetchServerInfo issues a raw request because go-jira has no service
// wrapper for the serverInfo endpoint.
func fetchServerInfo(client *jira.Client) (*serverInfo, error) {
	req, err := client.NewRequest("GET", "rest/api/2/serverInfo", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build server info request: %w", err)
	}
	info := new(serverInfo)
	resp, err := client.Do(req, info)
	if err != nil {
		return nil, classify(resp, err)
	}
	return info, nil
}

// fromJiraIssue maps a go-jira issue onto the application's model.
// Absent optional fields stay nil or empty. The parent payload from
// the API carries only the key, so ParentLink.Summary is left empty.
func fromJiraIssue(issue *jira.Issue) models.Issue {
	out := models.Issue{Key: issue.Key}

	f := issue.Fields
	if f == nil {
		return out
	}

	out.Type = f.Type.Name
	out.Summary = f.Summary
	out.Description = f.Description
	out.Created = formatWireTime(time.Time(f.Created))
	out.Updated = formatWireTime(time.Time(f.Updated))
	out.Labels = f.Labels

	if f.Status != nil {
		out.Status = f.Status.Name
	}
	if f.Priority != nil {
		out.Priority = f.Priority.Name
	}
	if f.Assignee != nil {
		name := f.Assignee.DisplayName
		out.Assignee = &name
	}
	if f.Reporter != nil {
		name := f.Reporter.DisplayName
		out.Reporter = &name
	}
	if f.Parent != nil {
		out.Parent = &models.ParentLink{Key: f.Parent.Key}
	}
	if f.Sprint != nil {
		out.Sprint = f.Sprint.Name
	}
	for _, attachment := range f.Attachments {
		out.Attachments = append(out.Attachments, models.Attachment{
			Filename:   attachment.Filename,
			ContentURL: attachment.Content,
			Size:       int64(attachment.Size),
		})
	}

	return out
}

// formatWireTime renders a parsed timestamp back into the wire format
// the renderer expects; zero times map to the empty string.
func formatWireTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(jiraTimeFormat)
}
