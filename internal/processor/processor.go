// Package processor orchestrates fetching Jira issues and rendering
// them as Markdown documents. It isolates per-issue failures so one
// bad issue never aborts a batch.
package processor

import (
	"iter"
	"log/slog"

	"github.com/danielolaszy/jirasync/internal/logging"
	"github.com/danielolaszy/jirasync/internal/markdown"
	"github.com/danielolaszy/jirasync/pkg/models"
)

// IssueSource is the read surface of the Jira client the processor
// drives. It is satisfied by *jira.Client and by in-memory fakes in
// tests.
type IssueSource interface {
	SearchIssues(jql string, fields []string, maxResults int) ([]models.Issue, error)
	GetIssue(key string, fields []string) (models.Issue, error)
	GetComments(key string) ([]models.Comment, error)
	TestConnection() models.ConnectionStatus
}

// Options controls which document sections the processor produces.
type Options struct {
	IncludeComments    bool
	IncludeAttachments bool
	Logger             *slog.Logger
}

// DefaultOptions enables comments and attachments, matching the full
// document layout.
func DefaultOptions() Options {
	return Options{
		IncludeComments:    true,
		IncludeAttachments: true,
	}
}

// Skip records one issue excluded from a stream and why.
type Skip struct {
	Key    string
	Reason string
}

// Report accumulates the outcome of one StreamIssues run. It is
// populated while the returned sequence is consumed; a non-zero skip
// count is a warning condition, not a run failure.
type Report struct {
	Produced int
	Skipped  []Skip
}

// Processor drives an IssueSource and a markdown converter. It keeps
// no state across calls.
type Processor struct {
	source             IssueSource
	converter          *markdown.Converter
	includeComments    bool
	includeAttachments bool
	logger             *slog.Logger
}

// New creates a processor. A nil converter gets the default Jira wiki
// transform; a nil logger falls back to the application logger.
func New(source IssueSource, converter *markdown.Converter, opts Options) *Processor {
	if converter == nil {
		converter = markdown.NewConverter()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Processor{
		source:             source,
		converter:          converter,
		includeComments:    opts.IncludeComments,
		includeAttachments: opts.IncludeAttachments,
		logger:             logger,
	}
}

// StreamIssues fetches every issue matching jql (eagerly, pagination
// included) and returns a lazy sequence of rendered documents in
// service order. Each pull fetches comments (when enabled) and
// renders one issue; a comment fetch failure degrades to an empty
// comment list, and a render failure skips the issue and records it
// on the report. Search failures are returned immediately.
//
// The sequence is fresh per call; stopping early halts further
// fetch and render work.
func (p *Processor) StreamIssues(jql string, fields []string, maxResults int) (iter.Seq[models.Rendered], *Report, error) {
	issues, err := p.source.SearchIssues(jql, fields, maxResults)
	if err != nil {
		return nil, nil, err
	}

	p.logger.Info("found issues to process", "count", len(issues))

	report := &Report{}
	seq := func(yield func(models.Rendered) bool) {
		for _, issue := range issues {
			document, err := p.renderIssue(issue)
			if err != nil {
				p.logger.Error("failed to render issue",
					"key", issue.Key,
					"error", err)
				report.Skipped = append(report.Skipped, Skip{Key: issue.Key, Reason: err.Error()})
				continue
			}

			report.Produced++
			if !yield(models.Rendered{Key: issue.Key, Document: document}) {
				return
			}
		}
	}

	return seq, report, nil
}

// ProcessIssue fetches and renders a single issue by key. Unlike
// StreamIssues, render failures propagate to the caller.
func (p *Processor) ProcessIssue(key string, fields []string) (models.Rendered, error) {
	issue, err := p.source.GetIssue(key, fields)
	if err != nil {
		return models.Rendered{}, err
	}

	comments := p.fetchComments(issue.Key)
	document, err := p.converter.IssueToMarkdown(issue, comments, p.includeComments, p.includeAttachments)
	if err != nil {
		return models.Rendered{}, err
	}

	return models.Rendered{Key: issue.Key, Document: document}, nil
}

// TestConnection collapses the connectivity probe to a boolean.
func (p *Processor) TestConnection() bool {
	return p.source.TestConnection().Connected
}

// renderIssue fetches comments when enabled and renders one issue.
func (p *Processor) renderIssue(issue models.Issue) (string, error) {
	comments := p.fetchComments(issue.Key)
	return p.converter.IssueToMarkdown(issue, comments, p.includeComments, p.includeAttachments)
}

// fetchComments returns the issue's comments, degrading to an empty
// list when comments are disabled or the fetch fails.
func (p *Processor) fetchComments(key string) []models.Comment {
	if !p.includeComments {
		return nil
	}
	comments, err := p.source.GetComments(key)
	if err != nil {
		p.logger.Warn("failed to fetch comments",
			"key", key,
			"error", err)
		return []models.Comment{}
	}
	return comments
}
