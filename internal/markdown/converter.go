// Package markdown renders Jira issues as Markdown documents.
package markdown

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/danielolaszy/jirasync/internal/logging"
	"github.com/danielolaszy/jirasync/internal/markup"
	"github.com/danielolaszy/jirasync/pkg/models"
)

// TransformFunc converts Jira markup into Markdown. A failing
// transform must return an error; the Converter then falls back to
// the untransformed input rather than propagating the failure.
type TransformFunc func(text string) (string, error)

// wireTimeLayout is the timestamp format issues and comments carry.
// Fractional seconds are accepted after the seconds field, and a
// literal "Z" suffix is treated as a zero offset.
const wireTimeLayout = "2006-01-02T15:04:05-0700"

// Placeholder text for sections with no content.
const (
	noDescription = "_No description provided._"
	noComments    = "_No comments._"
	noAttachments = "_No attachments._"
	unassigned    = "Unassigned"
)

// Converter renders issues as Markdown. It holds no per-issue state
// and is safe to reuse across renders.
type Converter struct {
	transform TransformFunc
	logger    *slog.Logger
	now       func() time.Time
}

// NewConverter creates a converter using the built-in Jira wiki
// markup transform.
func NewConverter() *Converter {
	return NewConverterWithTransform(markup.ToMarkdown)
}

// NewConverterWithTransform creates a converter with a caller-supplied
// markup transform.
func NewConverterWithTransform(transform TransformFunc) *Converter {
	return &Converter{
		transform: transform,
		logger:    logging.GetLogger(),
		now:       time.Now,
	}
}

// ConvertMarkup runs text through the markup transform. On transform
// failure the original text is returned unchanged.
func (c *Converter) ConvertMarkup(text string) string {
	if text == "" {
		return ""
	}
	converted, err := c.transform(text)
	if err != nil {
		c.logger.Warn("failed to convert jira markup", "error", err)
		return text
	}
	return converted
}

// FormatMetadata renders the issue metadata block. Key, type, and
// status always appear; assignee always appears (with a placeholder
// when unassigned); the remaining lines appear only when the field
// is present.
func (c *Converter) FormatMetadata(issue models.Issue) string {
	lines := []string{
		fmt.Sprintf("**Key:** %s", issue.Key),
		fmt.Sprintf("**Type:** %s", issue.Type),
		fmt.Sprintf("**Status:** %s", issue.Status),
	}

	if issue.Priority != "" {
		lines = append(lines, fmt.Sprintf("**Priority:** %s", issue.Priority))
	}

	if issue.Assignee != nil {
		lines = append(lines, fmt.Sprintf("**Assignee:** %s", *issue.Assignee))
	} else {
		lines = append(lines, "**Assignee:** "+unassigned)
	}
	if issue.Reporter != nil {
		lines = append(lines, fmt.Sprintf("**Reporter:** %s", *issue.Reporter))
	}

	if issue.Created != "" {
		lines = append(lines, fmt.Sprintf("**Created:** %s", c.formatTimestamp(issue.Created)))
	}
	if issue.Updated != "" {
		lines = append(lines, fmt.Sprintf("**Updated:** %s", c.formatTimestamp(issue.Updated)))
	}

	if issue.Parent != nil {
		parent := fmt.Sprintf("**Parent:** [%s] %s", issue.Parent.Key, issue.Parent.Summary)
		lines = append(lines, strings.TrimRight(parent, " "))
	}
	if issue.Sprint != "" {
		lines = append(lines, fmt.Sprintf("**Sprint:** %s", issue.Sprint))
	}

	if len(issue.Labels) > 0 {
		labels := make([]string, len(issue.Labels))
		for i, label := range issue.Labels {
			labels[i] = "`" + label + "`"
		}
		lines = append(lines, fmt.Sprintf("**Labels:** %s", strings.Join(labels, " ")))
	}

	return strings.Join(lines, "\n")
}

// FormatDescription renders the description section.
func (c *Converter) FormatDescription(issue models.Issue) string {
	if issue.Description == "" {
		return noDescription
	}
	return c.ConvertMarkup(issue.Description)
}

// FormatComments renders comments as labeled blocks in input order.
func (c *Converter) FormatComments(comments []models.Comment) string {
	if len(comments) == 0 {
		return noComments
	}

	var lines []string
	for _, comment := range comments {
		author := comment.Author
		if author == "" {
			author = "Unknown"
		}
		created := "Unknown date"
		if comment.Created != "" {
			created = c.formatTimestamp(comment.Created)
		}

		lines = append(lines,
			fmt.Sprintf("### %s - %s", author, created),
			"",
			c.ConvertMarkup(comment.Body),
			"",
		)
	}

	return strings.Join(lines, "\n")
}

// FormatAttachments renders one link line per attachment.
func (c *Converter) FormatAttachments(issue models.Issue) string {
	if len(issue.Attachments) == 0 {
		return noAttachments
	}

	var lines []string
	for _, attachment := range issue.Attachments {
		url := attachment.ContentURL
		if url == "" {
			url = "#"
		}
		lines = append(lines, fmt.Sprintf("- [%s](%s) (%s)",
			attachment.Filename, url, formatFileSize(attachment.Size)))
	}

	return strings.Join(lines, "\n")
}

// IssueToMarkdown renders a complete document for one issue. Section
// order is fixed: title, metadata, description, comments (only when
// includeComments is set and comments were supplied), attachments
// (whenever includeAttachments is set), footer.
//
// It fails when the issue is missing its key or summary, which
// happens when the issue was fetched with a restricted field set.
func (c *Converter) IssueToMarkdown(issue models.Issue, comments []models.Comment, includeComments, includeAttachments bool) (string, error) {
	if issue.Key == "" {
		return "", fmt.Errorf("issue has no key")
	}
	if issue.Summary == "" {
		return "", fmt.Errorf("issue %s has no summary; was it fetched with a restricted field set?", issue.Key)
	}

	var sections []string

	sections = append(sections, fmt.Sprintf("# [%s] %s", issue.Key, issue.Summary), "")
	sections = append(sections, c.FormatMetadata(issue), "")
	sections = append(sections, "## Description", "", c.FormatDescription(issue), "")

	if includeComments && len(comments) > 0 {
		sections = append(sections, "## Comments", "", c.FormatComments(comments), "")
	}
	if includeAttachments {
		sections = append(sections, "## Attachments", "", c.FormatAttachments(issue), "")
	}

	sections = append(sections, "---",
		fmt.Sprintf("*Exported from Jira: %s*", c.now().Format("2006-01-02")))

	return strings.Join(sections, "\n"), nil
}

// formatTimestamp renders a wire-format timestamp as
// "YYYY-MM-DD HH:MM" in the record's own offset. Values that fail to
// parse are returned unchanged.
func (c *Converter) formatTimestamp(raw string) string {
	value := raw
	if strings.HasSuffix(value, "Z") {
		value = strings.TrimSuffix(value, "Z") + "+0000"
	}

	parsed, err := time.Parse(wireTimeLayout, value)
	if err != nil {
		c.logger.Warn("failed to parse timestamp", "value", raw, "error", err)
		return raw
	}
	return parsed.Format("2006-01-02 15:04")
}

// formatFileSize renders a byte count with binary (1024-based) units
// and one decimal digit above the byte range.
func formatFileSize(size int64) string {
	const unit = 1024
	switch {
	case size < unit:
		return fmt.Sprintf("%d B", size)
	case size < unit*unit:
		return fmt.Sprintf("%.1f KB", float64(size)/unit)
	case size < unit*unit*unit:
		return fmt.Sprintf("%.1f MB", float64(size)/(unit*unit))
	default:
		return fmt.Sprintf("%.1f GB", float64(size)/(unit*unit*unit))
	}
}
