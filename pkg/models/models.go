// Package models defines data structures shared across the application.
package models

// Issue represents a Jira issue with the fields needed for rendering.
// Optional fields are modeled explicitly: a nil pointer or empty value
// means the field was absent on the remote record.
type Issue struct {
	// Key is the full issue identifier (e.g., "PROJ-123")
	Key string

	// Type is the issue type name (e.g., "Story", "Bug")
	Type string

	// Status is the current workflow status name
	Status string

	// Summary is the issue's title
	Summary string

	// Description is the issue body in Jira markup; empty means no
	// description was provided
	Description string

	// Priority is the priority name; empty when the issue has none
	Priority string

	// Assignee is the assignee's display name; nil when unassigned
	Assignee *string

	// Reporter is the reporter's display name; nil when absent
	Reporter *string

	// Created is the creation timestamp as returned by the API
	// (e.g., "2025-12-11T10:30:45.123-0400")
	Created string

	// Updated is the last-update timestamp in the same format
	Updated string

	// Parent links to a containing issue (epic or parent task)
	Parent *ParentLink

	// Sprint is the active sprint name; empty when not in a sprint
	Sprint string

	// Labels is the ordered set of label strings on the issue
	Labels []string

	// Attachments is the ordered list of file attachments
	Attachments []Attachment
}

// ParentLink identifies a containing issue.
type ParentLink struct {
	// Key is the parent issue identifier
	Key string

	// Summary is the parent issue's title; may be empty when the API
	// response does not include it
	Summary string
}

// Attachment describes a file attached to an issue.
type Attachment struct {
	// Filename is the attachment's file name
	Filename string

	// ContentURL is the download location; empty when unknown
	ContentURL string

	// Size is the attachment size in bytes
	Size int64
}

// Comment represents a single comment on an issue.
type Comment struct {
	// Author is the comment author's display name
	Author string

	// Created is the creation timestamp as returned by the API
	Created string

	// Body is the comment text in Jira markup
	Body string
}

// Rendered pairs an issue key with its rendered markdown document.
type Rendered struct {
	// Key is the issue identifier the document was rendered from
	Key string

	// Document is the complete markdown text
	Document string
}

// ConnectionStatus reports the outcome of a connectivity probe.
type ConnectionStatus struct {
	// Connected indicates whether the server responded
	Connected bool

	// URL is the Jira instance that was probed
	URL string

	// Version is the reported server version
	Version string

	// BuildNumber is the reported server build number
	BuildNumber int

	// ServerTitle is the instance's display title
	ServerTitle string

	// Error holds the failure description when Connected is false
	Error string
}
