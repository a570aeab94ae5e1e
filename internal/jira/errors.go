package jira

import (
	"errors"
	"fmt"
	"net/http"

	jira "github.com/andygrunwald/go-jira"
)

// ProtocolError reports a request the Jira server rejected: malformed
// JQL, an unknown issue key, or failed authentication. It is distinct
// from connectivity failures, which are returned as plain wrapped
// errors.
type ProtocolError struct {
	StatusCode int
	Message    string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("jira rejected request (status %d): %s", e.StatusCode, e.Message)
}

// NotFound reports whether the error was a failed key lookup.
func (e *ProtocolError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsProtocolError reports whether err (or anything it wraps) is a
// rejection by the server rather than a transport failure.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// classify turns a go-jira call result into either a ProtocolError
// (the server answered with a 4xx/5xx status) or a wrapped
// connectivity error (no usable response at all).
func classify(resp *jira.Response, err error) error {
	if err == nil {
		return nil
	}
	if resp != nil && resp.StatusCode >= http.StatusBadRequest {
		return &ProtocolError{StatusCode: resp.StatusCode, Message: err.Error()}
	}
	return fmt.Errorf("jira request failed: %w", err)
}
