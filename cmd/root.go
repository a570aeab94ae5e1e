// Package cmd provides the command-line interface for the jirasync tool.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jirasync",
	Short: "Export Jira issues as Markdown documents",
	Long: `jirasync fetches issues from a Jira instance using JQL and renders
each issue (metadata, description, comments, and attachments) as a
Markdown document.

Connection settings are read from the JIRA_URL, JIRA_USERNAME, and
JIRA_TOKEN environment variables.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
