package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/jirasync/internal/config"
	"github.com/danielolaszy/jirasync/internal/jira"
	"github.com/danielolaszy/jirasync/internal/logging"
	"github.com/danielolaszy/jirasync/internal/processor"
)

// exportCmd writes one Markdown file per issue matching a JQL query.
// Issues that fail to render are skipped and reported; a skipped
// issue is a warning, not a failure of the whole run.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export issues matching a JQL query to Markdown files",
	Long: `Export every issue matching a JQL query as a Markdown file named
<ISSUE-KEY>.md in the output directory.

Issues are fetched in the order the query returns them, with pagination
handled automatically. A failure to render a single issue skips that
issue and continues; the summary at the end reports how many issues
were produced and how many were skipped.

Example:
  jirasync export --jql "project = MYPROJ ORDER BY key ASC" --output ./issues`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jql, err := cmd.Flags().GetString("jql")
		if err != nil {
			return err
		}
		output, err := cmd.Flags().GetString("output")
		if err != nil {
			return err
		}
		fieldsCSV, err := cmd.Flags().GetString("fields")
		if err != nil {
			return err
		}
		maxResults, err := cmd.Flags().GetInt("max-results")
		if err != nil {
			return err
		}
		noComments, err := cmd.Flags().GetBool("no-comments")
		if err != nil {
			return err
		}
		noAttachments, err := cmd.Flags().GetBool("no-attachments")
		if err != nil {
			return err
		}

		if jql == "" {
			return fmt.Errorf("jql flag is required")
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %v", err)
		}

		client, err := jira.NewClient(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize jira client: %v", err)
		}

		opts := processor.DefaultOptions()
		opts.IncludeComments = !noComments
		opts.IncludeAttachments = !noAttachments
		proc := processor.New(client, nil, opts)

		logging.Info("starting export",
			"jql", jql,
			"output", output,
			"max_results", maxResults)

		seq, report, err := proc.StreamIssues(jql, splitFields(fieldsCSV), maxResults)
		if err != nil {
			return fmt.Errorf("failed to search issues: %v", err)
		}

		if err := os.MkdirAll(output, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %v", err)
		}

		for rendered := range seq {
			path := filepath.Join(output, sanitizeFilename(rendered.Key)+".md")
			if err := os.WriteFile(path, []byte(rendered.Document), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %v", path, err)
			}
			logging.Debug("wrote document", "key", rendered.Key, "path", path)
		}

		logging.Info("export complete",
			"produced", report.Produced,
			"skipped", len(report.Skipped))
		for _, skip := range report.Skipped {
			logging.Warn("skipped issue",
				"key", skip.Key,
				"reason", skip.Reason)
		}

		fmt.Printf("Exported %d issue(s) to %s\n", report.Produced, output)
		if len(report.Skipped) > 0 {
			fmt.Printf("Skipped %d issue(s), see log for details\n", len(report.Skipped))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("jql", "q", "", "JQL query selecting the issues to export")
	exportCmd.Flags().StringP("output", "o", ".", "Directory to write Markdown files into")
	exportCmd.Flags().String("fields", "", "Comma-separated list of fields to fetch (default: all)")
	exportCmd.Flags().IntP("max-results", "n", 0, "Maximum number of issues to export (0 = no limit)")
	exportCmd.Flags().Bool("no-comments", false, "Omit the comments section")
	exportCmd.Flags().Bool("no-attachments", false, "Omit the attachments section")
}

// splitFields turns a comma-separated field list into a slice,
// dropping empty entries. An empty input means "all fields" and
// returns nil.
func splitFields(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	var fields []string
	for _, field := range strings.Split(csv, ",") {
		if field = strings.TrimSpace(field); field != "" {
			fields = append(fields, field)
		}
	}
	return fields
}

// sanitizeFilename keeps issue keys safe to use as file names. Keys
// are normally "PROJ-123" shaped, but anything outside a conservative
// character set is replaced.
func sanitizeFilename(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, key)
}
