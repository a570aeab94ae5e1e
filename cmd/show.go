package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/jirasync/internal/config"
	"github.com/danielolaszy/jirasync/internal/jira"
	"github.com/danielolaszy/jirasync/internal/processor"
)

// showCmd renders a single issue. Unlike export, render failures are
// not suppressed: they surface as a non-zero exit.
var showCmd = &cobra.Command{
	Use:   "show KEY",
	Short: "Render a single issue as Markdown",
	Long: `Render one issue, identified by its key (e.g., "PROJ-123"), as a
Markdown document. The document is printed to stdout unless --output
names a file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]

		output, err := cmd.Flags().GetString("output")
		if err != nil {
			return err
		}
		fieldsCSV, err := cmd.Flags().GetString("fields")
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

		rendered, err := proc.ProcessIssue(key, splitFields(fieldsCSV))
		if err != nil {
			return fmt.Errorf("failed to process %s: %v", key, err)
		}

		if output == "" {
			fmt.Println(rendered.Document)
			return nil
		}
		if err := os.WriteFile(output, []byte(rendered.Document), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %v", output, err)
		}
		fmt.Printf("Wrote %s to %s\n", rendered.Key, output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringP("output", "o", "", "File to write the document to (default: stdout)")
	showCmd.Flags().String("fields", "", "Comma-separated list of fields to fetch (default: all)")
	showCmd.Flags().Bool("no-comments", false, "Omit the comments section")
	showCmd.Flags().Bool("no-attachments", false, "Omit the attachments section")
}
