package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/jirasync/internal/config"
	"github.com/danielolaszy/jirasync/internal/jira"
	"github.com/danielolaszy/jirasync/internal/logging"
)

// statusCmd probes the configured Jira instance and reports server
// details. The probe itself never panics or errors; an unreachable
// server is reported and mapped to a non-zero exit.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check connectivity to the configured Jira instance",
	Long: `This command verifies the Jira connection settings by contacting the
server and displaying its version information.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %v", err)
		}

		logging.Debug("checking jira connectivity",
			"url", cfg.Jira.URL,
			"username", cfg.Jira.Username,
			"token", logging.MaskSensitive(cfg.Jira.Token))

		client, err := jira.NewClient(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize jira client: %v", err)
		}

		status := client.TestConnection()
		if !status.Connected {
			fmt.Printf("Not connected to %s\n", status.URL)
			fmt.Printf("- Error: %s\n", status.Error)
			return fmt.Errorf("jira connection failed")
		}

		fmt.Printf("Connected to %s\n", status.URL)
		fmt.Printf("- Server title: %s\n", status.ServerTitle)
		fmt.Printf("- Version: %s\n", status.Version)
		fmt.Printf("- Build number: %d\n", status.BuildNumber)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
