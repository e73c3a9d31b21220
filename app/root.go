// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "studybuddy-server",
	Short: "StudyBuddy server manages study groups, membership and group chat",
	Long: `StudyBuddy server is the backend for the StudyBuddy learning app.
It manages study group lifecycle, membership with capacity limits,
group chat and study resource metadata over a JSON API.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
