// Package cli implements the habitcoach commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"habitcoach/internal/config"
)

var dbPath string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:           "habitcoach",
	Short:         "21-day habit coach",
	Long:          "Runs the habit coach: setup dialog, daily reminders and progress tracking over HTTP and Web Push.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $COACH_DB_PATH or ./data/habits.db)")
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig() *config.Config {
	cfg := config.Load()
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg
}

// PrintError reports a failed command on stderr.
func PrintError(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}
