/*
Package main is the entry point for the tts-survey-bot CLI.

tts-survey-bot runs a two-phase conversational survey that collects human
ratings of text-to-speech models behind anonymous labels.

Usage:
  tts-survey-bot [command]

Available Commands:
  serve       Run the survey bot (stdio transport)
  report      Print aggregate survey results
  export      Copy the CSV result files to a directory
  resync      Reconcile the CSV mirror and the database
  help        Help about any command

Examples:
  # Run the bot
  tts-survey-bot serve

  # Print the summary after a survey run
  tts-survey-bot report
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/uzspeech/tts-survey-bot/internal/cli"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tts-survey-bot",
		Short: "Two-phase TTS evaluation survey bot",
		Long: `tts-survey-bot collects human evaluations of text-to-speech models.

Participants rate audio clips behind anonymous labels in phase 1
(four ratings per clip, per category, per prompt), then pick a single
preferred model in phase 2. Results are dual-written to CSV files and a
relational database, and the survey is resumable across restarts.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	}

	rootCmd.AddCommand(cli.NewServeCmd())
	rootCmd.AddCommand(cli.NewReportCmd())
	rootCmd.AddCommand(cli.NewExportCmd())
	rootCmd.AddCommand(cli.NewResyncCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
