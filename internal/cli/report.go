package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uzspeech/tts-survey-bot/internal/report"
	"github.com/uzspeech/tts-survey-bot/internal/store"
)

// NewReportCmd creates the 'report' command for printing aggregate results.
func NewReportCmd() *cobra.Command {
	var promptID int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print aggregate survey results",
		Long: `Print aggregate survey results from the progress store.

Without flags this prints the full summary: participant counts, per-model
average overall-preference ratings, and final preference votes. With
--prompt, results are restricted to one prompt.`,
		Example: `  # Full summary
  tts-survey-bot report

  # Averages for prompt 2 only
  tts-survey-bot report --prompt 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, promptID)
		},
	}

	cmd.Flags().IntVar(&promptID, "prompt", 0, "restrict results to one prompt number")

	return cmd
}

func runReport(cmd *cobra.Command, promptID int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	out, err := buildReport(st, promptID)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

// buildReport renders either the full summary or one prompt's results.
func buildReport(st store.Store, promptID int) (string, error) {
	if promptID > 0 {
		averages, total, err := report.PromptResults(st, promptID)
		if err != nil {
			return "", fmt.Errorf("failed to build prompt results: %w", err)
		}
		return report.FormatPromptResults(promptID, averages, total), nil
	}

	summary, err := report.BuildSummary(st)
	if err != nil {
		return "", fmt.Errorf("failed to build summary: %w", err)
	}
	return summary.Format(), nil
}
