package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewResyncCmd creates the 'resync' command for reconciling the two stores.
func NewResyncCmd() *cobra.Command {
	var fromCSV bool

	cmd := &cobra.Command{
		Use:   "resync",
		Short: "Reconcile the CSV mirror and the database",
		Long: `Reconcile the CSV result files and the relational database.

By default the database is treated as the authority and the CSV files are
rewritten from it (the same reconciliation 'serve' runs at startup). With
--from-csv the direction is reversed: the database tables are replaced
with the current CSV contents. Use that after recovering CSV rows that
were written while the database was unreachable.`,
		Example: `  # Rebuild the CSV files from the database
  tts-survey-bot resync

  # Replace the database contents with the CSV files
  tts-survey-bot resync --from-csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResync(cmd, fromCSV)
		},
	}

	cmd.Flags().BoolVar(&fromCSV, "from-csv", false, "treat the CSV files as the authority")

	return cmd
}

func runResync(cmd *cobra.Command, fromCSV bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if fromCSV {
		if err := st.MirrorToDatabase(); err != nil {
			return fmt.Errorf("failed to mirror CSV files into the database: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Database replaced from CSV files")
		return nil
	}

	if err := st.ResyncFromDatabase(); err != nil {
		return fmt.Errorf("failed to rebuild CSV files from the database: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "CSV files rebuilt from the database")
	return nil
}
