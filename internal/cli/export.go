package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// NewExportCmd creates the 'export' command for copying the CSV results.
func NewExportCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Copy the CSV result files to a directory",
		Long: `Copy the phase-1 and phase-2 CSV result files to a directory.

The files are copied as-is; run 'resync' first if the database is known
to be ahead of the CSV mirror.`,
		Example: `  # Copy results into the current directory
  tts-survey-bot export

  # Copy into a named directory
  tts-survey-bot export --out ./results`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, outDir)
		},
	}

	cmd.Flags().StringVar(&outDir, "out", ".", "destination directory")

	return cmd
}

func runExport(cmd *cobra.Command, outDir string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, src := range []string{st.Phase1CSVPath(), st.Phase2CSVPath()} {
		dst := filepath.Join(outDir, filepath.Base(src))
		if err := copyFile(src, dst); err != nil {
			return fmt.Errorf("failed to export %s: %w", filepath.Base(src), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", dst)
	}
	return nil
}

// copyFile copies src to dst, truncating dst if it exists.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
