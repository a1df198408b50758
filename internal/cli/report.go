package cli

import (
	"fmt"
	"path/filepath"

	"github.com/nath88d/CC7711-Projeto-Robos/internal/report"
	"github.com/nath88d/CC7711-Projeto-Robos/internal/storage/memory"
	v1 "github.com/nath88d/CC7711-Projeto-Robos/internal/storage/memory/export/v1"
	sqlitestorage "github.com/nath88d/CC7711-Projeto-Robos/internal/storage/sqlite"
	"github.com/spf13/cobra"
)

var reportFlags struct {
	plot  string
	runID string
}

var reportCmd = &cobra.Command{
	Use:   "report FILE",
	Short: "Summarize a recorded run",
	Long: `Reads a run exported by the memory storage backend (.json or .json.gz)
or a dump written by the sqlite backend (.db), and prints tick, alert, stuck and perturbation counts along with wheel
command statistics for the NORMAL part of the run.

With --plot, also renders the left and right wheel commands per tick to a
PNG, with the alert tick marked. A .db file may hold several runs; --run
picks one by id, otherwise the latest is used.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFlags.plot, "plot", "", "write a wheel command plot to this PNG file")
	reportCmd.Flags().StringVar(&reportFlags.runID, "run", "", "run id to read from a .db dump")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	data, err := loadRecording(args[0], reportFlags.runID)
	if err != nil {
		return fmt.Errorf("failed to load recording: %w", err)
	}

	if err := report.Summarize(data).Write(cmd.OutOrStdout()); err != nil {
		return err
	}

	if reportFlags.plot == "" {
		return nil
	}
	if err := report.PlotCommands(data, reportFlags.plot); err != nil {
		return fmt.Errorf("failed to plot commands: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Plot written to %s\n", reportFlags.plot)
	return nil
}

func loadRecording(path, runID string) (*v1.RunData, error) {
	if filepath.Ext(path) == ".db" {
		return sqlitestorage.LoadDump(path, runID)
	}
	return memory.LoadExport(path)
}
