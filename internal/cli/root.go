// Package cli implements the boxguard command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// Version and BuildDate are set at build time via ldflags.
var (
	Version   = "dev"
	BuildDate = "unknown"
)

const appName = "boxguard"

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Reactive box-guarding robot controller",
	Long: `boxguard drives a differential-drive robot around an arena full of
boxes. It wanders and avoids obstacles until one of the tracked boxes is
moved, then latches into an alert spin with blinking indicators.

Runs are recorded through the configured storage backend and can be
summarized and plotted afterwards with the report command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("boxguard version {{.Version}}\n")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
