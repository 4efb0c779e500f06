package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose bool

	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "slaunch",
	Short: "slaunch - submit experiment sweeps to Slurm",
	Long: `slaunch turns a declarative sweep definition into sbatch scripts and
submits them to the scheduler.

A sweep file holds a shared block merged under every job plus a jobs list of
per-job overrides. Command-line launcher options override both, and any extra
key=value token is handed through to the target program of every job.

Example:
  slaunch launch --jobs sweeps/crystal.yaml --mem 48G gflownet=flowmatch`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = buildLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// buildLogger is the single construction point for the process logger, used
// by the root command and by subcommands that parse their own flags.
func buildLogger(debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(launchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(templateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
