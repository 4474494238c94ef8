// Package cmd wires the command line surface: filtering, cached command
// execution and grep forwarding, all speaking the framed editor protocol on
// stdout. Logs go to stderr so they never corrupt the protocol stream.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/runger/winnow/internal/log"
)

var rootCmd = &cobra.Command{
	Use:          "winnow",
	Short:        "streaming fuzzy filter and cached command executor",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(log.NewFromEnv())
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
