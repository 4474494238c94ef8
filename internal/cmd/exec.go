package cmd

import (
	"log/slog"

	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"github.com/runger/winnow/internal/cache"
	"github.com/runger/winnow/internal/config"
	"github.com/runger/winnow/internal/display"
	"github.com/runger/winnow/internal/protocol"
	"github.com/runger/winnow/internal/runner"
)

var (
	execCmdDir    string
	execNumber    int
	execOutput    string
	execThreshold int
	execIcon      bool
	execNoCache   bool
)

var execCmd = &cobra.Command{
	Use:   "exec <COMMAND>",
	Short: "Run a command and cache its output",
	Long: `Run COMMAND and respond with its output over the framed protocol.

Output larger than the threshold is spilled to a cache file and answered
with a preview plus the file path; a later identical invocation in the same
directory replays the cached file without re-executing.

Examples:
  winnow exec 'fd --type f' --cmd-dir ~/src/project
  winnow exec 'rg --files' --number 100
  winnow exec 'git ls-files' --no-cache`,
	Args: cobra.ExactArgs(1),
	RunE: runExec,
}

func init() {
	execCmd.Flags().StringVar(&execCmdDir, "cmd-dir", "", "working directory (a file path means its parent)")
	execCmd.Flags().IntVar(&execNumber, "number", 0, "respond with only the first N lines, never spilling")
	execCmd.Flags().StringVar(&execOutput, "output", "", "explicit spill file, overriding the cache path")
	execCmd.Flags().IntVar(&execThreshold, "output-threshold", 0, "line count above which output spills to a file")
	execCmd.Flags().BoolVar(&execIcon, "icon", false, "prepend file-type icons")
	execCmd.Flags().BoolVar(&execNoCache, "no-cache", false, "always execute, ignoring cached results")

	rootCmd.AddCommand(execCmd)
}

func runExec(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	argv, err := shlex.Split(args[0])
	if err != nil {
		return err
	}

	threshold := execThreshold
	if threshold <= 0 {
		threshold = cfg.Exec.OutputThreshold
	}

	r := &runner.Runner{
		Args:      argv,
		Dir:       execCmdDir,
		Number:    execNumber,
		Output:    execOutput,
		Threshold: threshold,
		Decorate:  display.Decorator(execIcon || cfg.Filter.EnableIcon, false),
		Writer:    protocol.NewWriter(cmd.OutOrStdout()),
		Cache:     cache.New(""),
		Logger:    slog.Default(),
	}
	if execNoCache {
		return r.Run(cmd.Context())
	}
	return r.RunCached(cmd.Context())
}
