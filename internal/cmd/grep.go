package cmd

import (
	"log/slog"

	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"github.com/runger/winnow/internal/cache"
	"github.com/runger/winnow/internal/display"
	"github.com/runger/winnow/internal/protocol"
	"github.com/runger/winnow/internal/runner"
)

var (
	grepCmdDir string
	grepGlob   string
	grepNumber int
	grepIcon   bool
)

var grepCmd = &cobra.Command{
	Use:   "grep <COMMAND> <QUERY>",
	Short: "Run a grep-style command with a query appended",
	Long: `Split COMMAND into argv, append QUERY (and -g GLOB when --glob is
given) and execute it fresh, responding over the framed protocol. Results
are never cached: the query changes on every keystroke.

Examples:
  winnow grep 'rg --column --line-number' parser
  winnow grep 'rg --column' parser --glob '*.go'`,
	Args: cobra.ExactArgs(2),
	RunE: runGrep,
}

func init() {
	grepCmd.Flags().StringVar(&grepCmdDir, "cmd-dir", "", "working directory (a file path means its parent)")
	grepCmd.Flags().StringVar(&grepGlob, "glob", "", "glob passed to the command as -g GLOB")
	grepCmd.Flags().IntVar(&grepNumber, "number", 0, "respond with only the first N lines")
	grepCmd.Flags().BoolVar(&grepIcon, "icon", false, "prepend file-type icons chosen from the path component")

	rootCmd.AddCommand(grepCmd)
}

func runGrep(cmd *cobra.Command, args []string) error {
	argv, err := shlex.Split(args[0])
	if err != nil {
		return err
	}
	argv = append(argv, args[1])
	if grepGlob != "" {
		argv = append(argv, "-g", grepGlob)
	}

	r := &runner.Runner{
		Args:     argv,
		Dir:      grepCmdDir,
		Number:   grepNumber,
		Decorate: display.Decorator(false, grepIcon),
		Writer:   protocol.NewWriter(cmd.OutOrStdout()),
		Cache:    cache.New(""),
		Logger:   slog.Default(),
	}
	return r.Run(cmd.Context())
}
