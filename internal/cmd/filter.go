package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/runger/winnow/internal/config"
	"github.com/runger/winnow/internal/filter"
	"github.com/runger/winnow/internal/protocol"
)

var (
	filterInput    string
	filterCommand  string
	filterCmdDir   string
	filterNumber   int
	filterAlgo     string
	filterIcon     bool
	filterWinwidth int
)

var filterCmd = &cobra.Command{
	Use:   "filter <QUERY>",
	Short: "Fuzzy-filter candidate lines against a query",
	Long: `Fuzzy-filter candidate lines against QUERY and write ranked results
to stdout as content-length framed JSON messages.

Candidates come from --input, from the stdout of --cmd, or from stdin.

Examples:
  fd --type f | winnow filter main            # rank stdin
  winnow filter --cmd 'git ls-files' conf     # rank a command's output
  winnow filter --input paths.txt --number 30 conf`,
	Args: cobra.ExactArgs(1),
	RunE: runFilter,
}

func init() {
	filterCmd.Flags().StringVar(&filterInput, "input", "", "file holding candidate lines")
	filterCmd.Flags().StringVar(&filterCommand, "cmd", "", "command whose stdout provides candidate lines")
	filterCmd.Flags().StringVar(&filterCmdDir, "cmd-dir", "", "working directory for --cmd")
	filterCmd.Flags().IntVar(&filterNumber, "number", 0, "emit only the first N ranked results")
	filterCmd.Flags().StringVar(&filterAlgo, "algo", "", "scoring algorithm: subseq or v2")
	filterCmd.Flags().BoolVar(&filterIcon, "icon", false, "prepend file-type icons")
	filterCmd.Flags().IntVar(&filterWinwidth, "winwidth", 0, "display width to fit matched lines to")

	rootCmd.AddCommand(filterCmd)
}

func runFilter(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	algo := filterAlgo
	if algo == "" {
		algo = cfg.Filter.Algo
	}
	scorer, err := filter.NewScorer(algo, args[0])
	if err != nil {
		return err
	}

	src, err := resolveSource(cmd)
	if err != nil {
		return err
	}

	opts := filter.Options{
		Number:         filterNumber,
		Icon:           filterIcon || cfg.Filter.EnableIcon,
		Winwidth:       cfg.Filter.Winwidth,
		UpdateInterval: time.Duration(cfg.Filter.UpdateIntervalMs) * time.Millisecond,
	}
	if filterWinwidth > 0 {
		opts.Winwidth = filterWinwidth
	}

	w := protocol.NewWriter(cmd.OutOrStdout())
	return filter.Run(cmd.Context(), src, scorer, w, opts)
}

// resolveSource picks the candidate source: an input file, a spawned
// command, or stdin, in that order.
func resolveSource(cmd *cobra.Command) (filter.Source, error) {
	switch {
	case filterInput != "" && filterCommand != "":
		return nil, errors.New("--input and --cmd are mutually exclusive")
	case filterInput != "":
		return &filter.FileSource{Path: filterInput}, nil
	case filterCommand != "":
		return &filter.CommandSource{Command: filterCommand, Dir: filterCmdDir}, nil
	default:
		return &filter.ReaderSource{R: cmd.InOrStdin()}, nil
	}
}
