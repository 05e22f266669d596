package commands

import (
	"cmp"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hunomina/sort/pkg/extsort"
)

const demoSeparatorWidth = 41

// demoSample is the fixed input of the demo command.
var demoSample = []int64{5, 9, 5, 2, 5, 4, 0, 9, 1, 3}

// demoRuns are the (fan-in, page size) pairs the demo sorts with.
var demoRuns = []struct{ fanIn, pageSize int }{
	{2, 3},
	{3, 3},
	{2, 1},
	{1, 5},
}

func newDemoCommand() *cobra.Command {
	var tracePasses bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the reference configurations over a fixed sample",
		Long: `Sort [5, 9, 5, 2, 5, 4, 0, 9, 1, 3] with k;page_size set to 2;3, 3;3,
2;1 and 1;5 and print every result.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDemo(cmd, cmd.OutOrStdout(), tracePasses)
		},
	}

	cmd.Flags().BoolVar(&tracePasses, "trace-passes", false, "print the sequence after every pass")

	return cmd
}

func runDemo(cmd *cobra.Command, w io.Writer, tracePasses bool) error {
	fmt.Fprintf(w, "original %s\n", formatList(demoSample))

	for i, run := range demoRuns {
		if i > 0 {
			fmt.Fprintln(w, strings.Repeat("-", demoSeparatorWidth))
		}

		cfg := extsort.Config[int64]{
			FanIn:    run.fanIn,
			PageSize: run.pageSize,
			Compare:  cmp.Compare[int64],
		}

		if tracePasses {
			fmt.Fprintf(w, "run (k, page_size): (%d, %d)\n", run.fanIn, run.pageSize)

			cfg.Observer = passPrinter[int64](w)
		}

		sorter, err := extsort.New(cfg)
		if err != nil {
			return err
		}

		sorted, _, err := sorter.Sort(cmd.Context(), demoSample)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "sorted %d;%d %s\n", run.fanIn, run.pageSize, formatList(sorted))
	}

	return nil
}
