package commands

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hunomina/sort/pkg/elements"
	"github.com/hunomina/sort/pkg/extsort"
	"github.com/hunomina/sort/pkg/observability"
	"github.com/hunomina/sort/pkg/persist"
)

// ErrUnsupportedKind is returned for an element kind the sort command cannot dispatch.
var ErrUnsupportedKind = errors.New("unsupported element kind")

type sortOptions struct {
	params        sortParams
	kind          string
	inputFormat   string
	outputFormat  string
	output        string
	plot          string
	snapshotDir   string
	snapshotCodec string
	tracePasses   bool
	stats         bool
}

func newSortCommand(globals *globalOptions) *cobra.Command {
	opts := &sortOptions{}

	cmd := &cobra.Command{
		Use:   "sort [file]",
		Short: "Sort a file or stdin",
		Long: `Sort the elements of a file, or stdin when no file is given.

Input is one element per line (--input-format text) or a JSON array
(--input-format json, the default for *.json files). Files ending in .lz4 are
decompressed on read and --output paths ending in .lz4 are compressed.`,
		Example: `  kwaysort sort -k 4 -p 1000 numbers.txt
  kwaysort sort --type string --format json words.txt.lz4
  seq 100 -1 1 | kwaysort sort -k 2 -p 8 --trace-passes --stats`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}

			return runSortCommand(cmd, globals, opts, path)
		},
	}

	flags := cmd.Flags()
	opts.params.register(flags)
	flags.StringVar(&opts.kind, "type", string(elements.KindInt), "element type: int, float or string")
	flags.StringVar(&opts.inputFormat, "input-format", string(elements.InputText), "input format: text or json")
	flags.StringVar(&opts.outputFormat, "format", string(elements.OutputText), "output format: text, json or yaml")
	flags.StringVarP(&opts.output, "output", "o", "", "write sorted output to this file instead of stdout")
	flags.BoolVar(&opts.tracePasses, "trace-passes", false, "print the sequence after every pass to stderr")
	flags.BoolVar(&opts.stats, "stats", false, "print a per-pass statistics table to stderr")
	flags.StringVar(&opts.plot, "plot", "", "write an HTML chart of per-pass statistics to this file")
	flags.StringVar(&opts.snapshotDir, "snapshot-dir", "", "persist the sequence after every pass into this directory")
	flags.StringVar(&opts.snapshotCodec, "snapshot-codec", persist.CodecJSON, "snapshot codec: json, gob or lz4")

	return cmd
}

func runSortCommand(cmd *cobra.Command, globals *globalOptions, opts *sortOptions, path string) error {
	kind, err := elements.ParseKind(opts.kind)
	if err != nil {
		return err
	}

	rt, err := globals.start(observability.ModeCLI)
	if err != nil {
		return err
	}
	defer rt.close()

	settings, err := opts.params.resolve(cmd.Flags(), rt.cfg.Sort)
	if err != nil {
		return err
	}

	switch kind {
	case elements.KindInt:
		return sortAs[int64](cmd, rt, settings, opts, path)
	case elements.KindFloat:
		return sortAs[float64](cmd, rt, settings, opts, path)
	case elements.KindString:
		return sortAs[string](cmd, rt, settings, opts, path)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
}

func sortAs[T elements.Element](
	cmd *cobra.Command, rt *runtime, settings sortSettings, opts *sortOptions, path string,
) error {
	ctx := cmd.Context()
	stderr := cmd.ErrOrStderr()

	values, err := readInput[T](cmd, opts, path)
	if err != nil {
		return err
	}

	outFormat, err := elements.ParseOutputFormat(opts.outputFormat)
	if err != nil {
		return err
	}

	observers := extsort.Observers[T]{observability.NewSortObserver[T](rt.metrics)}

	if opts.snapshotDir != "" {
		codec, codecErr := persist.CodecByName(opts.snapshotCodec)
		if codecErr != nil {
			return codecErr
		}

		observers = append(observers, persist.NewSnapshotObserver[T](opts.snapshotDir, codec, rt.providers.Logger))
	}

	if opts.tracePasses {
		fmt.Fprintf(stderr, "run (k, page_size): (%d, %d)\n", settings.fanIn, settings.pageSize)

		observers = append(observers, passPrinter[T](stderr))
	}

	sorter, err := extsort.New(extsort.Config[T]{
		FanIn:    settings.fanIn,
		PageSize: settings.pageSize,
		Compare:  cmp.Compare[T],
		Strategy: settings.strategy,
		Observer: observers,
		Logger:   rt.providers.Logger,
		Tracer:   rt.providers.Tracer,
	})
	if err != nil {
		return err
	}

	sorted, stats, err := sorter.Sort(ctx, values)
	if err != nil {
		return fmt.Errorf("sort: %w", err)
	}

	err = writeOutput(cmd, opts.output, outFormat, sorted)
	if err != nil {
		return err
	}

	if opts.stats {
		renderStats(stderr, stats, settings)
	}

	if opts.plot != "" {
		err = writePlot(opts.plot, stats)
		if err != nil {
			return err
		}

		color.New(color.FgCyan).Fprintf(stderr, "plot written to %s\n", opts.plot)
	}

	return nil
}

func readInput[T elements.Element](cmd *cobra.Command, opts *sortOptions, path string) ([]T, error) {
	format, err := elements.ParseInputFormat(opts.inputFormat)
	if err != nil {
		return nil, err
	}

	if !cmd.Flags().Changed("input-format") {
		format = elements.DetectInputFormat(path, format)
	}

	r, err := elements.OpenInput(path, cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	defer r.Close()

	values, err := elements.Read[T](r, format)
	if err != nil {
		if path == "" {
			path = "stdin"
		}

		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return values, nil
}

func writeOutput[T elements.Element](cmd *cobra.Command, path string, format elements.OutputFormat, values []T) error {
	w, err := elements.CreateOutput(path, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	return writeAndClose(w, format, values)
}

// writeAndClose always closes w, joining a close failure onto a write failure.
func writeAndClose[T elements.Element](w io.WriteCloser, format elements.OutputFormat, values []T) error {
	err := elements.Write(w, format, values)
	if err != nil {
		return errors.Join(err, w.Close())
	}

	err = w.Close()
	if err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	return nil
}

// passPrinter writes every pass as "pass_N [a, b, c]".
func passPrinter[T elements.Element](w io.Writer) extsort.Observer[T] {
	return extsort.ObserverFuncs[T]{
		Pass: func(_ context.Context, pass extsort.PassStats, seq []T) error {
			_, err := fmt.Fprintf(w, "pass_%d %s\n", pass.Index, formatList(seq))

			return err
		},
	}
}
