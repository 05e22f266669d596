package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hunomina/sort/pkg/budget"
	"github.com/hunomina/sort/pkg/config"
	"github.com/hunomina/sort/pkg/extsort"
)

// Plan output formats.
const (
	planFormatTable = "table"
	planFormatJSON  = "json"
	planFormatYAML  = "yaml"
)

// Errors returned by the plan command.
var (
	ErrUnknownPlanFormat = errors.New("unknown plan format")
	ErrNegativeElements  = errors.New("element count must not be negative")
)

type planOptions struct {
	params   sortParams
	format   string
	elements int
}

// planReport is the machine-readable form of a plan.
type planReport struct {
	Elements      int        `json:"elements"       yaml:"elements"`
	FanIn         int        `json:"fan_in"         yaml:"fan_in"`
	PageSize      int        `json:"page_size"      yaml:"page_size"`
	BufferBytes   int64      `json:"buffer_bytes"   yaml:"buffer_bytes"`
	MinimumBudget int64      `json:"minimum_budget" yaml:"minimum_budget"`
	Passes        []planPass `json:"passes"         yaml:"passes"`
}

// planPass is a planned pass with the bytes of data one of its batches reads.
type planPass struct {
	extsort.PlannedPass `yaml:",inline"`

	BatchBytes int64 `json:"batch_bytes" yaml:"batch_bytes"`
}

func newPlanCommand(globals *globalOptions) *cobra.Command {
	opts := &planOptions{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the passes a sort would run",
		Long: `Show the passes a sort of --elements elements would run with the given
fan-in and page size, without reading any input.`,
		Example: `  kwaysort plan --elements 1000000 -k 8 --memory-budget 64MiB
  kwaysort plan --elements 10 -k 2 -p 3 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlanCommand(cmd, globals, opts)
		},
	}

	flags := cmd.Flags()
	opts.params.register(flags)
	flags.IntVarP(&opts.elements, "elements", "n", 0, "number of elements to plan for")
	flags.StringVar(&opts.format, "format", planFormatTable, "output format: table, json or yaml")

	return cmd
}

func runPlanCommand(cmd *cobra.Command, globals *globalOptions, opts *planOptions) error {
	if opts.elements < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeElements, opts.elements)
	}

	cfg, err := config.LoadConfig(globals.configPath)
	if err != nil {
		return err
	}

	settings, err := opts.params.resolve(cmd.Flags(), cfg.Sort)
	if err != nil {
		return err
	}

	passes, err := extsort.Plan(settings.fanIn, settings.pageSize, opts.elements)
	if err != nil {
		return err
	}

	report := planReport{
		Elements:      opts.elements,
		FanIn:         settings.fanIn,
		PageSize:      settings.pageSize,
		BufferBytes:   budget.EstimateMemoryUsage(opts.elements, settings.elementSize),
		MinimumBudget: budget.MinimumBudget(settings.fanIn, settings.elementSize),
		Passes:        make([]planPass, 0, len(passes)),
	}

	for _, pass := range passes {
		report.Passes = append(report.Passes, planPass{
			PlannedPass: pass,
			BatchBytes:  budget.BatchMemory(settings.fanIn, pass.Index, settings.pageSize, settings.elementSize, opts.elements),
		})
	}

	out := cmd.OutOrStdout()

	switch opts.format {
	case planFormatTable:
		renderPlan(out, report)

		return nil
	case planFormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return enc.Encode(report)
	case planFormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)

		err = enc.Encode(report)
		if err != nil {
			return err
		}

		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPlanFormat, opts.format)
	}
}

func renderPlan(w io.Writer, report planReport) {
	fmt.Fprintf(w, "%d elements, fan-in %d, page size %d, %d passes, buffers ~%s\n",
		report.Elements, report.FanIn, report.PageSize, len(report.Passes),
		humanize.IBytes(uint64(report.BufferBytes)))
	fmt.Fprintf(w, "smallest usable --memory-budget: %s\n", humanize.IBytes(uint64(report.MinimumBudget)))

	if len(report.Passes) == 0 {
		return
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Pass", "Pages/batch", "Batches", "Run length", "Batch memory"})

	for _, pass := range report.Passes {
		tbl.AppendRow(table.Row{
			pass.Index,
			pass.PageCount,
			pass.Batches,
			pass.RunLength,
			humanize.IBytes(uint64(pass.BatchBytes)),
		})
	}

	fmt.Fprintln(w, tbl.Render())
}
