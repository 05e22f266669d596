package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/hunomina/sort/pkg/budget"
	"github.com/hunomina/sort/pkg/elements"
	"github.com/hunomina/sort/pkg/extsort"
)

const (
	plotTitle      = "kwaysort passes"
	plotChartWidth = "100%"
	plotChartHigh  = "420px"
	plotLineWidth  = 2
)

// formatList renders values the way the demo prints them: [a, b, c], with
// strings quoted.
func formatList[T elements.Element](values []T) string {
	quote := elements.KindOf[T]() == elements.KindString

	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = elements.Format(v)
		if quote {
			parts[i] = strconv.Quote(parts[i])
		}
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

// renderStats writes a summary line and a per-pass table.
func renderStats(w io.Writer, stats extsort.Stats, settings sortSettings) {
	color.New(color.FgGreen, color.Bold).Fprintf(w, "sorted %d elements in %d passes (%s)\n",
		stats.Elements, stats.PassCount(), stats.Duration)

	memory := budget.EstimateMemoryUsage(stats.Elements, settings.elementSize)
	fmt.Fprintf(w, "fan-in %d, page size %d, strategy %s, buffers ~%s\n",
		stats.FanIn, stats.PageSize, stats.Strategy, humanize.IBytes(uint64(memory)))

	if settings.budgetBytes > 0 {
		fmt.Fprintf(w, "memory budget %s\n", humanize.IBytes(uint64(settings.budgetBytes)))
	}

	if stats.PassCount() == 0 {
		return
	}

	fmt.Fprintln(w, statsTable(stats))
}

func statsTable(stats extsort.Stats) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Pass", "Pages/batch", "Batches", "Run length", "Peak pages", "Comparisons", "Duration"})

	for _, pass := range stats.Passes {
		tbl.AppendRow(table.Row{
			pass.Index,
			pass.PageCount,
			pass.Batches,
			pass.RunLength,
			pass.PeakPages,
			humanize.Comma(pass.Comparisons),
			pass.Duration,
		})
	}

	tbl.AppendFooter(table.Row{"Total", "", "", "", "", humanize.Comma(stats.Comparisons), stats.Duration})

	return tbl.Render()
}

// writePlot renders run length and comparisons per pass as an HTML page.
func writePlot(path string, stats extsort.Stats) error {
	labels := make([]string, len(stats.Passes))
	runs := make([]opts.BarData, len(stats.Passes))
	comparisons := make([]opts.LineData, len(stats.Passes))

	for i, pass := range stats.Passes {
		labels[i] = "pass " + strconv.Itoa(pass.Index)
		runs[i] = opts.BarData{Value: pass.RunLength}
		comparisons[i] = opts.LineData{Value: pass.Comparisons}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: plotChartWidth, Height: plotChartHigh}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Run length per pass",
			Subtitle: fmt.Sprintf("%d elements, fan-in %d, page size %d", stats.Elements, stats.FanIn, stats.PageSize),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "elements per run"}),
	)
	bar.SetXAxis(labels).AddSeries("run length", runs)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: plotChartWidth, Height: plotChartHigh}),
		charts.WithTitleOpts(opts.Title{Title: "Comparisons per pass", Subtitle: string(stats.Strategy) + " strategy"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "comparisons"}),
	)
	line.SetXAxis(labels).AddSeries("comparisons", comparisons,
		charts.WithLineStyleOpts(opts.LineStyle{Width: plotLineWidth}),
	)

	page := components.NewPage()
	page.PageTitle = plotTitle
	page.AddCharts(bar, line)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot: %w", err)
	}

	err = page.Render(file)
	if err != nil {
		return errors.Join(fmt.Errorf("render plot: %w", err), file.Close())
	}

	err = file.Close()
	if err != nil {
		return fmt.Errorf("close plot: %w", err)
	}

	return nil
}
