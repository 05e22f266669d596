// Package commands implements the kwaysort CLI commands.
package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hunomina/sort/pkg/version"
)

// NewRootCommand creates the kwaysort root command with every subcommand attached.
func NewRootCommand() *cobra.Command {
	globals := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "kwaysort",
		Short: "k-way external merge sort",
		Long: `kwaysort sorts sequences of integers, floats or strings with a k-way
external merge sort: pages of page_size elements are sorted, then merged
k·2ⁿ pages at a time on pass n until a single run covers the input.

Commands:
  sort      Sort a file or stdin
  plan      Show the passes a sort would run
  demo      Run the reference configurations over a fixed sample
  mcp       Start the MCP server on stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if globals.noColor {
				color.NoColor = true
			}
		},
	}

	globals.register(rootCmd)

	rootCmd.AddCommand(newSortCommand(globals))
	rootCmd.AddCommand(newPlanCommand(globals))
	rootCmd.AddCommand(newDemoCommand())
	rootCmd.AddCommand(newMCPCommand(globals))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
