package commands

import (
	"github.com/spf13/cobra"

	"github.com/hunomina/sort/pkg/mcp"
	"github.com/hunomina/sort/pkg/observability"
)

func newMCPCommand(globals *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout exposing the
kwaysort_sort and kwaysort_plan tools. Logs are written to stderr as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMCP(cmd, globals)
		},
	}
}

func runMCP(cmd *cobra.Command, globals *globalOptions) error {
	globals.logJSON = true

	rt, err := globals.start(observability.ModeMCP)
	if err != nil {
		return err
	}
	defer rt.close()

	red, err := observability.NewREDMetrics(rt.providers.Meter)
	if err != nil {
		return err
	}

	srv := mcp.NewServer(mcp.ServerDeps{
		Logger:      rt.providers.Logger,
		Metrics:     red,
		SortMetrics: rt.metrics,
		Tracer:      rt.providers.Tracer,
	})

	rt.providers.Logger.Info("mcp server starting", "tools", srv.ListToolNames())

	return srv.Run(cmd.Context())
}
