package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hunomina/sort/pkg/budget"
	"github.com/hunomina/sort/pkg/config"
	"github.com/hunomina/sort/pkg/extsort"
	"github.com/hunomina/sort/pkg/observability"
	"github.com/hunomina/sort/pkg/version"
)

// Persistent flag names.
const (
	flagConfig      = "config"
	flagLogJSON     = "log-json"
	flagDebug       = "debug"
	flagMetricsFile = "metrics-file"
	flagNoColor     = "no-color"
)

// Sort parameter flag names shared by sort and plan.
const (
	flagFanIn        = "fan-in"
	flagPageSize     = "page-size"
	flagStrategy     = "strategy"
	flagMemoryBudget = "memory-budget"
	flagElementSize  = "element-size"
)

type globalOptions struct {
	configPath  string
	metricsFile string
	logJSON     bool
	debug       bool
	noColor     bool
}

func (g *globalOptions) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&g.configPath, flagConfig, "", "config file (default: kwaysort.yaml in ., ./config, /etc/kwaysort)")
	flags.BoolVar(&g.logJSON, flagLogJSON, false, "write logs as JSON")
	flags.BoolVar(&g.debug, flagDebug, false, "enable debug logging and full trace sampling")
	flags.StringVar(&g.metricsFile, flagMetricsFile, "", "write Prometheus metrics to this textfile on exit")
	flags.BoolVar(&g.noColor, flagNoColor, false, "disable colored output")
}

// runtime bundles the configuration and telemetry of one command invocation.
type runtime struct {
	cfg       *config.Config
	providers observability.Providers
	metrics   *observability.SortMetrics
}

func (g *globalOptions) start(mode observability.AppMode) (*runtime, error) {
	cfg, err := config.LoadConfig(g.configPath)
	if err != nil {
		return nil, err
	}

	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return nil, err
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	obsCfg.MetricsFile = cfg.Telemetry.MetricsFile
	obsCfg.TraceVerbose = cfg.Telemetry.TraceVerbose
	obsCfg.LogLevel = level
	obsCfg.LogJSON = g.logJSON || cfg.Logging.JSON()

	if obsCfg.OTLPEndpoint == "" {
		obsCfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	}

	if g.metricsFile != "" {
		obsCfg.MetricsFile = g.metricsFile
	}

	if g.debug {
		obsCfg.LogLevel = slog.LevelDebug
		obsCfg.DebugTrace = true
		obsCfg.TraceVerbose = true
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, err
	}

	metrics, err := observability.NewSortMetrics(providers.Meter)
	if err != nil {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}

		return nil, err
	}

	return &runtime{cfg: cfg, providers: providers, metrics: metrics}, nil
}

func (rt *runtime) close() {
	err := rt.providers.Shutdown(context.Background())
	if err != nil {
		rt.providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}

// sortParams are the flag values shared by sort and plan.
type sortParams struct {
	strategy     string
	memoryBudget string
	fanIn        int
	pageSize     int
	elementSize  int
}

func (p *sortParams) register(flags *pflag.FlagSet) {
	flags.IntVarP(&p.fanIn, flagFanIn, "k", config.DefaultFanIn, "merge fan-in k")
	flags.IntVarP(&p.pageSize, flagPageSize, "p", config.DefaultPageSize, "maximum elements per page")
	flags.StringVar(&p.strategy, flagStrategy, config.DefaultStrategy, "head selection strategy: scan or heap")
	flags.StringVar(&p.memoryBudget, flagMemoryBudget, "", "memory for the pages of the first pass (e.g. 64MiB); overrides --page-size")
	flags.IntVar(&p.elementSize, flagElementSize, config.DefaultElementSize, "bytes per element used with --memory-budget")
}

// sortSettings are the effective engine parameters after config and flags merge.
type sortSettings struct {
	strategy    extsort.Strategy
	budgetBytes int64
	fanIn       int
	pageSize    int
	elementSize int
}

// resolve merges explicitly set flags over the loaded configuration.
func (p *sortParams) resolve(flags *pflag.FlagSet, cfg config.SortConfig) (sortSettings, error) {
	if flags.Changed(flagFanIn) {
		cfg.FanIn = p.fanIn
	}

	if flags.Changed(flagPageSize) {
		cfg.PageSize = p.pageSize
	}

	if flags.Changed(flagStrategy) {
		cfg.Strategy = p.strategy
	}

	if flags.Changed(flagMemoryBudget) {
		cfg.MemoryBudget = p.memoryBudget
	}

	if flags.Changed(flagElementSize) {
		cfg.ElementSize = p.elementSize
	}

	strategy, err := extsort.ParseStrategy(cfg.Strategy)
	if err != nil {
		return sortSettings{}, err
	}

	budgetBytes, err := cfg.MemoryBudgetBytes()
	if err != nil {
		return sortSettings{}, err
	}

	pageSize, err := budget.ResolvePageSize(cfg.PageSize, budgetBytes, cfg.ElementSize, cfg.FanIn)
	if err != nil {
		return sortSettings{}, err
	}

	return sortSettings{
		strategy:    strategy,
		budgetBytes: budgetBytes,
		fanIn:       cfg.FanIn,
		pageSize:    pageSize,
		elementSize: cfg.ElementSize,
	}, nil
}
