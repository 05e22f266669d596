// Package config loads kwaysort settings from defaults, an optional YAML file
// and KWAYSORT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/hunomina/sort/pkg/extsort"
	"github.com/hunomina/sort/pkg/safeconv"
)

// Sentinel validation errors.
var (
	ErrInvalidFanIn        = errors.New("fan-in must be at least 1")
	ErrInvalidPageSize     = errors.New("page size must be at least 1")
	ErrInvalidStrategy     = errors.New("unknown merge strategy")
	ErrInvalidElementSize  = errors.New("element size must be positive")
	ErrInvalidMemoryBudget = errors.New("invalid memory budget")
	ErrInvalidLogLevel     = errors.New("invalid log level")
	ErrInvalidLogFormat    = errors.New("invalid log format")
)

// Log formats accepted by logging.format.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

const (
	configName = "kwaysort"
	envPrefix  = "KWAYSORT"
)

// Config holds all kwaysort configuration.
type Config struct {
	Sort      SortConfig      `mapstructure:"sort"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// SortConfig holds the engine parameters.
type SortConfig struct {
	Strategy string `mapstructure:"strategy"`
	// MemoryBudget is a humanized byte size ("64MiB"). When set it overrides
	// PageSize through budget.PageSizeForBudget.
	MemoryBudget string `mapstructure:"memory_budget"`
	FanIn        int    `mapstructure:"fan_in"`
	PageSize     int    `mapstructure:"page_size"`
	ElementSize  int    `mapstructure:"element_size"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	MetricsFile  string `mapstructure:"metrics_file"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
	TraceVerbose bool   `mapstructure:"trace_verbose"`
}

// LoadConfig loads configuration from file and environment variables.
// An empty configPath searches ., ./config and /etc/kwaysort for kwaysort.yaml
// and tolerates its absence; an explicit path must exist.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/kwaysort")
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("sort.fan_in", DefaultFanIn)
	viperCfg.SetDefault("sort.page_size", DefaultPageSize)
	viperCfg.SetDefault("sort.strategy", DefaultStrategy)
	viperCfg.SetDefault("sort.memory_budget", DefaultMemoryBudget)
	viperCfg.SetDefault("sort.element_size", DefaultElementSize)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	viperCfg.SetDefault("telemetry.otlp_endpoint", DefaultOTLPEndpoint)
	viperCfg.SetDefault("telemetry.otlp_insecure", DefaultOTLPInsecure)
	viperCfg.SetDefault("telemetry.metrics_file", DefaultMetricsFile)
	viperCfg.SetDefault("telemetry.trace_verbose", DefaultTraceVerbose)
}

func validateConfig(config *Config) error {
	if config.Sort.FanIn < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidFanIn, config.Sort.FanIn)
	}

	if config.Sort.PageSize < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, config.Sort.PageSize)
	}

	if config.Sort.ElementSize < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidElementSize, config.Sort.ElementSize)
	}

	_, err := extsort.ParseStrategy(config.Sort.Strategy)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidStrategy, config.Sort.Strategy)
	}

	_, err = config.Sort.MemoryBudgetBytes()
	if err != nil {
		return err
	}

	_, err = config.Logging.SlogLevel()
	if err != nil {
		return err
	}

	switch config.Logging.Format {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	return nil
}

// MemoryBudgetBytes parses MemoryBudget. Zero means no budget is set.
func (sc SortConfig) MemoryBudgetBytes() (int64, error) {
	if sc.MemoryBudget == "" {
		return 0, nil
	}

	n, err := humanize.ParseBytes(sc.MemoryBudget)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidMemoryBudget, sc.MemoryBudget, err)
	}

	return safeconv.ClampUint64ToInt64(n), nil
}

// SlogLevel maps Level onto a slog level.
func (lc LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(lc.Level))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, lc.Level)
	}

	return level, nil
}

// JSON reports whether logs should be written as JSON.
func (lc LoggingConfig) JSON() bool {
	return lc.Format == LogFormatJSON
}
