package config

// Sort defaults.
const (
	DefaultFanIn        = 2
	DefaultPageSize     = 1024
	DefaultStrategy     = "heap"
	DefaultMemoryBudget = ""
	DefaultElementSize  = 8
)

// Logging defaults.
const (
	DefaultLogLevel  = "warn"
	DefaultLogFormat = LogFormatText
)

// Telemetry defaults.
const (
	DefaultOTLPEndpoint = ""
	DefaultOTLPInsecure = false
	DefaultMetricsFile  = ""
	DefaultTraceVerbose = false
)
