package instrumentation

import (
	"fmt"
	"time"
)

// Config holds the configuration for OpenTelemetry instrumentation. The tags
// let the config package fill it from YAML and the environment.
type Config struct {
	// ServiceName is the name of the service (default: jarvis)
	ServiceName string `yaml:"service_name" env:"OTEL_SERVICE_NAME" env-default:"jarvis"`

	// ServiceVersion is the version of the service, set from the build
	ServiceVersion string `yaml:"-" env:"-"`

	// ServiceInstanceID is the unique instance identifier (default: hostname)
	ServiceInstanceID string `yaml:"service_instance_id" env:"OTEL_SERVICE_INSTANCE_ID"`

	// Enabled determines if instrumentation is active (default: true)
	// Set to false via INSTRUMENTATION_ENABLED=false to disable metrics and tracing
	Enabled bool `yaml:"enabled" env:"INSTRUMENTATION_ENABLED" env-default:"true"`

	// MetricsExporter specifies the metrics exporter type
	// Options: "prometheus", "otlp", "stdout" (default: "prometheus")
	MetricsExporter string `yaml:"metrics_exporter" env:"METRICS_EXPORTER" env-default:"prometheus"`

	// TracingExporter specifies the tracing exporter type
	// Options: "otlp", "stdout", "none" (default: "none")
	TracingExporter string `yaml:"tracing_exporter" env:"TRACING_EXPORTER" env-default:"none"`

	// OTLPEndpoint is the OTLP collector endpoint
	// Example: "localhost:4318" (without protocol prefix)
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// OTLPInsecure controls whether to use insecure HTTP for OTLP export.
	// WARNING: traces carry tool names and aliases; keep TLS outside development.
	OTLPInsecure bool `yaml:"otlp_insecure" env:"OTEL_EXPORTER_OTLP_INSECURE"`

	// TraceSamplingRate is the sampling rate for traces (0.0 to 1.0, default: 0.1)
	TraceSamplingRate float64 `yaml:"trace_sampling_rate" env:"OTEL_TRACES_SAMPLER_ARG" env-default:"0.1"`

	// MetricsAddr is where the dedicated metrics server listens. Empty disables it.
	MetricsAddr string `yaml:"metrics_addr" env:"METRICS_ADDR"`

	// DetailedLabels adds the account alias to tool metrics. Aliases are few,
	// but keep this off when aliases are generated.
	DetailedLabels bool `yaml:"detailed_labels" env:"METRICS_DETAILED_LABELS"`

	// AuditLogging controls the per tool call log line.
	AuditLogging bool `yaml:"audit_logging" env:"AUDIT_LOGGING_ENABLED" env-default:"true"`
}

// DefaultConfig returns the configuration used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		ServiceName:       "jarvis",
		ServiceVersion:    "unknown",
		Enabled:           true,
		MetricsExporter:   ExporterPrometheus,
		TracingExporter:   ExporterNone,
		TraceSamplingRate: 0.1,
		AuditLogging:      true,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}

	validMetricsExporters := map[string]bool{ExporterPrometheus: true, ExporterOTLP: true, ExporterStdout: true}
	if c.MetricsExporter != "" && !validMetricsExporters[c.MetricsExporter] {
		return fmt.Errorf("invalid metrics exporter %q, must be one of: prometheus, otlp, stdout", c.MetricsExporter)
	}

	validTracingExporters := map[string]bool{ExporterOTLP: true, ExporterStdout: true, ExporterNone: true}
	if c.TracingExporter != "" && !validTracingExporters[c.TracingExporter] {
		return fmt.Errorf("invalid tracing exporter %q, must be one of: otlp, stdout, none", c.TracingExporter)
	}

	if c.TracingExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using OTLP tracing exporter")
	}
	if c.MetricsExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using OTLP metrics exporter")
	}

	return nil
}

// Constants for metric label values.
const (
	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Agent turn outcomes
	TurnAnswered       = "answered"
	TurnClarified      = "clarified"
	TurnIterationLimit = "iteration_limit"
	TurnFailed         = "failed"

	// Exporter types
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"

	// Metric recording intervals
	DefaultMetricInterval = 10 * time.Second
)
