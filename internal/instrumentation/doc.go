// Package instrumentation provides OpenTelemetry instrumentation for jarvis.
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of webhook requests by method, path, and status
//   - http_request_duration_seconds: Histogram of webhook request durations
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Google API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API operation durations
//   - google_api_rate_limited_total: Counter of HTTP 429 answers by service
//
// Credential Metrics:
//   - credential_refresh_total: Counter of refresh attempts by result
//
// Tool and Agent Metrics:
//   - tool_invocations_total / tool_duration_seconds: per tool name and status
//   - agent_turns_total, agent_rounds, agent_turn_duration_seconds: per surface and outcome
//   - llm_calls_total: per provider and status
//
// # Tracing
//
// Spans are created for agent turns (agent.turn), model calls (llm.<provider>),
// tool invocations (tool.<name>) and Google API calls
// (google.<service>.<operation>).
//
// # Configuration
//
// Instrumentation is configured through the config package, which reads these
// environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - METRICS_ADDR: address of the dedicated /metrics server
package instrumentation
