package instrumentation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, cfg Config) *Provider {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, err := NewProvider(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
	return p
}

func TestNewProvider_Disabled(t *testing.T) {
	p := newTestProvider(t, Config{ServiceName: "jarvis-test", Enabled: false})

	assert.False(t, p.Enabled())
	assert.NotNil(t, p.Metrics(), "disabled provider still hands out a no-op recorder")
	assert.NotNil(t, p.Tracer("test"))
	assert.Nil(t, p.PrometheusHandler())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProvider_PrometheusExporter(t *testing.T) {
	p := newTestProvider(t, Config{
		ServiceName:     "jarvis-test",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	})

	assert.True(t, p.Enabled())
	require.NotNil(t, p.PrometheusHandler())

	p.Metrics().RecordCredentialRefresh(context.Background(), "success")

	rec := httptest.NewRecorder()
	p.PrometheusHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "credential_refresh_total")
}

func TestNewProvider_DefaultsWhenExportersEmpty(t *testing.T) {
	p := newTestProvider(t, Config{ServiceName: "jarvis-test", Enabled: true})
	assert.NotNil(t, p.PrometheusHandler())
}

func TestNewProvider_StdoutExporter(t *testing.T) {
	p := newTestProvider(t, Config{
		ServiceName:     "jarvis-test",
		Enabled:         true,
		MetricsExporter: ExporterStdout,
		TracingExporter: ExporterStdout,
	})

	assert.True(t, p.Enabled())
	assert.Nil(t, p.PrometheusHandler())
}

func TestNewProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"invalid metrics exporter", Config{Enabled: true, MetricsExporter: "invalid", TracingExporter: ExporterNone}},
		{"invalid tracing exporter", Config{Enabled: true, MetricsExporter: ExporterPrometheus, TracingExporter: "invalid"}},
		{"otlp tracing without endpoint", Config{Enabled: true, MetricsExporter: ExporterPrometheus, TracingExporter: ExporterOTLP}},
		{"otlp metrics without endpoint", Config{Enabled: true, MetricsExporter: ExporterOTLP, TracingExporter: ExporterNone}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.ServiceName = "jarvis-test"
			_, err := NewProvider(context.Background(), tt.config)
			assert.Error(t, err)
		})
	}
}
