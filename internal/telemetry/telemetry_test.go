package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"k8s.io/utils/ptr"
)

// collector accepts OTLP/HTTP exports and remembers which paths and headers it saw.
type collector struct {
	*httptest.Server
	traces  atomic.Int32
	metrics atomic.Int32
	apiKey  atomic.Value
}

func newCollector(t *testing.T) *collector {
	t.Helper()

	c := &collector{}
	c.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		switch r.URL.Path {
		case "/v1/traces":
			c.traces.Add(1)
		case "/v1/metrics":
			c.metrics.Add(1)
		}
		if key := r.Header.Get("X-Api-Key"); key != "" {
			c.apiKey.Store(key)
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(c.Close)
	return c
}

func (c *collector) endpoint() string {
	return strings.TrimPrefix(c.URL, "http://")
}

func TestNew_NoOp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []Option
	}{
		{name: "no config"},
		{name: "nil config", opts: []Option{WithTelemetryConfig(nil)}},
		{name: "disabled", opts: []Option{WithTelemetryConfig(&Config{
			Tracing: &TracingConfig{Enabled: true},
		})}},
		{name: "enabled without tracing or metrics", opts: []Option{WithTelemetryConfig(&Config{
			Enabled: true,
		})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			tel, err := New(ctx, tt.opts...)
			require.NoError(t, err)

			assert.IsType(t, tracenoop.TracerProvider{}, tel.TracerProvider())
			assert.IsType(t, metricnoop.MeterProvider{}, tel.MeterProvider())
			assert.Nil(t, tel.MetricsHandler())
			assert.NotNil(t, tel.Tracer("test"))
			assert.NotNil(t, tel.Meter("test"))
			require.NoError(t, tel.Shutdown(ctx))
			require.NoError(t, tel.Shutdown(ctx))
		})
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), WithTelemetryConfig(&Config{
		Enabled: true,
		Tracing: &TracingConfig{Enabled: true, Sampling: ptr.To(2.0)},
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid telemetry configuration")
}

func TestNew_ExportsToCollector(t *testing.T) {
	t.Parallel()

	c := newCollector(t)
	ctx := context.Background()

	tel, err := New(ctx, WithTelemetryConfig(&Config{
		Enabled:  true,
		Endpoint: c.endpoint(),
		Insecure: true,
		Headers:  map[string]string{"X-Api-Key": "k-123"},
		Tracing:  &TracingConfig{Enabled: true, Sampling: ptr.To(1.0)},
		Metrics:  &MetricsConfig{Enabled: true, Interval: "1h"},
	}))
	require.NoError(t, err)

	assert.IsType(t, &sdktrace.TracerProvider{}, tel.TracerProvider())
	assert.IsType(t, &sdkmetric.MeterProvider{}, tel.MeterProvider())
	assert.Nil(t, tel.MetricsHandler(), "prometheus was not requested")

	_, span := tel.Tracer("test").Start(ctx, "edit database-cluster")
	span.End()

	metrics, err := NewMutationMetrics(tel.MeterProvider())
	require.NoError(t, err)
	metrics.RecordConflict(ctx, "DatabaseCluster")

	// Shutdown flushes both pipelines
	require.NoError(t, tel.Shutdown(ctx))

	assert.Positive(t, c.traces.Load())
	assert.Positive(t, c.metrics.Load())
	assert.Equal(t, "k-123", c.apiKey.Load())
}

func TestTelemetry_MetricsHandler(t *testing.T) {
	t.Parallel()

	c := newCollector(t)
	ctx := context.Background()

	tel, err := New(ctx, WithTelemetryConfig(&Config{
		Enabled:  true,
		Endpoint: c.endpoint(),
		Insecure: true,
		Metrics:  &MetricsConfig{Enabled: true, Prometheus: true},
	}))
	require.NoError(t, err)
	defer func() { _ = tel.Shutdown(ctx) }()

	assert.IsType(t, tracenoop.TracerProvider{}, tel.TracerProvider(), "tracing was not requested")

	handler := tel.MetricsHandler()
	require.NotNil(t, handler)

	metrics, err := NewMutationMetrics(tel.MeterProvider())
	require.NoError(t, err)
	metrics.RecordRebase(ctx, "BackupStorage")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dbcc_mutation_rebases")
	assert.Contains(t, rec.Body.String(), `kind="BackupStorage"`)
}
