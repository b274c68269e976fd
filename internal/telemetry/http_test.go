package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// newInstrumentedRouter mounts handlers behind the given middleware the way the API server does.
func newInstrumentedRouter(mw func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(mw)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Route("/v1", func(r chi.Router) {
		r.Get("/database-clusters", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		r.Put("/namespaces/{namespace}/database-clusters/{name}", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusConflict)
		})
		r.Get("/namespaces/{namespace}/backup-storages/{name}", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
	})
	return r
}

func serveRequest(handler http.Handler, method, target string, header http.Header) {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestRouteResource(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"/v1/database-clusters":                                "database-clusters",
		"/v1/namespaces/{namespace}/backup-storages":           "backup-storages",
		"/v1/namespaces/{namespace}/monitoring-configs/{name}": "monitoring-configs",
		"/health":    "",
		"/v1/":       "",
		unknownRoute: "",
		"/metrics":   "",
	}

	for pattern, want := range tests {
		assert.Equal(t, want, routeResource(pattern), pattern)
	}
}

func TestPassThrough(t *testing.T) {
	t.Parallel()

	mw, err := MetricsMiddleware(nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	TracingMiddleware(nil)(mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestMetricsMiddleware(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	mw, err := MetricsMiddleware(mp)
	require.NoError(t, err)
	router := newInstrumentedRouter(mw)

	serveRequest(router, http.MethodGet, "/v1/database-clusters", nil)
	serveRequest(router, http.MethodPut, "/v1/namespaces/prod/database-clusters/orders", nil)
	serveRequest(router, http.MethodPut, "/v1/namespaces/staging/database-clusters/billing", nil)
	serveRequest(router, http.MethodGet, "/nowhere", nil)

	found := collectMetrics(t, reader, HTTPInstrumentationName)

	requests, ok := found["dbcc_http_requests_total"]
	require.True(t, ok)
	sum, ok := requests.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	counts := map[string]int64{}
	for _, dp := range sum.DataPoints {
		route, _ := dp.Attributes.Value("route")
		status, _ := dp.Attributes.Value("status_code")
		counts[route.AsString()+" "+status.AsString()] = dp.Value

		if route.AsString() == "/v1/namespaces/{namespace}/database-clusters/{name}" {
			res, ok := dp.Attributes.Value("resource")
			require.True(t, ok)
			assert.Equal(t, "database-clusters", res.AsString())
		}
	}

	// Both PUTs share one series, named by pattern rather than path
	assert.Equal(t, int64(2), counts["/v1/namespaces/{namespace}/database-clusters/{name} 409"])
	assert.Equal(t, int64(1), counts["/v1/database-clusters 200"])
	assert.Equal(t, int64(1), counts[unknownRoute+" 404"])

	_, ok = found["dbcc_http_request_duration_seconds"]
	assert.True(t, ok)

	active, ok := found["dbcc_http_active_requests"]
	require.True(t, ok)
	activeSum, ok := active.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.NotEmpty(t, activeSum.DataPoints)
	assert.Equal(t, int64(0), activeSum.DataPoints[0].Value)
}

func TestTracingMiddleware(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	router := newInstrumentedRouter(TracingMiddleware(tp))

	serveRequest(router, http.MethodGet, "/health", nil)
	serveRequest(router, http.MethodPut, "/v1/namespaces/prod/database-clusters/orders", nil)
	serveRequest(router, http.MethodGet, "/v1/namespaces/prod/backup-storages/s3", nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 3)

	byName := map[string]tracetest.SpanStub{}
	for _, s := range spans {
		byName[s.Name] = s
	}

	health, ok := byName["GET /health"]
	require.True(t, ok)
	assert.Equal(t, codes.Ok, health.Status.Code)

	put, ok := byName["PUT /v1/namespaces/{namespace}/database-clusters/{name}"]
	require.True(t, ok, "span is renamed to the route pattern")
	assert.Equal(t, codes.Unset, put.Status.Code, "conflicts are not span errors")
	assert.Contains(t, put.Attributes, attribute.String("resource.plural", "database-clusters"))

	failed, ok := byName["GET /v1/namespaces/{namespace}/backup-storages/{name}"]
	require.True(t, ok)
	assert.Equal(t, codes.Error, failed.Status.Code)
}

func TestTracingMiddleware_ContinuesIncomingTrace(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	// The middleware reads the global propagator; New installs the same one
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	propagator := propagation.TraceContext{}
	parentCtx, parent := tp.Tracer("client").Start(context.Background(), "kubectl-like client")
	header := http.Header{}
	propagator.Inject(parentCtx, propagation.HeaderCarrier(header))
	parent.End()

	handler := TracingMiddleware(tp)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	serveRequest(handler, http.MethodGet, "/v1/database-clusters", header)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	server := spans[1]
	assert.Equal(t, spans[0].SpanContext.TraceID(), server.SpanContext.TraceID())
	assert.Equal(t, spans[0].SpanContext.SpanID(), server.Parent.SpanID())
	assert.Equal(t, "GET "+unknownRoute, server.Name, "no chi router, no pattern")
}
