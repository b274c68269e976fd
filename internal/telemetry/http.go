package telemetry

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	// HTTPInstrumentationName is the tracer and meter name of the HTTP middleware
	HTTPInstrumentationName = "github.com/stacklok/dbcluster-console/http"

	unknownRoute = "unknown_route"
)

// routePattern returns the chi pattern that served r, e.g.
// "/v1/namespaces/{namespace}/database-clusters/{name}". Raw paths would explode
// cardinality, so unmatched requests share one value.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return unknownRoute
}

// routeResource returns the resource plural a /v1 route serves, or "" for other routes.
func routeResource(pattern string) string {
	rest, ok := strings.CutPrefix(pattern, "/v1/")
	if !ok {
		return ""
	}
	for _, segment := range strings.Split(rest, "/") {
		switch segment {
		case "", "namespaces", "{namespace}", "{name}":
			continue
		default:
			return segment
		}
	}
	return ""
}

func requestAttributes(r *http.Request, route string, status int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("method", r.Method),
		attribute.String("route", route),
		attribute.String("status_code", strconv.Itoa(status)),
	}
	if res := routeResource(route); res != "" {
		attrs = append(attrs, attribute.String("resource", res))
	}
	return attrs
}

type httpMetrics struct {
	duration metric.Float64Histogram
	requests metric.Int64Counter
	inFlight metric.Int64UpDownCounter
}

func newHTTPMetrics(provider metric.MeterProvider) (*httpMetrics, error) {
	meter := provider.Meter(HTTPInstrumentationName)

	duration, err := meter.Float64Histogram(
		"dbcc_http_request_duration_seconds",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	requests, err := meter.Int64Counter(
		"dbcc_http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	inFlight, err := meter.Int64UpDownCounter(
		"dbcc_http_active_requests",
		metric.WithDescription("Number of HTTP requests being served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &httpMetrics{duration: duration, requests: requests, inFlight: inFlight}, nil
}

// MetricsMiddleware records request count, duration and in-flight requests per route and
// resource. A nil provider yields a pass-through middleware.
func MetricsMiddleware(provider metric.MeterProvider) (func(http.Handler) http.Handler, error) {
	if provider == nil {
		return passThrough, nil
	}

	m, err := newHTTPMetrics(provider)
	if err != nil {
		return nil, err
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// r.Context() may be cancelled once ServeHTTP returns
			ctx := r.Context()
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			m.inFlight.Add(ctx, 1)
			next.ServeHTTP(ww, r)
			m.inFlight.Add(ctx, -1)

			attrs := metric.WithAttributes(requestAttributes(r, routePattern(r), ww.Status())...)
			m.duration.Record(ctx, time.Since(start).Seconds(), attrs)
			m.requests.Add(ctx, 1, attrs)
		})
	}, nil
}

// TracingMiddleware starts a server span per request, continuing any W3C trace context
// the caller sent. The span is renamed to the route pattern once chi has routed the
// request. A nil provider yields a pass-through middleware.
func TracingMiddleware(provider trace.TracerProvider) func(http.Handler) http.Handler {
	if provider == nil {
		return passThrough
	}

	tracer := provider.Tracer(HTTPInstrumentationName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.URLPath(r.URL.Path),
					semconv.UserAgentOriginal(r.UserAgent()),
				),
			)
			defer span.End()

			next.ServeHTTP(ww, r.WithContext(ctx))

			route := routePattern(r)
			status := ww.Status()
			span.SetName(r.Method + " " + route)
			span.SetAttributes(
				semconv.HTTPRouteKey.String(route),
				semconv.HTTPResponseStatusCode(status),
			)
			if res := routeResource(route); res != "" {
				span.SetAttributes(attribute.String("resource.plural", res))
			}

			switch {
			case status == http.StatusConflict:
				// A conflict is a normal outcome of an optimistic write
				span.SetStatus(codes.Unset, "")
			case status >= 400:
				span.SetStatus(codes.Error, http.StatusText(status))
			default:
				span.SetStatus(codes.Ok, "")
			}
		})
	}
}

func passThrough(next http.Handler) http.Handler {
	return next
}
