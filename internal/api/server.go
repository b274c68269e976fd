// Package api provides the REST API server for the console.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/stacklok/dbcluster-console/internal/api/common"
	"github.com/stacklok/dbcluster-console/internal/api/system"
	v1 "github.com/stacklok/dbcluster-console/internal/api/v1"
	"github.com/stacklok/dbcluster-console/internal/service"
)

// ServerOption configures the console API server
type ServerOption func(*serverConfig)

// serverConfig holds the server configuration
type serverConfig struct {
	middlewares    []func(http.Handler) http.Handler
	metricsHandler http.Handler
}

// WithMiddlewares adds middleware to the server
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithMetricsHandler serves handler at /metrics. A nil handler leaves the route unmounted.
func WithMetricsHandler(handler http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.metricsHandler = handler
	}
}

// NewServer creates and configures the HTTP router with the given service and options
func NewServer(svc service.ClusterService, opts ...ServerOption) *chi.Mux {
	// Initialize configuration with defaults
	cfg := &serverConfig{
		middlewares: []func(http.Handler) http.Handler{},
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	r := chi.NewRouter()

	// Apply middleware
	for _, mw := range cfg.middlewares {
		r.Use(mw)
	}

	// Set before mounting so sub-routers inherit them
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.WriteErrorResponse(w, "no route for "+r.URL.Path, common.CodeNotFound, http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		common.WriteErrorResponse(w, r.Method+" is not supported on "+r.URL.Path,
			common.CodeBadRequest, http.StatusMethodNotAllowed)
	})

	r.Mount("/", system.HealthRouter(svc))

	if cfg.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.metricsHandler)
	}

	r.Mount("/v1", v1.Router(svc))

	return r
}

// LoggingMiddleware logs HTTP requests. Rejected writes are logged at info and server
// errors at warn; everything else at debug.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		level := slog.LevelDebug
		switch status := ww.Status(); {
		case status >= http.StatusInternalServerError:
			level = slog.LevelWarn
		case r.Method != http.MethodGet && (status == http.StatusConflict || status == http.StatusUnprocessableEntity):
			level = slog.LevelInfo
		}

		slog.Log(r.Context(), level, "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
