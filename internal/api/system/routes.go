// Package system provides the health, readiness and version endpoints.
package system

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/dbcluster-console/internal/api/common"
	"github.com/stacklok/dbcluster-console/internal/service"
	"github.com/stacklok/dbcluster-console/internal/versions"
)

// HealthRouter creates a router for health check endpoints
func HealthRouter(svc service.ClusterService) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", healthHandler)
	r.Get("/readiness", readinessHandler(svc))
	r.Get("/version", versionHandler)

	return r
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, map[string]string{"status": "healthy"}, http.StatusOK)
}

// readinessHandler handles readiness check requests
func readinessHandler(svc service.ClusterService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.CheckReadiness(r.Context()); err != nil {
			common.WriteErrorResponse(w, "console not ready: "+err.Error(), common.CodeUnavailable,
				http.StatusServiceUnavailable)
			return
		}
		common.WriteJSONResponse(w, map[string]string{"status": "ready"}, http.StatusOK)
	}
}

// versionHandler handles version information requests
func versionHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, versions.GetVersionInfo(), http.StatusOK)
}
