// Package v1 provides the REST handlers for database cluster resources.
package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/dbcluster-console/internal/api/common"
	"github.com/stacklok/dbcluster-console/internal/resources/v1alpha1"
	"github.com/stacklok/dbcluster-console/internal/service"
)

// object is what the handlers need from a resource.
type object interface {
	GetName() string
	SetName(string)
	GetNamespace() string
	SetNamespace(string)
}

// handlers serves one resource kind.
type handlers[T object] struct {
	kind      string
	newObject func() T
	list      func(ctx context.Context, namespace string) ([]T, error)
	get       func(ctx context.Context, namespace, name string) (T, error)
	update    func(ctx context.Context, obj T) (T, error)
}

// Router creates a new router for the resource API
func Router(svc service.ClusterService) http.Handler {
	clusters := &handlers[*v1alpha1.DatabaseCluster]{
		kind:      v1alpha1.KindDatabaseCluster,
		newObject: func() *v1alpha1.DatabaseCluster { return &v1alpha1.DatabaseCluster{} },
		list:      svc.ListDatabaseClusters,
		get:       svc.GetDatabaseCluster,
		update:    svc.UpdateDatabaseCluster,
	}
	backupStorages := &handlers[*v1alpha1.BackupStorage]{
		kind:      v1alpha1.KindBackupStorage,
		newObject: func() *v1alpha1.BackupStorage { return &v1alpha1.BackupStorage{} },
		list:      svc.ListBackupStorages,
		get:       svc.GetBackupStorage,
		update:    svc.UpdateBackupStorage,
	}
	monitoringConfigs := &handlers[*v1alpha1.MonitoringConfig]{
		kind:      v1alpha1.KindMonitoringConfig,
		newObject: func() *v1alpha1.MonitoringConfig { return &v1alpha1.MonitoringConfig{} },
		list:      svc.ListMonitoringConfigs,
		get:       svc.GetMonitoringConfig,
		update:    svc.UpdateMonitoringConfig,
	}

	r := chi.NewRouter()

	// All namespaces
	r.Get("/database-clusters", clusters.listAll)
	r.Get("/backup-storages", backupStorages.listAll)
	r.Get("/monitoring-configs", monitoringConfigs.listAll)

	r.Route("/namespaces/{namespace}", func(r chi.Router) {
		r.Get("/database-clusters", clusters.listNamespaced)
		r.Get("/database-clusters/{name}", clusters.getOne)
		r.Put("/database-clusters/{name}", clusters.updateOne)

		r.Get("/backup-storages", backupStorages.listNamespaced)
		r.Get("/backup-storages/{name}", backupStorages.getOne)
		r.Put("/backup-storages/{name}", backupStorages.updateOne)

		r.Get("/monitoring-configs", monitoringConfigs.listNamespaced)
		r.Get("/monitoring-configs/{name}", monitoringConfigs.getOne)
		r.Put("/monitoring-configs/{name}", monitoringConfigs.updateOne)
	})

	return r
}

func (h *handlers[T]) listAll(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, "")
}

func (h *handlers[T]) listNamespaced(w http.ResponseWriter, r *http.Request) {
	namespace, err := common.GetNamespaceParam(r)
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), common.CodeBadRequest, http.StatusBadRequest)
		return
	}
	h.writeList(w, r, namespace)
}

func (h *handlers[T]) writeList(w http.ResponseWriter, r *http.Request, namespace string) {
	items, err := h.list(r.Context(), namespace)
	if err != nil {
		common.WriteServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	common.WriteJSONResponse(w, common.ListResponse[T]{Items: items, Count: len(items)}, http.StatusOK)
}

func (h *handlers[T]) getOne(w http.ResponseWriter, r *http.Request) {
	namespace, name, ok := pathKey(w, r)
	if !ok {
		return
	}

	obj, err := h.get(r.Context(), namespace, name)
	if err != nil {
		common.WriteServiceError(w, r, err)
		return
	}
	common.WriteJSONResponse(w, obj, http.StatusOK)
}

// updateOne replaces the object at the path with the request body. The body's
// metadata.resourceVersion guards the write.
func (h *handlers[T]) updateOne(w http.ResponseWriter, r *http.Request) {
	namespace, name, ok := pathKey(w, r)
	if !ok {
		return
	}

	obj := h.newObject()
	if err := common.DecodeJSONBody(w, r, obj); err != nil {
		common.WriteErrorResponse(w, err.Error(), common.CodeBadRequest, http.StatusBadRequest)
		return
	}

	if obj.GetName() == "" {
		obj.SetName(name)
	}
	if obj.GetNamespace() == "" {
		obj.SetNamespace(namespace)
	}
	if obj.GetName() != name || obj.GetNamespace() != namespace {
		common.WriteErrorResponse(w,
			fmt.Sprintf("%s %s/%s in the body does not match the path", h.kind, obj.GetNamespace(), obj.GetName()),
			common.CodeBadRequest, http.StatusBadRequest)
		return
	}

	updated, err := h.update(r.Context(), obj)
	if err != nil {
		common.WriteServiceError(w, r, err)
		return
	}
	common.WriteJSONResponse(w, updated, http.StatusOK)
}

func pathKey(w http.ResponseWriter, r *http.Request) (namespace, name string, ok bool) {
	namespace, err := common.GetNamespaceParam(r)
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), common.CodeBadRequest, http.StatusBadRequest)
		return "", "", false
	}
	name, err = common.GetNameParam(r)
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), common.CodeBadRequest, http.StatusBadRequest)
		return "", "", false
	}
	return namespace, name, true
}
