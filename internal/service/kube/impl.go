// Package kube provides a Kubernetes-backed implementation of the ClusterService interface
package kube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"

	"github.com/stacklok/dbcluster-console/internal/cache"
	"github.com/stacklok/dbcluster-console/internal/kubernetes"
	"github.com/stacklok/dbcluster-console/internal/mutation"
	"github.com/stacklok/dbcluster-console/internal/otel"
	"github.com/stacklok/dbcluster-console/internal/resources/v1alpha1"
	"github.com/stacklok/dbcluster-console/internal/service"
)

// Object is a cacheable Kubernetes object.
type Object[T any] interface {
	cache.Object[T]
	GetAnnotations() map[string]string
}

// Backend reads and writes one resource kind.
type Backend[T Object[T]] interface {
	Kind() string
	Get(ctx context.Context, key types.NamespacedName) (T, error)
	List(ctx context.Context, namespace string) ([]T, error)
	Update(ctx context.Context, obj T) (T, error)
}

// SyncChecker reports whether the watch cache has received its initial list.
type SyncChecker interface {
	Synced() bool
}

// options holds configuration options for the Kubernetes service
type options struct {
	clusters          *resource[*v1alpha1.DatabaseCluster]
	backupStorages    *resource[*v1alpha1.BackupStorage]
	monitoringConfigs *resource[*v1alpha1.MonitoringConfig]
	sync              SyncChecker
	tracer            trace.Tracer
}

// Option is a functional option for configuring the Kubernetes service
type Option func(*options) error

// WithDatabaseClusters serves DatabaseCluster objects from backend. store may be nil.
func WithDatabaseClusters(
	backend Backend[*v1alpha1.DatabaseCluster],
	store *cache.Store[*v1alpha1.DatabaseCluster],
) Option {
	return func(o *options) error {
		if backend == nil {
			return fmt.Errorf("database cluster backend is required")
		}
		o.clusters = &resource[*v1alpha1.DatabaseCluster]{
			backend:        backend,
			store:          store,
			validateUpdate: v1alpha1.ValidateDatabaseClusterUpdate,
			merge:          v1alpha1.MergeDatabaseCluster,
		}
		return nil
	}
}

// WithBackupStorages serves BackupStorage objects from backend. store may be nil.
func WithBackupStorages(
	backend Backend[*v1alpha1.BackupStorage],
	store *cache.Store[*v1alpha1.BackupStorage],
) Option {
	return func(o *options) error {
		if backend == nil {
			return fmt.Errorf("backup storage backend is required")
		}
		o.backupStorages = &resource[*v1alpha1.BackupStorage]{
			backend:        backend,
			store:          store,
			validateUpdate: v1alpha1.ValidateBackupStorageUpdate,
			merge:          v1alpha1.MergeBackupStorage,
		}
		return nil
	}
}

// WithMonitoringConfigs serves MonitoringConfig objects from backend. store may be nil.
func WithMonitoringConfigs(
	backend Backend[*v1alpha1.MonitoringConfig],
	store *cache.Store[*v1alpha1.MonitoringConfig],
) Option {
	return func(o *options) error {
		if backend == nil {
			return fmt.Errorf("monitoring config backend is required")
		}
		o.monitoringConfigs = &resource[*v1alpha1.MonitoringConfig]{
			backend: backend,
			store:   store,
			validateUpdate: func(_, updated *v1alpha1.MonitoringConfig) error {
				return v1alpha1.ValidateMonitoringConfig(updated)
			},
			merge: v1alpha1.MergeMonitoringConfig,
		}
		return nil
	}
}

// WithCacheSync makes reads use the stores once checker reports them synced.
func WithCacheSync(checker SyncChecker) Option {
	return func(o *options) error {
		o.sync = checker
		return nil
	}
}

// WithTracer sets the OpenTelemetry tracer for the service.
// If not set, tracing will be disabled (no-op).
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

// kubeService implements the ClusterService interface on top of Kubernetes backends
type kubeService struct {
	clusters          *resource[*v1alpha1.DatabaseCluster]
	backupStorages    *resource[*v1alpha1.BackupStorage]
	monitoringConfigs *resource[*v1alpha1.MonitoringConfig]
	sync              SyncChecker
}

var _ service.ClusterService = (*kubeService)(nil)

// New creates a new Kubernetes-backed cluster service with the given options
func New(opts ...Option) (service.ClusterService, error) {
	o := &options{}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	if o.clusters == nil && o.backupStorages == nil && o.monitoringConfigs == nil {
		return nil, fmt.Errorf("at least one resource backend is required")
	}

	for _, r := range []interface {
		configure(SyncChecker, trace.Tracer)
	}{
		o.clusters, o.backupStorages, o.monitoringConfigs,
	} {
		r.configure(o.sync, o.tracer)
	}

	return &kubeService{
		clusters:          o.clusters,
		backupStorages:    o.backupStorages,
		monitoringConfigs: o.monitoringConfigs,
		sync:              o.sync,
	}, nil
}

// CheckReadiness checks if the service is ready to serve requests
func (s *kubeService) CheckReadiness(_ context.Context) error {
	if s.sync != nil && !s.sync.Synced() {
		return service.ErrNotReady
	}
	return nil
}

// ListDatabaseClusters implements service.ClusterService
func (s *kubeService) ListDatabaseClusters(ctx context.Context, namespace string) ([]*v1alpha1.DatabaseCluster, error) {
	return s.clusters.list(ctx, namespace)
}

// GetDatabaseCluster implements service.ClusterService
func (s *kubeService) GetDatabaseCluster(ctx context.Context, namespace, name string) (*v1alpha1.DatabaseCluster, error) {
	return s.clusters.get(ctx, types.NamespacedName{Namespace: namespace, Name: name})
}

// UpdateDatabaseCluster implements service.ClusterService
func (s *kubeService) UpdateDatabaseCluster(
	ctx context.Context,
	cluster *v1alpha1.DatabaseCluster,
) (*v1alpha1.DatabaseCluster, error) {
	return s.clusters.update(ctx, cluster)
}

// ListBackupStorages implements service.ClusterService
func (s *kubeService) ListBackupStorages(ctx context.Context, namespace string) ([]*v1alpha1.BackupStorage, error) {
	return s.backupStorages.list(ctx, namespace)
}

// GetBackupStorage implements service.ClusterService
func (s *kubeService) GetBackupStorage(ctx context.Context, namespace, name string) (*v1alpha1.BackupStorage, error) {
	return s.backupStorages.get(ctx, types.NamespacedName{Namespace: namespace, Name: name})
}

// UpdateBackupStorage implements service.ClusterService
func (s *kubeService) UpdateBackupStorage(
	ctx context.Context,
	storage *v1alpha1.BackupStorage,
) (*v1alpha1.BackupStorage, error) {
	return s.backupStorages.update(ctx, storage)
}

// ListMonitoringConfigs implements service.ClusterService
func (s *kubeService) ListMonitoringConfigs(ctx context.Context, namespace string) ([]*v1alpha1.MonitoringConfig, error) {
	return s.monitoringConfigs.list(ctx, namespace)
}

// GetMonitoringConfig implements service.ClusterService
func (s *kubeService) GetMonitoringConfig(ctx context.Context, namespace, name string) (*v1alpha1.MonitoringConfig, error) {
	return s.monitoringConfigs.get(ctx, types.NamespacedName{Namespace: namespace, Name: name})
}

// UpdateMonitoringConfig implements service.ClusterService
func (s *kubeService) UpdateMonitoringConfig(
	ctx context.Context,
	config *v1alpha1.MonitoringConfig,
) (*v1alpha1.MonitoringConfig, error) {
	return s.monitoringConfigs.update(ctx, config)
}

// resource serves one kind. A nil *resource answers every call with ErrNotConfigured.
type resource[T Object[T]] struct {
	backend        Backend[T]
	store          *cache.Store[T]
	sync           SyncChecker
	tracer         trace.Tracer
	validateUpdate func(old, updated T) error
	merge          func(cached, server T) T
}

func (r *resource[T]) configure(sync SyncChecker, tracer trace.Tracer) {
	if r == nil {
		return
	}
	r.sync = sync
	r.tracer = tracer
}

// cached reports whether reads can be answered from the store.
func (r *resource[T]) cached() bool {
	return r.store != nil && r.sync != nil && r.sync.Synced()
}

func (r *resource[T]) list(ctx context.Context, namespace string) ([]T, error) {
	if r == nil {
		return nil, service.ErrNotConfigured
	}
	ctx, span := r.startSpan(ctx, "List", namespace)
	defer span.End()

	if r.cached() {
		items := r.store.List(namespace)
		span.SetAttributes(otel.AttrResultCount.Int(len(items)))
		return items, nil
	}

	items, err := r.backend.List(ctx, namespace)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	visible := make([]T, 0, len(items))
	for _, item := range items {
		if !hidden(item) {
			visible = append(visible, item)
		}
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(visible)))
	return visible, nil
}

func (r *resource[T]) get(ctx context.Context, key types.NamespacedName) (T, error) {
	var zero T
	if r == nil {
		return zero, service.ErrNotConfigured
	}
	ctx, span := r.startSpan(ctx, "Get", key.Namespace,
		trace.WithAttributes(otel.AttrResourceName.String(key.Name)))
	defer span.End()

	if r.cached() {
		if obj, ok := r.store.Get(key); ok {
			return obj, nil
		}
	}

	obj, err := r.backend.Get(ctx, key)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return zero, fmt.Errorf("%w: %s %s", service.ErrNotFound, r.backend.Kind(), key)
		}
		otel.RecordError(span, err)
		return zero, err
	}
	if hidden(obj) {
		return zero, fmt.Errorf("%w: %s %s", service.ErrNotFound, r.backend.Kind(), key)
	}
	return obj, nil
}

func (r *resource[T]) update(ctx context.Context, obj T) (T, error) {
	var zero T
	if r == nil {
		return zero, service.ErrNotConfigured
	}
	key := cache.KeyOf(obj)
	ctx, span := r.startSpan(ctx, "Update", key.Namespace,
		trace.WithAttributes(otel.AttrResourceName.String(key.Name)))
	defer span.End()

	if obj.GetResourceVersion() == "" {
		err := fmt.Errorf("%w: metadata.resourceVersion: is required", v1alpha1.ErrInvalid)
		otel.RecordError(span, err)
		return zero, err
	}

	current, err := r.get(ctx, key)
	if err != nil {
		otel.RecordError(span, err)
		return zero, err
	}
	if err := r.validateUpdate(current, obj); err != nil {
		otel.RecordError(span, err)
		return zero, err
	}

	submitted := obj.GetResourceVersion()
	updated, err := r.backend.Update(ctx, obj)
	if err != nil {
		switch {
		case mutation.IsConflict(err):
			slog.Debug("Rejected stale update",
				"kind", r.backend.Kind(),
				"key", key.String(),
				"resource_version", obj.GetResourceVersion(),
			)
		case apierrors.IsNotFound(err):
			err = fmt.Errorf("%w: %s %s", service.ErrNotFound, r.backend.Kind(), key)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			slog.Debug("Update cancelled", "kind", r.backend.Kind(), "key", key.String())
		default:
			slog.Error("Failed to update object", "kind", r.backend.Kind(), "key", key.String(), "error", err)
		}
		otel.RecordError(span, err)
		return zero, err
	}

	merged := r.merge(current, updated)
	if r.store != nil && !r.store.UpsertIfVersion(merged, submitted) {
		slog.Debug("Kept newer cached object",
			"kind", r.backend.Kind(),
			"key", key.String(),
			"resource_version", merged.GetResourceVersion(),
		)
	}

	slog.Info("Updated object",
		"kind", r.backend.Kind(),
		"key", key.String(),
		"generation", merged.GetGeneration(),
		"resource_version", merged.GetResourceVersion(),
	)
	return merged, nil
}

func hidden[T Object[T]](obj T) bool {
	return obj.GetAnnotations()[kubernetes.HiddenAnnotation] == "true"
}
