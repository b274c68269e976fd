package kubernetes

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"k8s.io/client-go/rest"
	ctrl "sigs.k8s.io/controller-runtime"
	ctrlcache "sigs.k8s.io/controller-runtime/pkg/cache"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	"github.com/stacklok/dbcluster-console/internal/cache"
	"github.com/stacklok/dbcluster-console/internal/resources/v1alpha1"
	"github.com/stacklok/dbcluster-console/internal/telemetry"
)

type cacheWatcherOptions struct {
	namespaces        []string
	restConfig        *rest.Config
	clusters          *cache.Store[*v1alpha1.DatabaseCluster]
	backupStorages    *cache.Store[*v1alpha1.BackupStorage]
	monitoringConfigs *cache.Store[*v1alpha1.MonitoringConfig]
	metrics           *telemetry.CacheMetrics
}

// Option configures NewCacheWatcher.
type Option func(*cacheWatcherOptions) error

// WithNamespaces restricts the watch to namespaces. Without it all namespaces are watched.
func WithNamespaces(namespaces ...string) Option {
	return func(o *cacheWatcherOptions) error {
		if o.namespaces == nil {
			o.namespaces = make([]string, 0)
		}
		o.namespaces = append(o.namespaces, namespaces...)
		return nil
	}
}

// WithRestConfig sets the API server connection.
func WithRestConfig(config *rest.Config) Option {
	return func(o *cacheWatcherOptions) error {
		if config == nil {
			return fmt.Errorf("rest config is required")
		}
		o.restConfig = config
		return nil
	}
}

// WithDatabaseClusterStore mirrors DatabaseCluster objects into store.
func WithDatabaseClusterStore(store *cache.Store[*v1alpha1.DatabaseCluster]) Option {
	return func(o *cacheWatcherOptions) error {
		o.clusters = store
		return nil
	}
}

// WithBackupStorageStore mirrors BackupStorage objects into store.
func WithBackupStorageStore(store *cache.Store[*v1alpha1.BackupStorage]) Option {
	return func(o *cacheWatcherOptions) error {
		o.backupStorages = store
		return nil
	}
}

// WithMonitoringConfigStore mirrors MonitoringConfig objects into store.
func WithMonitoringConfigStore(store *cache.Store[*v1alpha1.MonitoringConfig]) Option {
	return func(o *cacheWatcherOptions) error {
		o.monitoringConfigs = store
		return nil
	}
}

// WithCacheMetrics records the number of cached objects per kind.
func WithCacheMetrics(metrics *telemetry.CacheMetrics) Option {
	return func(o *cacheWatcherOptions) error {
		o.metrics = metrics
		return nil
	}
}

// CacheWatcher runs the controllers that keep the stores warm.
type CacheWatcher struct {
	manager ctrl.Manager
	synced  atomic.Bool
}

// NewCacheWatcher creates a manager with one cache reconciler per configured store.
// It does not start watching until Start is called.
func NewCacheWatcher(opts ...Option) (*CacheWatcher, error) {
	o := &cacheWatcherOptions{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	if o.restConfig == nil {
		return nil, fmt.Errorf("rest config is required")
	}
	if o.clusters == nil && o.backupStorages == nil && o.monitoringConfigs == nil {
		return nil, fmt.Errorf("at least one store is required")
	}

	defaultNamespaces := map[string]ctrlcache.Config{}
	for _, namespace := range o.namespaces {
		defaultNamespaces[namespace] = ctrlcache.Config{}
	}

	scheme, err := NewScheme()
	if err != nil {
		return nil, err
	}

	options := ctrl.Options{
		Scheme: scheme,
		// Every console replica keeps its own cache.
		LeaderElection: false,
		Metrics:        metricsserver.Options{BindAddress: "0"},
		Cache: ctrlcache.Options{
			// if nil, defaults to all namespaces
			DefaultNamespaces: defaultNamespaces,
		},
	}
	if len(defaultNamespaces) == 0 {
		options.Cache.DefaultNamespaces = nil
	}

	mgr, err := ctrl.NewManager(o.restConfig, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create manager: %w", err)
	}

	if o.clusters != nil {
		r := NewCacheReconciler(NewDatabaseClusterBackend, o.clusters, o.metrics)
		if err := r.SetupWithManager(mgr); err != nil {
			return nil, fmt.Errorf("failed to setup %s controller: %w", v1alpha1.KindDatabaseCluster, err)
		}
	}
	if o.backupStorages != nil {
		r := NewCacheReconciler(NewBackupStorageBackend, o.backupStorages, o.metrics)
		if err := r.SetupWithManager(mgr); err != nil {
			return nil, fmt.Errorf("failed to setup %s controller: %w", v1alpha1.KindBackupStorage, err)
		}
	}
	if o.monitoringConfigs != nil {
		r := NewCacheReconciler(NewMonitoringConfigBackend, o.monitoringConfigs, o.metrics)
		if err := r.SetupWithManager(mgr); err != nil {
			return nil, fmt.Errorf("failed to setup %s controller: %w", v1alpha1.KindMonitoringConfig, err)
		}
	}

	return &CacheWatcher{manager: mgr}, nil
}

// Start runs the watch until ctx is cancelled.
func (w *CacheWatcher) Start(ctx context.Context) error {
	go func() {
		if w.manager.GetCache().WaitForCacheSync(ctx) {
			w.synced.Store(true)
			slog.Info("Resource cache synced")
		}
	}()

	if err := w.manager.Start(ctx); err != nil {
		return fmt.Errorf("cache watcher stopped: %w", err)
	}
	return nil
}

// Synced reports whether the initial list of every watched kind has been received.
func (w *CacheWatcher) Synced() bool {
	return w.synced.Load()
}
