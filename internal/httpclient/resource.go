package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"k8s.io/apimachinery/pkg/types"

	"github.com/stacklok/dbcluster-console/internal/mutation"
	"github.com/stacklok/dbcluster-console/internal/resources/v1alpha1"
)

// Object is a resource served by the console API.
type Object[T any] interface {
	mutation.Entity[T]
	GetName() string
	GetNamespace() string
}

// Resource reads and writes one resource kind through the console API.
// A stale resourceVersion on Update surfaces as an *HTTPError wrapping errdefs.ErrConflict.
type Resource[T Object[T]] struct {
	client    Client
	baseURL   string
	plural    string
	newObject func() T
}

func newResource[T Object[T]](c Client, baseURL, plural string, newObject func() T) *Resource[T] {
	return &Resource[T]{client: c, baseURL: baseURL, plural: plural, newObject: newObject}
}

// Get fetches the object stored under key.
func (r *Resource[T]) Get(ctx context.Context, key types.NamespacedName) (T, error) {
	var zero T
	data, err := r.client.Get(ctx, r.objectURL(key.Namespace, key.Name))
	if err != nil {
		return zero, err
	}
	return r.decode(data)
}

// List returns the objects in namespace. An empty namespace lists all namespaces.
func (r *Resource[T]) List(ctx context.Context, namespace string) ([]T, error) {
	u := r.baseURL + "/v1/" + r.plural
	if namespace != "" {
		u = r.baseURL + "/v1/namespaces/" + url.PathEscape(namespace) + "/" + r.plural
	}

	data, err := r.client.Get(ctx, u)
	if err != nil {
		return nil, err
	}

	items := gjson.GetBytes(data, "items")
	if !items.IsArray() {
		return nil, fmt.Errorf("unexpected list response from %s: missing items", u)
	}
	out := make([]T, 0, len(items.Array()))
	for _, item := range items.Array() {
		obj, err := r.decode([]byte(item.Raw))
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

// Update writes obj guarded by its resourceVersion and returns the stored object.
func (r *Resource[T]) Update(ctx context.Context, obj T) (T, error) {
	var zero T
	body, err := json.Marshal(obj)
	if err != nil {
		return zero, fmt.Errorf("failed to encode %s: %w", r.plural, err)
	}
	data, err := r.client.Put(ctx, r.objectURL(obj.GetNamespace(), obj.GetName()), body)
	if err != nil {
		return zero, err
	}
	return r.decode(data)
}

// Mutator adapts Update to the coordinator.
func (r *Resource[T]) Mutator() mutation.Mutator[T] {
	return mutation.MutatorFunc[T](r.Update)
}

// Refetcher adapts Get for key to the coordinator.
func (r *Resource[T]) Refetcher(key types.NamespacedName) mutation.Refetcher[T] {
	return mutation.RefetcherFunc[T](func(ctx context.Context) (T, error) {
		return r.Get(ctx, key)
	})
}

func (r *Resource[T]) objectURL(namespace, name string) string {
	return fmt.Sprintf("%s/v1/namespaces/%s/%s/%s",
		r.baseURL, url.PathEscape(namespace), r.plural, url.PathEscape(name))
}

func (r *Resource[T]) decode(data []byte) (T, error) {
	obj := r.newObject()
	if err := json.Unmarshal(data, obj); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to decode %s: %w", r.plural, err)
	}
	return obj, nil
}

// ConsoleClient is a typed client for the console API.
type ConsoleClient struct {
	clusters          *Resource[*v1alpha1.DatabaseCluster]
	backupStorages    *Resource[*v1alpha1.BackupStorage]
	monitoringConfigs *Resource[*v1alpha1.MonitoringConfig]
}

// NewConsoleClient creates a client for the API served at baseURL.
func NewConsoleClient(baseURL string, c Client) (*ConsoleClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", baseURL)
	}
	if c == nil {
		c = NewDefaultClient(DefaultTimeout)
	}
	baseURL = strings.TrimRight(baseURL, "/")

	return &ConsoleClient{
		clusters: newResource(c, baseURL, "database-clusters",
			func() *v1alpha1.DatabaseCluster { return &v1alpha1.DatabaseCluster{} }),
		backupStorages: newResource(c, baseURL, "backup-storages",
			func() *v1alpha1.BackupStorage { return &v1alpha1.BackupStorage{} }),
		monitoringConfigs: newResource(c, baseURL, "monitoring-configs",
			func() *v1alpha1.MonitoringConfig { return &v1alpha1.MonitoringConfig{} }),
	}, nil
}

// DatabaseClusters returns the DatabaseCluster resource client.
func (c *ConsoleClient) DatabaseClusters() *Resource[*v1alpha1.DatabaseCluster] {
	return c.clusters
}

// BackupStorages returns the BackupStorage resource client.
func (c *ConsoleClient) BackupStorages() *Resource[*v1alpha1.BackupStorage] {
	return c.backupStorages
}

// MonitoringConfigs returns the MonitoringConfig resource client.
func (c *ConsoleClient) MonitoringConfigs() *Resource[*v1alpha1.MonitoringConfig] {
	return c.monitoringConfigs
}

// GetDatabaseCluster fetches a database cluster.
func (c *ConsoleClient) GetDatabaseCluster(ctx context.Context, key types.NamespacedName) (*v1alpha1.DatabaseCluster, error) {
	return c.clusters.Get(ctx, key)
}

// ListDatabaseClusters lists database clusters in namespace, or everywhere when it is empty.
func (c *ConsoleClient) ListDatabaseClusters(ctx context.Context, namespace string) ([]*v1alpha1.DatabaseCluster, error) {
	return c.clusters.List(ctx, namespace)
}

// UpdateDatabaseCluster writes cluster guarded by its resourceVersion.
func (c *ConsoleClient) UpdateDatabaseCluster(
	ctx context.Context, cluster *v1alpha1.DatabaseCluster,
) (*v1alpha1.DatabaseCluster, error) {
	return c.clusters.Update(ctx, cluster)
}

// GetBackupStorage fetches a backup storage.
func (c *ConsoleClient) GetBackupStorage(ctx context.Context, key types.NamespacedName) (*v1alpha1.BackupStorage, error) {
	return c.backupStorages.Get(ctx, key)
}

// UpdateBackupStorage writes storage guarded by its resourceVersion.
func (c *ConsoleClient) UpdateBackupStorage(
	ctx context.Context, storage *v1alpha1.BackupStorage,
) (*v1alpha1.BackupStorage, error) {
	return c.backupStorages.Update(ctx, storage)
}

// GetMonitoringConfig fetches a monitoring config.
func (c *ConsoleClient) GetMonitoringConfig(
	ctx context.Context, key types.NamespacedName,
) (*v1alpha1.MonitoringConfig, error) {
	return c.monitoringConfigs.Get(ctx, key)
}

// UpdateMonitoringConfig writes config guarded by its resourceVersion.
func (c *ConsoleClient) UpdateMonitoringConfig(
	ctx context.Context, config *v1alpha1.MonitoringConfig,
) (*v1alpha1.MonitoringConfig, error) {
	return c.monitoringConfigs.Update(ctx, config)
}
