package kubernetes

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/stacklok/dbcluster-console/internal/mutation"
	"github.com/stacklok/dbcluster-console/internal/resources/v1alpha1"
)

// Object is a Kubernetes object that can copy itself into its concrete type.
type Object[T any] interface {
	client.Object
	DeepCopy() T
}

// Backend reads and writes one resource kind through a controller-runtime client.
//
// Version conflicts are returned as the API server's 409 status error so that
// mutation.IsConflict recognises them. Every other failure is wrapped in a
// *mutation.OtherError that keeps the status error reachable through errors.As.
type Backend[T Object[T]] struct {
	client    client.Client
	kind      string
	newObject func() T
	newList   func() client.ObjectList
	items     func(client.ObjectList) []T
}

// NewDatabaseClusterBackend returns a backend for DatabaseCluster objects.
func NewDatabaseClusterBackend(c client.Client) *Backend[*v1alpha1.DatabaseCluster] {
	return &Backend[*v1alpha1.DatabaseCluster]{
		client:    c,
		kind:      v1alpha1.KindDatabaseCluster,
		newObject: func() *v1alpha1.DatabaseCluster { return &v1alpha1.DatabaseCluster{} },
		newList:   func() client.ObjectList { return &v1alpha1.DatabaseClusterList{} },
		items: func(l client.ObjectList) []*v1alpha1.DatabaseCluster {
			list := l.(*v1alpha1.DatabaseClusterList)
			out := make([]*v1alpha1.DatabaseCluster, 0, len(list.Items))
			for i := range list.Items {
				out = append(out, &list.Items[i])
			}
			return out
		},
	}
}

// NewBackupStorageBackend returns a backend for BackupStorage objects.
func NewBackupStorageBackend(c client.Client) *Backend[*v1alpha1.BackupStorage] {
	return &Backend[*v1alpha1.BackupStorage]{
		client:    c,
		kind:      v1alpha1.KindBackupStorage,
		newObject: func() *v1alpha1.BackupStorage { return &v1alpha1.BackupStorage{} },
		newList:   func() client.ObjectList { return &v1alpha1.BackupStorageList{} },
		items: func(l client.ObjectList) []*v1alpha1.BackupStorage {
			list := l.(*v1alpha1.BackupStorageList)
			out := make([]*v1alpha1.BackupStorage, 0, len(list.Items))
			for i := range list.Items {
				out = append(out, &list.Items[i])
			}
			return out
		},
	}
}

// NewMonitoringConfigBackend returns a backend for MonitoringConfig objects.
func NewMonitoringConfigBackend(c client.Client) *Backend[*v1alpha1.MonitoringConfig] {
	return &Backend[*v1alpha1.MonitoringConfig]{
		client:    c,
		kind:      v1alpha1.KindMonitoringConfig,
		newObject: func() *v1alpha1.MonitoringConfig { return &v1alpha1.MonitoringConfig{} },
		newList:   func() client.ObjectList { return &v1alpha1.MonitoringConfigList{} },
		items: func(l client.ObjectList) []*v1alpha1.MonitoringConfig {
			list := l.(*v1alpha1.MonitoringConfigList)
			out := make([]*v1alpha1.MonitoringConfig, 0, len(list.Items))
			for i := range list.Items {
				out = append(out, &list.Items[i])
			}
			return out
		},
	}
}

// Kind returns the resource kind served by the backend.
func (b *Backend[T]) Kind() string {
	return b.kind
}

// Get fetches the object stored under key.
func (b *Backend[T]) Get(ctx context.Context, key types.NamespacedName) (T, error) {
	obj := b.newObject()
	if err := b.client.Get(ctx, key, obj); err != nil {
		var zero T
		return zero, mutation.NewOtherError("get", fmt.Errorf("%s %s: %w", b.kind, FormatObjectKey(key), err))
	}
	return obj, nil
}

// List returns the objects in namespace. An empty namespace lists all namespaces.
func (b *Backend[T]) List(ctx context.Context, namespace string) ([]T, error) {
	list := b.newList()

	var opts []client.ListOption
	if namespace != "" {
		opts = append(opts, client.InNamespace(namespace))
	}
	if err := b.client.List(ctx, list, opts...); err != nil {
		return nil, mutation.NewOtherError("list", fmt.Errorf("%s in %q: %w", b.kind, namespace, err))
	}
	return b.items(list), nil
}

// Update writes obj guarded by its resourceVersion and returns the stored object.
// obj itself is not modified.
func (b *Backend[T]) Update(ctx context.Context, obj T) (T, error) {
	out := obj.DeepCopy()
	if err := b.client.Update(ctx, out); err != nil {
		var zero T
		if apierrors.IsConflict(err) {
			return zero, err
		}
		return zero, mutation.NewOtherError("update", fmt.Errorf("%s %s: %w", b.kind, keyOf(obj), err))
	}
	return out, nil
}

// Create creates obj and returns the stored object. obj itself is not modified.
func (b *Backend[T]) Create(ctx context.Context, obj T) (T, error) {
	out := obj.DeepCopy()
	if err := b.client.Create(ctx, out); err != nil {
		var zero T
		return zero, mutation.NewOtherError("create", fmt.Errorf("%s %s: %w", b.kind, keyOf(obj), err))
	}
	return out, nil
}

// Delete removes obj, guarded by its resourceVersion when it has one.
func (b *Backend[T]) Delete(ctx context.Context, obj T) error {
	var opts []client.DeleteOption
	if rv := obj.GetResourceVersion(); rv != "" {
		opts = append(opts, client.Preconditions{ResourceVersion: &rv})
	}
	if err := b.client.Delete(ctx, obj, opts...); err != nil {
		if apierrors.IsConflict(err) {
			return err
		}
		return mutation.NewOtherError("delete", fmt.Errorf("%s %s: %w", b.kind, keyOf(obj), err))
	}
	return nil
}

// Mutator adapts b.Update to the coordinator.
func Mutator[T Object[T]](b *Backend[T]) mutation.Mutator[T] {
	return mutation.MutatorFunc[T](b.Update)
}

// Refetcher adapts b.Get for key to the coordinator.
func Refetcher[T Object[T]](b *Backend[T], key types.NamespacedName) mutation.Refetcher[T] {
	return mutation.RefetcherFunc[T](func(ctx context.Context) (T, error) {
		return b.Get(ctx, key)
	})
}

func keyOf(obj client.Object) string {
	return FormatObjectKey(client.ObjectKeyFromObject(obj))
}
