package kubernetes

import (
	"context"
	"log/slog"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/event"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	"github.com/stacklok/dbcluster-console/internal/cache"
	"github.com/stacklok/dbcluster-console/internal/telemetry"
)

// HiddenAnnotation set to "true" keeps an object out of the console.
const HiddenAnnotation = "dbaas.stacklok.dev/console-hidden"

// CacheReconciler mirrors one resource kind into a cache.Store.
type CacheReconciler[T Object[T]] struct {
	backend    *Backend[T]
	newBackend func(client.Client) *Backend[T]
	store      *cache.Store[T]
	metrics    *telemetry.CacheMetrics
}

// NewCacheReconciler creates a reconciler that fills store. newBackend is called with the
// manager's client during SetupWithManager.
func NewCacheReconciler[T Object[T]](
	newBackend func(client.Client) *Backend[T],
	store *cache.Store[T],
	metrics *telemetry.CacheMetrics,
) *CacheReconciler[T] {
	return &CacheReconciler[T]{
		newBackend: newBackend,
		store:      store,
		metrics:    metrics,
	}
}

// Reconcile is part of the main kubernetes reconciliation loop which aims to
// move the current state of the cluster closer to the desired state.
func (r *CacheReconciler[T]) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	obj, err := r.backend.Get(ctx, req.NamespacedName)
	switch {
	case apierrors.IsNotFound(err):
		if r.store.Delete(req.NamespacedName) {
			slog.Debug("Evicted deleted object from cache",
				"kind", r.backend.Kind(),
				"key", FormatObjectKey(req.NamespacedName),
			)
		}
	case err != nil:
		slog.Error("Failed to get object", "kind", r.backend.Kind(), "error", err)
		return ctrl.Result{}, err
	case checkAnnotation(obj.GetAnnotations(), HiddenAnnotation):
		r.store.Delete(req.NamespacedName)
	default:
		r.store.Upsert(obj)
		slog.Debug("Cached object",
			"kind", r.backend.Kind(),
			"key", FormatObjectKey(req.NamespacedName),
			"generation", obj.GetGeneration(),
			"resource_version", obj.GetResourceVersion(),
		)
	}

	r.metrics.RecordEntries(ctx, r.backend.Kind(), int64(r.store.Len()))
	return ctrl.Result{}, nil
}

func checkAnnotation(annotations map[string]string, annotation string) bool {
	if annotations == nil {
		return false
	}
	value, ok := annotations[annotation]
	if !ok {
		return false
	}
	if value == "true" {
		return true
	}
	return false
}

func makeNewObjectPredicate[T client.Object](
	annotation string,
) func(event.TypedCreateEvent[T]) bool {
	return func(event event.TypedCreateEvent[T]) bool {
		annotations := event.Object.GetAnnotations()
		return !checkAnnotation(annotations, annotation)
	}
}

func makeUpdateObjectPredicate[T client.Object](
	annotation string,
) func(event.TypedUpdateEvent[T]) bool {
	return func(event event.TypedUpdateEvent[T]) bool {
		newVisible := !checkAnnotation(event.ObjectNew.GetAnnotations(), annotation)
		oldVisible := !checkAnnotation(event.ObjectOld.GetAnnotations(), annotation)

		// Below is the truth table for the update case:
		// new-visible | old-visible | enqueue (refresh)
		// new-visible | old-hidden  | enqueue (add)
		// new-hidden  | old-visible | enqueue (evict)
		// new-hidden  | old-hidden  | ignore
		return newVisible || oldVisible
	}
}

func makeDeleteObjectPredicate[T client.Object](
	annotation string,
) func(event.TypedDeleteEvent[T]) bool {
	return func(event event.TypedDeleteEvent[T]) bool {
		annotations := event.Object.GetAnnotations()
		return !checkAnnotation(annotations, annotation)
	}
}

// SetupWithManager sets up the controller with the Manager.
func (r *CacheReconciler[T]) SetupWithManager(mgr ctrl.Manager) error {
	annotationPredicate := predicate.Funcs{
		CreateFunc: makeNewObjectPredicate[client.Object](HiddenAnnotation),
		UpdateFunc: makeUpdateObjectPredicate[client.Object](HiddenAnnotation),
		DeleteFunc: makeDeleteObjectPredicate[client.Object](HiddenAnnotation),
	}

	r.backend = r.newBackend(mgr.GetClient())

	return ctrl.NewControllerManagedBy(mgr).
		For(r.backend.newObject(), builder.WithPredicates(annotationPredicate)).
		Complete(r)
}
