// Package cache holds the console's local copies of watched resources.
package cache

import (
	"sort"
	"sync"

	"k8s.io/apimachinery/pkg/types"

	"github.com/stacklok/dbcluster-console/internal/mutation"
)

// Object is a namespaced resource that can copy itself.
type Object[T any] interface {
	mutation.Entity[T]
	GetName() string
	GetNamespace() string
}

// Store is a concurrency-safe map of resources keyed by namespace and name.
// It stores and returns copies, so callers never share memory with it.
type Store[T Object[T]] struct {
	mu      sync.RWMutex
	objects map[types.NamespacedName]T
}

// NewStore creates an empty store.
func NewStore[T Object[T]]() *Store[T] {
	return &Store[T]{objects: make(map[types.NamespacedName]T)}
}

// KeyOf returns the store key of obj.
func KeyOf[T Object[T]](obj T) types.NamespacedName {
	return types.NamespacedName{Namespace: obj.GetNamespace(), Name: obj.GetName()}
}

// Get returns a copy of the object stored under key.
func (s *Store[T]) Get(key types.NamespacedName) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		var zero T
		return zero, false
	}
	return obj.DeepCopy(), true
}

// List returns copies of the objects in namespace, sorted by name.
// An empty namespace lists every namespace.
func (s *Store[T]) List(namespace string) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]T, 0, len(s.objects))
	for key, obj := range s.objects {
		if namespace != "" && key.Namespace != namespace {
			continue
		}
		result = append(result, obj.DeepCopy())
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].GetNamespace() != result[j].GetNamespace() {
			return result[i].GetNamespace() < result[j].GetNamespace()
		}
		return result[i].GetName() < result[j].GetName()
	})
	return result
}

// Upsert stores a copy of obj, replacing any previous value.
func (s *Store[T]) Upsert(obj T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[KeyOf(obj)] = obj.DeepCopy()
}

// UpsertIfVersion stores a copy of obj when nothing is stored under its key yet, or when
// the stored object still has resourceVersion. It reports whether obj was stored.
// Writers that only know the version they started from use it so that a newer object
// stored by the watcher in the meantime is kept.
func (s *Store[T]) UpsertIfVersion(obj T, resourceVersion string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := KeyOf(obj)
	if current, ok := s.objects[key]; ok && current.GetResourceVersion() != resourceVersion {
		return false
	}
	s.objects[key] = obj.DeepCopy()
	return true
}

// Delete removes key. It reports whether something was removed.
func (s *Store[T]) Delete(key types.NamespacedName) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[key]; !ok {
		return false
	}
	delete(s.objects, key)
	return true
}

// Len returns the number of stored objects.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Entry binds the store to one key so it can back a mutation coordinator.
func (s *Store[T]) Entry(key types.NamespacedName) *Entry[T] {
	return &Entry[T]{store: s, key: key}
}

// Entry is a single slot of a Store. It implements mutation.Cache.
type Entry[T Object[T]] struct {
	store *Store[T]
	key   types.NamespacedName
}

// Key returns the key the entry is bound to.
func (e *Entry[T]) Key() types.NamespacedName {
	return e.key
}

// Cached returns a copy of the stored object.
func (e *Entry[T]) Cached() (T, bool) {
	return e.store.Get(e.key)
}

// Store replaces the stored object. Objects whose key differs from the entry's are ignored.
func (e *Entry[T]) Store(obj T) {
	if KeyOf(obj) != e.key {
		return
	}
	e.store.Upsert(obj)
}
