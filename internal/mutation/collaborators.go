package mutation

import "context"

//go:generate mockgen -destination=mocks/mock_collaborators.go -package=mocks -source=collaborators.go Mutator,Refetcher,Merger,Cache

// Mutator submits a candidate entity to the backend and returns the stored result.
// It must fail with a conflict (see IsConflict) when the entity's resourceVersion is stale,
// and with any other error for everything else.
type Mutator[T VersionedEntity] interface {
	Mutate(ctx context.Context, entity T) (T, error)
}

// Refetcher returns the latest state of the resource known to the backend.
// Its failures are always terminal for the attempt.
type Refetcher[T VersionedEntity] interface {
	Refetch(ctx context.Context) (T, error)
}

// Merger combines the cached entity with a server result. Implementations must be pure.
type Merger[T VersionedEntity] interface {
	Merge(cached, server T) T
}

// Cache is the caller's local copy of the resource. On success the coordinator merges
// the server result into it.
type Cache[T VersionedEntity] interface {
	// Cached returns the cached entity, if any.
	Cached() (T, bool)
	// Store replaces the cached entity.
	Store(entity T)
}

// MutatorFunc adapts a function to Mutator.
type MutatorFunc[T VersionedEntity] func(ctx context.Context, entity T) (T, error)

// Mutate calls f.
func (f MutatorFunc[T]) Mutate(ctx context.Context, entity T) (T, error) {
	return f(ctx, entity)
}

// RefetcherFunc adapts a function to Refetcher.
type RefetcherFunc[T VersionedEntity] func(ctx context.Context) (T, error)

// Refetch calls f.
func (f RefetcherFunc[T]) Refetch(ctx context.Context) (T, error) {
	return f(ctx)
}

// MergerFunc adapts a function to Merger.
type MergerFunc[T VersionedEntity] func(cached, server T) T

// Merge calls f.
func (f MergerFunc[T]) Merge(cached, server T) T {
	return f(cached, server)
}

// ReplaceMerger is a Merger where the server result always wins.
type ReplaceMerger[T VersionedEntity] struct{}

// Merge returns server.
func (ReplaceMerger[T]) Merge(_, server T) T {
	return server
}

// Collaborators groups the dependencies a Coordinator drives.
type Collaborators[T VersionedEntity] struct {
	Mutator   Mutator[T]
	Refetcher Refetcher[T]
	// Merger defaults to ReplaceMerger when nil.
	Merger Merger[T]
	// Cache is optional.
	Cache Cache[T]
}
