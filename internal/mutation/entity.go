package mutation

// VersionedEntity is the minimal shape of a resource the coordinator can mutate.
// Every Kubernetes metav1.Object satisfies it.
type VersionedEntity interface {
	// GetGeneration returns the semantic version. It only moves on spec writes.
	GetGeneration() int64

	// GetResourceVersion returns the opaque optimistic-lock token. It moves on every write
	// and is only ever compared for equality.
	GetResourceVersion() string

	// SetResourceVersion replaces the optimistic-lock token.
	SetResourceVersion(version string)
}

// Entity is a VersionedEntity that can copy itself, so cached, desired and refetched
// copies of a resource never alias each other.
type Entity[T any] interface {
	VersionedEntity
	DeepCopy() T
}
