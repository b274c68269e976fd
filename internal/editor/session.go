// Package editor binds a mutation coordinator to one live resource so that callers can
// express edits as plain functions over the object.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/containerd/errdefs"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"

	"github.com/stacklok/dbcluster-console/internal/cache"
	"github.com/stacklok/dbcluster-console/internal/mutation"
	"github.com/stacklok/dbcluster-console/internal/resources/v1alpha1"
)

// Backend reads and writes one resource kind. Both the Kubernetes backend and the REST
// client implement it.
type Backend[T cache.Object[T]] interface {
	Get(ctx context.Context, key types.NamespacedName) (T, error)
	Update(ctx context.Context, obj T) (T, error)
}

// ValidateFunc checks a proposed change against the object it was made from.
type ValidateFunc[T any] func(old, updated T) error

type sessionOptions[T cache.Object[T]] struct {
	merger      mutation.Merger[T]
	validate    ValidateFunc[T]
	coordinator []mutation.Option
}

// Option configures Open.
type Option[T cache.Object[T]] func(*sessionOptions[T])

// WithMerger sets how server results are folded into the cached object.
func WithMerger[T cache.Object[T]](m mutation.Merger[T]) Option[T] {
	return func(o *sessionOptions[T]) {
		o.merger = m
	}
}

// WithValidation rejects changes before they are sent.
func WithValidation[T cache.Object[T]](fn ValidateFunc[T]) Option[T] {
	return func(o *sessionOptions[T]) {
		o.validate = fn
	}
}

// WithCoordinatorOptions passes opts to the underlying coordinator.
func WithCoordinatorOptions[T cache.Object[T]](opts ...mutation.Option) Option[T] {
	return func(o *sessionOptions[T]) {
		o.coordinator = append(o.coordinator, opts...)
	}
}

// Session edits a single object. It is safe for concurrent use, but only one Apply runs at
// a time; overlapping calls fail with mutation.ErrAttemptInFlight.
type Session[T cache.Object[T]] struct {
	key      types.NamespacedName
	coord    *mutation.Coordinator[T]
	store    *cache.Store[T]
	validate ValidateFunc[T]
}

// Open loads the current state of key from backend and prepares a session for it.
// When store is non-nil the loaded object and every successful result are written to it.
func Open[T cache.Object[T]](
	ctx context.Context,
	backend Backend[T],
	key types.NamespacedName,
	store *cache.Store[T],
	opts ...Option[T],
) (*Session[T], error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is required")
	}

	o := &sessionOptions[T]{}
	for _, opt := range opts {
		opt(o)
	}

	current, err := backend.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}

	collaborators := mutation.Collaborators[T]{
		Mutator: mutation.MutatorFunc[T](backend.Update),
		Refetcher: mutation.RefetcherFunc[T](func(ctx context.Context) (T, error) {
			return backend.Get(ctx, key)
		}),
		Merger: o.merger,
	}
	if store != nil {
		store.Upsert(current)
		collaborators.Cache = store.Entry(key)
	}

	coord, err := mutation.NewCoordinator(current, collaborators, o.coordinator...)
	if err != nil {
		return nil, err
	}

	slog.Debug("Opened edit session",
		"key", key.String(),
		"generation", current.GetGeneration(),
		"resource_version", current.GetResourceVersion(),
	)

	return &Session[T]{key: key, coord: coord, store: store, validate: o.validate}, nil
}

// Key returns the edited object's key.
func (s *Session[T]) Key() types.NamespacedName {
	return s.key
}

// Current returns a copy of the last known state of the object.
func (s *Session[T]) Current() T {
	return s.coord.Baseline()
}

// State returns the state of the underlying coordinator.
func (s *Session[T]) State() mutation.State {
	return s.coord.State()
}

// Apply runs change on a copy of the current object and writes the result.
// Spurious conflicts are retried; the returned error is one of the coordinator's terminal
// errors, a validation error or a backend error.
func (s *Session[T]) Apply(ctx context.Context, change func(T)) (T, error) {
	current := s.coord.Baseline()
	desired := current.DeepCopy()
	change(desired)

	if s.validate != nil {
		if err := s.validate(current, desired); err != nil {
			var zero T
			return zero, err
		}
	}

	return s.coord.Apply(ctx, desired)
}

// Reload refreshes the session from backend, discarding the previous baseline.
func (s *Session[T]) Reload(ctx context.Context, backend Backend[T]) error {
	current, err := backend.Get(ctx, s.key)
	if err != nil {
		return fmt.Errorf("failed to reload %s: %w", s.key, err)
	}
	if err := s.coord.Rebind(current); err != nil {
		return err
	}
	if s.store != nil {
		s.store.Upsert(current)
	}
	return nil
}

// Describe turns an Apply error into a message for the person who made the edit.
func Describe(err error) string {
	var (
		timeout   *mutation.ConflictTimeoutError
		divergent *mutation.GenerationDivergenceError
	)

	switch {
	case err == nil:
		return ""
	case !mutation.IsTerminalError(err):
		return describeFailure(err)
	case errors.As(err, &timeout):
		return fmt.Sprintf("%s. Try again in a moment.", timeout.Error())
	case errors.As(err, &divergent):
		return fmt.Sprintf("%s.", divergent.Error())
	default:
		return "Another change to this object is still being applied. Wait for it to finish."
	}
}

// describeFailure renders errors passed through from validation or the backend.
func describeFailure(err error) string {
	switch {
	case errors.Is(err, v1alpha1.ErrInvalid), errdefs.IsInvalidArgument(err), apierrors.IsInvalid(err):
		return fmt.Sprintf("The change was rejected: %s", err)
	case errdefs.IsNotFound(err), apierrors.IsNotFound(err):
		return "The object no longer exists."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "The edit was cancelled before it completed."
	default:
		return fmt.Sprintf("The change could not be applied: %s", err)
	}
}
