package mutation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/dbcluster-console/internal/otel"
)

// State is a step of the coordinator's state machine.
type State int

const (
	// StateIdle means no attempt has run yet.
	StateIdle State = iota
	// StateSubmitting means the Mutator is being called.
	StateSubmitting
	// StateConflictDetected means the Mutator reported a version conflict.
	StateConflictDetected
	// StateRefetching means the Refetcher is being called.
	StateRefetching
	// StateRebasing means the desired entity is taking the refetched resourceVersion.
	StateRebasing
	// StateSucceeded is terminal.
	StateSucceeded
	// StateAborted is terminal.
	StateAborted
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateSubmitting:
		return "Submitting"
	case StateConflictDetected:
		return "ConflictDetected"
	case StateRefetching:
		return "Refetching"
	case StateRebasing:
		return "Rebasing"
	case StateSucceeded:
		return "Succeeded"
	case StateAborted:
		return "Aborted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether s ends an attempt.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateAborted
}

// Outcome labels how an attempt ended.
type Outcome string

const (
	// OutcomeSucceeded means the change was stored.
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeConflictTimeout means conflicts outlasted the window.
	OutcomeConflictTimeout Outcome = "conflict_timeout"
	// OutcomeGenerationDivergence means the spec changed underneath the edit.
	OutcomeGenerationDivergence Outcome = "generation_divergence"
	// OutcomeFailed means a non-conflict collaborator error or a cancelled context.
	OutcomeFailed Outcome = "failed"
	// OutcomeRejected means Submit was called while another attempt was pending.
	OutcomeRejected Outcome = "rejected"
)

// attempt is the state of one Submit call. It is discarded at the terminal outcome.
type attempt[T Entity[T]] struct {
	id                 string
	desired            T
	baselineGeneration int64
	window             *ConflictWindow
	started            time.Time
	refetchedVersion   string
	mutateCalls        int
	refetchCalls       int
}

// Coordinator applies changes to one resource with optimistic concurrency.
// It is bound to a baseline entity, allows a single attempt at a time, and can be reused
// sequentially: after a success the merged entity becomes the new baseline.
type Coordinator[T Entity[T]] struct {
	mutator   Mutator[T]
	refetcher Refetcher[T]
	merger    Merger[T]
	cache     Cache[T]
	opts      *coordinatorOptions

	inFlight atomic.Bool

	mu       sync.Mutex
	baseline T
	state    State
}

// NewCoordinator creates a coordinator for baseline. Mutator and Refetcher are required.
func NewCoordinator[T Entity[T]](baseline T, collaborators Collaborators[T], opts ...Option) (*Coordinator[T], error) {
	if collaborators.Mutator == nil {
		return nil, fmt.Errorf("mutator is required")
	}
	if collaborators.Refetcher == nil {
		return nil, fmt.Errorf("refetcher is required")
	}

	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	merger := collaborators.Merger
	if merger == nil {
		merger = ReplaceMerger[T]{}
	}

	return &Coordinator[T]{
		mutator:   collaborators.Mutator,
		refetcher: collaborators.Refetcher,
		merger:    merger,
		cache:     collaborators.Cache,
		opts:      o,
		baseline:  baseline.DeepCopy(),
		state:     StateIdle,
	}, nil
}

// Baseline returns a copy of the entity the next Submit is made against.
func (c *Coordinator[T]) Baseline() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseline.DeepCopy()
}

// Rebind replaces the baseline, e.g. after a GenerationDivergenceError once the caller has
// reloaded the resource. It fails while an attempt is pending.
func (c *Coordinator[T]) Rebind(baseline T) error {
	if !c.inFlight.CompareAndSwap(false, true) {
		return ErrAttemptInFlight
	}
	defer c.inFlight.Store(false)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseline = baseline.DeepCopy()
	c.state = StateIdle
	return nil
}

// State returns the current or last state of the state machine.
func (c *Coordinator[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit applies desired and invokes exactly one of onSuccess or onError exactly once.
// Either continuation may be nil. Submit blocks until the attempt ends; callers that need
// it asynchronous run it on their own goroutine.
//
// A Submit made while another one is pending is rejected with ErrAttemptInFlight without
// touching the backend or the pending attempt.
func (c *Coordinator[T]) Submit(ctx context.Context, desired T, onSuccess func(T), onError func(error)) {
	if !c.inFlight.CompareAndSwap(false, true) {
		c.opts.logger.WarnContext(ctx, "Rejected overlapping mutation",
			"kind", c.opts.kind,
			"name", c.opts.name,
		)
		c.opts.metrics.RecordOutcome(ctx, c.opts.kind, string(OutcomeRejected), 0)
		if onError != nil {
			onError(ErrAttemptInFlight)
		}
		return
	}

	result, err := c.run(ctx, desired)

	// Released before the continuation so it may chain another Submit.
	c.inFlight.Store(false)

	if err != nil {
		if onError != nil {
			onError(err)
		}
		return
	}
	if onSuccess != nil {
		onSuccess(result)
	}
}

// Apply is the blocking form of Submit.
func (c *Coordinator[T]) Apply(ctx context.Context, desired T) (T, error) {
	var (
		result T
		err    error
	)
	c.Submit(ctx, desired,
		func(merged T) { result = merged },
		func(e error) { err = e },
	)
	return result, err
}

func (c *Coordinator[T]) run(ctx context.Context, desired T) (T, error) {
	baseline := c.Baseline()

	a := &attempt[T]{
		id:                 uuid.NewString(),
		desired:            desired.DeepCopy(),
		baselineGeneration: baseline.GetGeneration(),
		window:             NewConflictWindow(c.opts.clock),
		started:            c.opts.clock.Now(),
	}
	if a.desired.GetResourceVersion() == "" {
		a.desired.SetResourceVersion(baseline.GetResourceVersion())
	}

	ctx, span := otel.StartSpan(ctx, c.opts.tracer, "mutation.Submit",
		trace.WithAttributes(
			otel.AttrResourceKind.String(c.opts.kind),
			otel.AttrResourceName.String(c.opts.name),
			otel.AttrAttemptID.String(a.id),
			otel.AttrBaselineGeneration.Int64(a.baselineGeneration),
		),
	)
	defer span.End()

	logger := c.opts.logger.With(
		"attempt_id", a.id,
		"kind", c.opts.kind,
		"name", c.opts.name,
	)

	state := StateSubmitting
	for {
		c.transition(state)

		switch state {
		case StateSubmitting:
			a.mutateCalls++
			result, err := c.mutator.Mutate(ctx, a.desired.DeepCopy())
			if err == nil {
				merged := c.storeSuccess(result)
				a.window.Reset()
				c.transition(StateSucceeded)
				c.record(ctx, span, a, OutcomeSucceeded, nil)
				logger.DebugContext(ctx, "Mutation succeeded",
					"resource_version", merged.GetResourceVersion(),
					"mutate_calls", a.mutateCalls,
					"refetch_calls", a.refetchCalls,
				)
				return merged, nil
			}
			if !IsConflict(err) {
				logger.InfoContext(ctx, "Mutation failed", "error", err)
				return c.abort(ctx, span, a, OutcomeFailed, err)
			}
			state = StateConflictDetected

		case StateConflictDetected:
			a.window.Start()
			c.opts.metrics.RecordConflict(ctx, c.opts.kind)
			if elapsed := a.window.Elapsed(); elapsed > c.opts.maxWindow {
				logger.InfoContext(ctx, "Conflict window exceeded",
					"elapsed", elapsed,
					"max_window", c.opts.maxWindow,
					"mutate_calls", a.mutateCalls,
				)
				return c.abort(ctx, span, a, OutcomeConflictTimeout, &ConflictTimeoutError{
					Elapsed:   elapsed,
					MaxWindow: c.opts.maxWindow,
					Attempts:  a.mutateCalls,
				})
			}
			logger.DebugContext(ctx, "Version conflict, refetching",
				"resource_version", a.desired.GetResourceVersion(),
				"retry_delay", c.opts.retryDelay,
			)
			span.AddEvent("conflict")
			if err := c.wait(ctx); err != nil {
				return c.abort(ctx, span, a, OutcomeFailed, err)
			}
			state = StateRefetching

		case StateRefetching:
			a.refetchCalls++
			latest, err := c.refetcher.Refetch(ctx)
			if err != nil {
				logger.InfoContext(ctx, "Refetch failed", "error", err)
				return c.abort(ctx, span, a, OutcomeFailed, err)
			}
			if current := latest.GetGeneration(); current != a.baselineGeneration {
				logger.InfoContext(ctx, "Generation diverged",
					"baseline_generation", a.baselineGeneration,
					"current_generation", current,
				)
				return c.abort(ctx, span, a, OutcomeGenerationDivergence, &GenerationDivergenceError{
					Baseline: a.baselineGeneration,
					Current:  current,
				})
			}
			a.refetchedVersion = latest.GetResourceVersion()
			state = StateRebasing

		case StateRebasing:
			logger.DebugContext(ctx, "Rebasing onto latest resource version",
				"from", a.desired.GetResourceVersion(),
				"to", a.refetchedVersion,
			)
			a.desired.SetResourceVersion(a.refetchedVersion)
			c.opts.metrics.RecordRebase(ctx, c.opts.kind)
			span.AddEvent("rebase")
			state = StateSubmitting

		default:
			// Unreachable: terminal states return above.
			return c.abort(ctx, span, a, OutcomeFailed, fmt.Errorf("unexpected state %s", state))
		}
	}
}

// storeSuccess merges the server result into the cache and makes it the new baseline.
func (c *Coordinator[T]) storeSuccess(server T) T {
	cached := c.Baseline()
	if c.cache != nil {
		if entity, ok := c.cache.Cached(); ok {
			cached = entity
		}
	}

	merged := c.merger.Merge(cached, server)
	if c.cache != nil {
		c.cache.Store(merged.DeepCopy())
	}

	c.mu.Lock()
	c.baseline = merged.DeepCopy()
	c.mu.Unlock()

	return merged
}

func (c *Coordinator[T]) abort(ctx context.Context, span trace.Span, a *attempt[T], outcome Outcome, err error) (T, error) {
	var zero T
	a.window.Reset()
	c.transition(StateAborted)
	c.record(ctx, span, a, outcome, err)
	return zero, err
}

func (c *Coordinator[T]) record(ctx context.Context, span trace.Span, a *attempt[T], outcome Outcome, err error) {
	span.SetAttributes(
		otel.AttrMutationOutcome.String(string(outcome)),
		attribute.Int("mutation.mutate_calls", a.mutateCalls),
		attribute.Int("mutation.refetch_calls", a.refetchCalls),
	)
	otel.RecordError(span, err)
	c.opts.metrics.RecordOutcome(ctx, c.opts.kind, string(outcome), c.opts.clock.Since(a.started))
}

// wait blocks for the retry delay or until ctx is done.
func (c *Coordinator[T]) wait(ctx context.Context) error {
	if c.opts.retryDelay == 0 {
		return ctx.Err()
	}

	timer := c.opts.clock.NewTimer(c.opts.retryDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C():
		return nil
	}
}

func (c *Coordinator[T]) transition(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()

	if c.opts.observer != nil {
		c.opts.observer(s)
	}
}

// IsTerminalError reports whether err came out of a coordinator as one of the typed
// terminal outcomes rather than a passed-through collaborator failure.
func IsTerminalError(err error) bool {
	return errors.Is(err, ErrConflictTimeout) ||
		errors.Is(err, ErrGenerationDivergence) ||
		errors.Is(err, ErrAttemptInFlight)
}
