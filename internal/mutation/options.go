package mutation

import (
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
	"k8s.io/utils/clock"

	"github.com/stacklok/dbcluster-console/internal/telemetry"
)

// Option configures a Coordinator.
type Option func(*coordinatorOptions) error

type coordinatorOptions struct {
	maxWindow  time.Duration
	retryDelay time.Duration
	clock      clock.Clock
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    *telemetry.MutationMetrics
	kind       string
	name       string
	observer   func(State)
}

func defaultOptions() *coordinatorOptions {
	return &coordinatorOptions{
		maxWindow:  DefaultMaxWindow,
		retryDelay: DefaultRetryDelay,
		clock:      clock.RealClock{},
		logger:     slog.Default(),
		kind:       "unknown",
	}
}

// WithMaxWindow bounds how long conflicts may persist after the first one.
func WithMaxWindow(d time.Duration) Option {
	return func(o *coordinatorOptions) error {
		if d <= 0 {
			return fmt.Errorf("max window must be greater than 0, got %s", d)
		}
		o.maxWindow = d
		return nil
	}
}

// WithRetryDelay sets the fixed wait between a conflict and the refetch.
// Zero disables the wait.
func WithRetryDelay(d time.Duration) Option {
	return func(o *coordinatorOptions) error {
		if d < 0 {
			return fmt.Errorf("retry delay cannot be negative, got %s", d)
		}
		o.retryDelay = d
		return nil
	}
}

// WithClock replaces the real clock, mostly for tests.
func WithClock(c clock.Clock) Option {
	return func(o *coordinatorOptions) error {
		if c == nil {
			return fmt.Errorf("clock is required")
		}
		o.clock = c
		return nil
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *coordinatorOptions) error {
		if l == nil {
			return fmt.Errorf("logger is required")
		}
		o.logger = l
		return nil
	}
}

// WithTracer enables a span per Submit call.
func WithTracer(t trace.Tracer) Option {
	return func(o *coordinatorOptions) error {
		o.tracer = t
		return nil
	}
}

// WithMetrics records conflicts, rebases and outcomes. A nil value disables metrics.
func WithMetrics(m *telemetry.MutationMetrics) Option {
	return func(o *coordinatorOptions) error {
		o.metrics = m
		return nil
	}
}

// WithResource labels logs, spans and metrics with the resource kind and name.
func WithResource(kind, name string) Option {
	return func(o *coordinatorOptions) error {
		if kind == "" {
			return fmt.Errorf("resource kind cannot be empty")
		}
		o.kind = kind
		o.name = name
		return nil
	}
}

// WithStateObserver registers a callback invoked on every state transition.
// It runs on the submitting goroutine and must not call back into the coordinator.
func WithStateObserver(fn func(State)) Option {
	return func(o *coordinatorOptions) error {
		o.observer = fn
		return nil
	}
}
