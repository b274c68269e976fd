// Package telemetry provides OpenTelemetry instrumentation for the console.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// MutationMetricsMeterName is the name used for the mutation metrics meter
	MutationMetricsMeterName = "github.com/stacklok/dbcluster-console/mutation"

	// CacheMetricsMeterName is the name used for the watcher cache metrics meter
	CacheMetricsMeterName = "github.com/stacklok/dbcluster-console/cache"
)

// MutationMetrics holds the OpenTelemetry instruments for optimistic mutations
type MutationMetrics struct {
	conflicts       metric.Int64Counter
	rebases         metric.Int64Counter
	outcomes        metric.Int64Counter
	attemptDuration metric.Float64Histogram
}

// NewMutationMetrics creates a new MutationMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewMutationMetrics(provider metric.MeterProvider) (*MutationMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(MutationMetricsMeterName)

	conflicts, err := meter.Int64Counter(
		"dbcc_mutation_conflicts_total",
		metric.WithDescription("Number of version conflicts reported by the backend"),
		metric.WithUnit("{conflict}"),
	)
	if err != nil {
		return nil, err
	}

	rebases, err := meter.Int64Counter(
		"dbcc_mutation_rebases_total",
		metric.WithDescription("Number of times a change was rebased onto a newer resource version"),
		metric.WithUnit("{rebase}"),
	)
	if err != nil {
		return nil, err
	}

	outcomes, err := meter.Int64Counter(
		"dbcc_mutation_outcomes_total",
		metric.WithDescription("Number of finished mutation attempts by outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	attemptDuration, err := meter.Float64Histogram(
		"dbcc_mutation_attempt_duration_seconds",
		metric.WithDescription("Duration of mutation attempts in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	return &MutationMetrics{
		conflicts:       conflicts,
		rebases:         rebases,
		outcomes:        outcomes,
		attemptDuration: attemptDuration,
	}, nil
}

// RecordConflict counts a conflict for a resource kind
func (m *MutationMetrics) RecordConflict(ctx context.Context, kind string) {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordRebase counts a rebase for a resource kind
func (m *MutationMetrics) RecordRebase(ctx context.Context, kind string) {
	if m == nil || m.rebases == nil {
		return
	}
	m.rebases.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordOutcome records how an attempt ended and how long it took
func (m *MutationMetrics) RecordOutcome(ctx context.Context, kind, outcome string, duration time.Duration) {
	if m == nil || m.outcomes == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	)

	m.outcomes.Add(ctx, 1, attrs)
	if m.attemptDuration != nil {
		m.attemptDuration.Record(ctx, duration.Seconds(), attrs)
	}
}

// CacheMetrics holds the OpenTelemetry instruments for the watcher cache
type CacheMetrics struct {
	entries metric.Int64Gauge
}

// NewCacheMetrics creates a new CacheMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewCacheMetrics(provider metric.MeterProvider) (*CacheMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(CacheMetricsMeterName)

	entries, err := meter.Int64Gauge(
		"dbcc_cache_entries",
		metric.WithDescription("Number of objects held in the watcher cache"),
		metric.WithUnit("{object}"),
	)
	if err != nil {
		return nil, err
	}

	return &CacheMetrics{
		entries: entries,
	}, nil
}

// RecordEntries records the current number of cached objects of a kind
func (m *CacheMetrics) RecordEntries(ctx context.Context, kind string, count int64) {
	if m == nil || m.entries == nil {
		return
	}
	m.entries.Record(ctx, count, metric.WithAttributes(attribute.String("kind", kind)))
}
