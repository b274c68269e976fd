// Package otel holds the span helpers and attribute keys shared by the console's
// instrumented packages.
package otel

import (
	"context"

	"github.com/containerd/errdefs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// Attribute keys used on console spans.
const (
	AttrResourceKind       = attribute.Key("resource.kind")
	AttrResourceName       = attribute.Key("resource.name")
	AttrResourceNamespace  = attribute.Key("resource.namespace")
	AttrResourceVersion    = attribute.Key("resource.version")
	AttrAttemptID          = attribute.Key("mutation.attempt_id")
	AttrBaselineGeneration = attribute.Key("mutation.baseline_generation")
	AttrMutationOutcome    = attribute.Key("mutation.outcome")
	AttrResultCount        = attribute.Key("result.count")
)

// ObjectAttributes identifies one object on a span. Empty values are omitted.
func ObjectAttributes(kind, namespace, name string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if kind != "" {
		attrs = append(attrs, AttrResourceKind.String(kind))
	}
	if namespace != "" {
		attrs = append(attrs, AttrResourceNamespace.String(namespace))
	}
	if name != "" {
		attrs = append(attrs, AttrResourceName.String(name))
	}
	return attrs
}

// StartSpan starts a span on tracer. With a nil tracer it returns ctx unchanged and a
// no-op span, so ending or annotating it never touches the caller's span.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, noop.Span{}
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError records err on span and marks the span failed. Version conflicts are
// recorded as a "conflict" event and leave the status alone: losing an optimistic write
// is an outcome, not a failure.
//
// The status description is fixed so that URLs and request bodies carried by errors
// only reach the exception event.
func RecordError(span trace.Span, err error) {
	if err == nil || span == nil {
		return
	}
	if IsVersionConflict(err) {
		span.AddEvent("conflict", trace.WithAttributes(attribute.String("error", err.Error())))
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "operation failed")
}

// IsVersionConflict reports whether err is a stale-resourceVersion rejection from the
// Kubernetes API or the console API.
func IsVersionConflict(err error) bool {
	return apierrors.IsConflict(err) || errdefs.IsConflict(err)
}
