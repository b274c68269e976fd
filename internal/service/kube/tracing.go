package kube

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/dbcluster-console/internal/otel"
)

const (
	// ServiceTracerName is the name used for the Kubernetes service tracer
	ServiceTracerName = "github.com/stacklok/dbcluster-console/service/kube"
)

func (r *resource[T]) startSpan(
	ctx context.Context,
	op string,
	namespace string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	opts = append([]trace.SpanStartOption{
		trace.WithAttributes(otel.ObjectAttributes(r.backend.Kind(), namespace, "")...),
	}, opts...)
	return otel.StartSpan(ctx, r.tracer, "kube."+op+r.backend.Kind(), opts...)
}
