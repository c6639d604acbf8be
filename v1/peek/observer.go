package peek

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/Aleph-Alpha/peek/v1/observability"
)

// Tracer is the subset of v1/tracer.Tracer used to trace aggregation.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, trace.Span)
	SetAttributes(span trace.Span, attrs map[string]interface{})
	RecordErrorOnSpan(span trace.Span, err error)
}

// observeOperation notifies the observer about an operation if one is configured.
func (p *Peek) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64, metadata map[string]interface{}) {
	if p == nil || p.observer == nil {
		return
	}

	p.observer.ObserveOperation(observability.OperationContext{
		Component:   "peek",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Size:        size,
		Metadata:    metadata,
	})
}

// startSpan opens a span when a tracer is configured. The returned finish
// function records err on the span and ends it.
func (p *Peek) startSpan(ctx context.Context, name string, attrs map[string]interface{}) (context.Context, func(err error)) {
	if p.tracer == nil {
		return ctx, func(error) {}
	}
	ctx, span := p.tracer.StartSpan(ctx, name)
	if len(attrs) > 0 {
		p.tracer.SetAttributes(span, attrs)
	}
	return ctx, func(err error) {
		if err != nil {
			p.tracer.RecordErrorOnSpan(span, err)
		}
		span.End()
	}
}
