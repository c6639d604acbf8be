package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	traceSpan "go.opentelemetry.io/otel/trace"
)

// RecordErrorOnSpan records an error on a span and sets its status to error.
//
// Example:
//
//	ctx, span := tracer.StartSpan(ctx, "peek.results")
//	defer span.End()
//
//	if err != nil {
//	    tracer.RecordErrorOnSpan(span, err)
//	    return nil, err
//	}
func (t *Tracer) RecordErrorOnSpan(span traceSpan.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// StartSpan creates a new span with the given name and returns an updated context
// containing the span, along with the span itself. The span becomes a child of
// any span already present in ctx.
func (t *Tracer) StartSpan(ctx context.Context, name string) (context.Context, traceSpan.Span) {
	tracer := t.tracer.Tracer("github.com/Aleph-Alpha/peek")
	ctx, span := tracer.Start(ctx, name)
	return ctx, span
}

// SetAttributes adds attributes to a span. Strings, ints, int64s, float64s and
// bools keep their type; other values are converted with fmt.Sprint.
//
// Example:
//
//	tracer.SetAttributes(span, map[string]interface{}{
//	    "peek.request_id": id,
//	    "peek.views":      3,
//	})
func (t *Tracer) SetAttributes(span traceSpan.Span, attrs map[string]interface{}) {
	if len(attrs) == 0 {
		return
	}

	attributes := make([]attribute.KeyValue, 0, len(attrs))

	for k, v := range attrs {
		switch val := v.(type) {
		case string:
			attributes = append(attributes, attribute.String(k, val))
		case int:
			attributes = append(attributes, attribute.Int(k, val))
		case int64:
			attributes = append(attributes, attribute.Int64(k, val))
		case float64:
			attributes = append(attributes, attribute.Float64(k, val))
		case bool:
			attributes = append(attributes, attribute.Bool(k, val))
		default:
			attributes = append(attributes, attribute.String(k, fmt.Sprint(val)))
		}
	}

	span.SetAttributes(attributes...)
}

// GetCarrier extracts the W3C trace context of ctx into a map suitable for
// outgoing headers ("traceparent", "tracestate").
func (t *Tracer) GetCarrier(ctx context.Context) map[string]string {
	propagator := propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
	carrier := propagation.MapCarrier{}
	propagator.Inject(ctx, carrier)
	return carrier
}

// SetCarrierOnContext injects trace information from carrier into ctx.
// It is the complement of GetCarrier, used on incoming requests.
func (t *Tracer) SetCarrierOnContext(ctx context.Context, carrier map[string]string) context.Context {
	propagator := propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
	return propagator.Extract(ctx, propagation.MapCarrier(carrier))
}

// TraceID returns the hex trace id of the span active in ctx, or "" when ctx
// carries no valid span.
func TraceID(ctx context.Context) string {
	spanCtx := traceSpan.SpanContextFromContext(ctx)
	if !spanCtx.HasTraceID() {
		return ""
	}
	return spanCtx.TraceID().String()
}
