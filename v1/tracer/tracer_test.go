package tracer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Aleph-Alpha/peek/v1/logger"
)

func newRecordingTracer() (*Tracer, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return NewClientWithProvider(tp, logger.NewNop()), recorder
}

func TestStartSpanAndAttributes(t *testing.T) {
	tr, recorder := newRecordingTracer()

	ctx, span := tr.StartSpan(context.Background(), "peek.results")
	tr.SetAttributes(span, map[string]interface{}{
		"peek.request_id": "req-1",
		"peek.views":      2,
		"peek.ratio":      0.5,
		"peek.enabled":    true,
		"peek.other":      []string{"a"},
	})
	assert.NotEmpty(t, TraceID(ctx))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "peek.results", ended[0].Name())

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range ended[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "req-1", attrs["peek.request_id"].AsString())
	assert.Equal(t, int64(2), attrs["peek.views"].AsInt64())
	assert.Equal(t, true, attrs["peek.enabled"].AsBool())
	assert.Equal(t, "[a]", attrs["peek.other"].AsString())
}

func TestRecordErrorOnSpan(t *testing.T) {
	tr, recorder := newRecordingTracer()

	_, span := tr.StartSpan(context.Background(), "op")
	tr.RecordErrorOnSpan(span, errors.New("boom"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "boom", ended[0].Status().Description)
}

func TestCarrierRoundTrip(t *testing.T) {
	tr, _ := newRecordingTracer()

	ctx, span := tr.StartSpan(context.Background(), "outgoing")
	defer span.End()

	carrier := tr.GetCarrier(ctx)
	require.Contains(t, carrier, "traceparent")

	incoming := tr.SetCarrierOnContext(context.Background(), carrier)
	assert.Equal(t, TraceID(ctx), TraceID(incoming))
}

func TestTraceIDWithoutSpan(t *testing.T) {
	assert.Equal(t, "", TraceID(context.Background()))
}
