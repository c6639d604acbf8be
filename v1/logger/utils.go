package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Aleph-Alpha/peek/v1/requestctx"
)

// convertToZapFields converts error and additional field maps into Zap's structured logging fields.
// If multiple field maps contain the same key, the later maps override earlier ones.
func (l *LoggerClient) convertToZapFields(err error, fields ...map[string]interface{}) []zap.Field {
	var zapFields []zap.Field
	if err != nil {
		zapFields = append(zapFields, zap.Error(err))
	}

	for _, fieldMap := range fields {
		for key, value := range fieldMap {
			zapFields = append(zapFields, zap.Any(key, value))
		}
	}
	return zapFields
}

// contextFields extracts request_id and, when tracing is enabled, trace_id and span_id.
func (l *LoggerClient) contextFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}

	var fields []zap.Field
	if id := requestctx.ID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}

	if l.tracingEnabled {
		spanCtx := trace.SpanContextFromContext(ctx)
		if spanCtx.HasTraceID() {
			fields = append(fields, zap.String("trace_id", spanCtx.TraceID().String()))
		}
		if spanCtx.HasSpanID() {
			fields = append(fields, zap.String("span_id", spanCtx.SpanID().String()))
		}
	}
	return fields
}

// Info logs an informational message, along with an optional error and structured fields.
//
// Example:
//
//	logger.Info("adapter configured", nil, map[string]interface{}{
//	    "adapter": "redis",
//	})
func (l *LoggerClient) Info(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Info(msg, l.convertToZapFields(err, fields...)...)
}

// Debug logs a debug-level message.
func (l *LoggerClient) Debug(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Debug(msg, l.convertToZapFields(err, fields...)...)
}

// Warn logs a warning message, indicating potential issues that aren't necessarily errors.
func (l *LoggerClient) Warn(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Warn(msg, l.convertToZapFields(err, fields...)...)
}

// Error logs an error message, including details of the error and additional context fields.
//
// Example:
//
//	if err := adapter.Save(ctx, id, "db.time_ms", 12); err != nil {
//	    logger.Error("failed to record measurement", err, map[string]interface{}{
//	        "key": "db.time_ms",
//	    })
//	}
func (l *LoggerClient) Error(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Error(msg, l.convertToZapFields(err, fields...)...)
}

// Fatal logs a critical error message and terminates the application with os.Exit(1).
func (l *LoggerClient) Fatal(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Fatal(msg, l.convertToZapFields(err, fields...)...)
}

// DebugWithContext logs at debug level with request and trace fields from ctx.
func (l *LoggerClient) DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Debug(msg, append(l.contextFields(ctx), l.convertToZapFields(err, fields...)...)...)
}

// InfoWithContext logs at info level with request and trace fields from ctx.
func (l *LoggerClient) InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Info(msg, append(l.contextFields(ctx), l.convertToZapFields(err, fields...)...)...)
}

// WarnWithContext logs at warn level with request and trace fields from ctx.
func (l *LoggerClient) WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Warn(msg, append(l.contextFields(ctx), l.convertToZapFields(err, fields...)...)...)
}

// ErrorWithContext logs at error level with request and trace fields from ctx.
func (l *LoggerClient) ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Error(msg, append(l.contextFields(ctx), l.convertToZapFields(err, fields...)...)...)
}
