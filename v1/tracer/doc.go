// Package tracer provides distributed tracing for peek using OpenTelemetry.
//
// The Tracer wraps an SDK TracerProvider and exposes the small surface peek
// needs: StartSpan, SetAttributes and RecordErrorOnSpan, plus the W3C carrier
// helpers for crossing service boundaries.
//
// # Direct Usage
//
//	t := tracer.NewClient(tracer.Config{
//		ServiceName:  "checkout",
//		AppEnv:       "staging",
//		EnableExport: true,
//	}, log)
//	defer t.Shutdown(context.Background())
//
//	p := peek.New(cfg, peek.WithTracer(t))
//
// # Configuration
//
//	TRACER_SERVICE_NAME=checkout
//	APP_ENV=staging
//	TRACER_ENABLE_EXPORT=true
//	OTEL_EXPORTER_OTLP_ENDPOINT=http://collector:4318
package tracer
