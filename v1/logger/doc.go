// Package logger provides structured logging for the peek packages.
//
// The logger is a thin wrapper around Uber's zap that standardises the call
// shape used everywhere in this module: a message, an optional error and any
// number of field maps.
//
// # Architecture
//
// This package follows the "accept interfaces, return structs" design pattern:
//   - Logger interface: the contract consumed by other packages
//   - LoggerClient struct: the zap backed implementation
//   - NewLoggerClient constructor: returns *LoggerClient
//   - FXModule: provides *LoggerClient and the Logger interface
//
// # Direct Usage (Without FX)
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:       logger.Info,
//		ServiceName: "checkout",
//	})
//
//	log.Info("view registered", nil, map[string]interface{}{
//		"key": "db",
//	})
//
// # Request-Aware Logging
//
// The *WithContext variants add the request identifier carried by the context
// (see v1/requestctx) as "request_id". When tracing is enabled they also add
// "trace_id" and "span_id" from the active OpenTelemetry span:
//
//	log.InfoWithContext(ctx, "results aggregated", nil, map[string]interface{}{
//		"views": 3,
//	})
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule,
//		fx.Provide(func() logger.Config {
//			return logger.Config{Level: logger.Debug, ServiceName: "checkout"}
//		}),
//	)
//
// # Configuration
//
//	ZAP_LOGGER_LEVEL=debug          # debug, info, warning, error
//	LOGGER_ENABLE_TRACING=true      # add trace_id/span_id to *WithContext entries
//	LOGGER_SERVICE_NAME=checkout    # "service" field on every entry
//
// # Thread Safety
//
// All methods are safe for concurrent use by multiple goroutines.
package logger
