package logger

import (
	"context"

	"go.uber.org/fx"
)

// FXModule defines the Fx module for the logger package.
// It provides *LoggerClient, exposes it as the Logger interface and registers
// a shutdown hook that flushes buffered entries.
//
// Dependencies required by this module:
// - A logger.Config instance must be available in the dependency injection container
var FXModule = fx.Module("logger",
	fx.Provide(
		NewLoggerClient,
		func(client *LoggerClient) Logger { return client },
	),
	fx.Invoke(RegisterLoggerLifecycle),
)

// RegisterLoggerLifecycle handles cleanup (sync) of the Zap logger.
func RegisterLoggerLifecycle(lc fx.Lifecycle, client *LoggerClient) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = client.Zap.Sync() // stderr sync returns EINVAL on some platforms
			return nil
		},
	})
}
