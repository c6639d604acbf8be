package tracer

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides *Tracer and registers a shutdown hook that flushes pending spans.
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    tracer.FXModule,
//	    fx.Provide(func() tracer.Config { return tracer.Config{ServiceName: "checkout"} }),
//	    fx.Provide(func(l *logger.LoggerClient) tracer.Logger { return l }),
//	)
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewClient,
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// RegisterTracerLifecycle registers shutdown hooks for the tracer with the FX lifecycle.
func RegisterTracerLifecycle(lc fx.Lifecycle, tracer *Tracer) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			tracer.logger.Info("shutting down tracer...", nil, nil)
			if tracer.tracer == nil {
				tracer.logger.Warn("tracer was nil during shutdown", nil, nil)
				return nil
			}
			return tracer.Shutdown(ctx)
		},
	})
}
