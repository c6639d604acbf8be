package metrics

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/peek/v1/logger"
	"github.com/Aleph-Alpha/peek/v1/observability"
)

// FXModule defines the Fx module for the metrics package.
// It provides *Metrics, exposes it as MetricsCollector and observability.Observer,
// and manages the /metrics server lifecycle.
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    metrics.FXModule,
//	    fx.Provide(func() metrics.Config {
//	        return metrics.Config{Address: ":9090", ServiceName: "checkout"}
//	    }),
//	)
//
// Dependencies required by this module:
// - A metrics.Config instance
// - A logger.Logger instance
var FXModule = fx.Module("metrics",
	fx.Provide(
		NewMetrics,
		func(m *Metrics) MetricsCollector { return m },
		func(m *Metrics) observability.Observer { return m },
	),
	fx.Invoke(RegisterMetricsLifecycle),
)

// RegisterMetricsLifecycle manages the startup and shutdown lifecycle
// of the Prometheus metrics HTTP server.
//
// The lifecycle hook:
//   - OnStart: Launches the Prometheus HTTP server in a background goroutine.
//   - OnStop: Gracefully shuts down the metrics server.
func RegisterMetricsLifecycle(lc fx.Lifecycle, m *Metrics, log logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("Starting Prometheus metrics server", nil, map[string]interface{}{
					"address": m.Server.Addr,
				})

				if err := m.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("Error starting Prometheus metrics server", err, nil)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down Prometheus metrics server", nil, nil)
			return m.Server.Shutdown(ctx)
		},
	})
}
