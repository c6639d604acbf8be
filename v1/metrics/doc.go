// Package metrics provides Prometheus-based monitoring for peek.
//
// The package turns observability events emitted by the peek registry, the
// storage adapters and the infrastructure clients into Prometheus metrics and
// serves them on a /metrics endpoint.
//
// # Architecture
//
// This package follows the "accept interfaces, return structs" design pattern:
//   - MetricsCollector interface: Defines the contract for metrics operations
//   - Metrics struct: Concrete implementation of MetricsCollector and observability.Observer
//   - NewMetrics constructor: Returns *Metrics (concrete type)
//   - FX module: Provides *Metrics, MetricsCollector and observability.Observer
//
// Exposed metrics (namespace "peek" unless configured otherwise):
//   - peek_operations_total{component,operation,status}
//   - peek_operation_duration_seconds{component,operation}
//   - peek_views_enabled
//
// # Direct Usage (Without FX)
//
//	m := metrics.NewMetrics(metrics.Config{
//		Address:                 ":9090",
//		EnableDefaultCollectors: true,
//		ServiceName:             "checkout",
//	})
//	go m.Server.ListenAndServe()
//
//	p := peek.New(peekCfg, peek.WithObserver(m))
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule,
//		metrics.FXModule,
//		peek.FXModule, // picks up the observability.Observer provided here
//		fx.Provide(func() metrics.Config {
//			return metrics.Config{Address: ":9090", ServiceName: "checkout"}
//		}),
//	)
//
// # Configuration
//
//	METRICS_ADDRESS=:9090                      # Port and address for /metrics endpoint
//	METRICS_ENABLE_DEFAULT_COLLECTORS=true     # Enable runtime and process metrics
//	METRICS_NAMESPACE=peek                     # Prefix for all metric names
//	METRICS_SERVICE_NAME=checkout              # Adds service label to all metrics
//
// # Thread Safety
//
// All methods on the Metrics struct are safe for concurrent use by multiple
// goroutines.
package metrics
