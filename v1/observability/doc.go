// Package observability provides a unified interface for observing operations
// across the peek packages.
//
// # Overview
//
// The observability package defines a single Observer interface that the core
// registry, the storage adapters and the infrastructure clients (redis, database)
// use to emit operation events. Applications implement the interface to turn those
// events into metrics, traces or logs.
//
// # Design Philosophy
//
// 1. **Optional**: every package works without an observer
// 2. **Unified**: the same event shape for the core and for every adapter
// 3. **Non-intrusive**: a nil observer costs a single nil check
//
// # Usage in Packages
//
//	func (r *RedisClient) observeOperation(operation, resource string, duration time.Duration, err error) {
//	    if r.observer == nil {
//	        return
//	    }
//	    r.observer.ObserveOperation(observability.OperationContext{
//	        Component: "redis",
//	        Operation: operation,
//	        Resource:  resource,
//	        Duration:  duration,
//	        Error:     err,
//	    })
//	}
//
// # Usage in Applications
//
// The v1/metrics package ships a Prometheus backed implementation:
//
//	m := metrics.NewMetrics(metrics.Config{ServiceName: "checkout"})
//	p := peek.New(cfg, peek.WithObserver(m))
//
// # Thread Safety
//
// Observer implementations must be safe for concurrent use; events are emitted
// from request goroutines.
package observability
