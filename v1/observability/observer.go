package observability

import "time"

// Observer receives operation events from instrumented packages.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// OperationContext describes one completed operation.
type OperationContext struct {
	// Component is the emitting package, e.g. "peek", "redis", "database".
	Component string

	// Operation is the action performed, e.g. "results", "save", "hgetall".
	Operation string

	// Resource is the primary target of the operation (a key, a request id, a table).
	Resource string

	// SubResource carries secondary detail such as a hash field or adapter name.
	SubResource string

	Duration time.Duration

	// Error is nil for successful operations.
	Error error

	// Size is an operation-specific magnitude (bytes, rows, views).
	Size int64

	Metadata map[string]interface{}
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(ctx OperationContext)

// ObserveOperation calls f(ctx).
func (f ObserverFunc) ObserveOperation(ctx OperationContext) {
	f(ctx)
}

// Status reports "success" or "error" for the operation, the label value used
// by the metrics package.
func (o OperationContext) Status() string {
	if o.Error != nil {
		return "error"
	}
	return "success"
}
