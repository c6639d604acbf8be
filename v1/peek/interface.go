package peek

import "context"

//go:generate mockgen -source=interface.go -destination=mock_interface.go -package=peek

// Logger is the subset of v1/logger.Logger used by peek.
type Logger interface {
	Debug(msg string, err error, fields ...map[string]interface{})
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// View is a probe that reports on one aspect of a request.
//
// A fresh View is built from its registered factory for every aggregation
// cycle, so implementations may keep per-cycle state without locking.
type View interface {
	// Key names the bucket the view's results are stored under.
	Key() string

	// Enabled decides whether the view takes part in the current cycle.
	Enabled(ctx context.Context) bool

	// HasContext reports whether Context should be included in the results.
	HasContext() bool

	// Context returns metadata describing the view's measurements.
	Context(ctx context.Context) (any, error)

	// Results returns the view's measurements keyed by metric name.
	Results(ctx context.Context) (map[string]any, error)
}

// ViewFactory builds a View from its registration options. The options are a
// private copy; the factory may keep or mutate them freely.
type ViewFactory func(opts Options) (View, error)
