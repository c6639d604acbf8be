package peek

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/peek/v1/logger"
)

// staticView reports fixed context and results.
type staticView struct {
	BaseView
	hasContext bool
	context    any
	results    map[string]any
}

func (v *staticView) HasContext() bool { return v.hasContext }

func (v *staticView) Context(context.Context) (any, error) { return v.context, nil }

func (v *staticView) Results(context.Context) (map[string]any, error) {
	out := make(map[string]any, len(v.results))
	for k, val := range v.results {
		out[k] = val
	}
	return out, nil
}

// staticFactory builds staticViews; opts carry "key" and "enabled".
func staticFactory(ctxValue any, results map[string]any) ViewFactory {
	return func(opts Options) (View, error) {
		return &staticView{
			BaseView:   NewBaseView(opts),
			hasContext: ctxValue != nil,
			context:    ctxValue,
			results:    results,
		}, nil
	}
}

// countingFactory wraps a factory and counts how many views it built.
func countingFactory(inner ViewFactory, calls *atomic.Int64) ViewFactory {
	return func(opts Options) (View, error) {
		calls.Add(1)
		return inner(opts)
	}
}

func newTestPeek(t *testing.T, opts ...Option) *Peek {
	t.Helper()
	p, err := New(Config{Env: "development"}, append([]Option{WithLogger(logger.NewNop())}, opts...)...)
	require.NoError(t, err)
	return p
}
