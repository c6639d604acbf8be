package peek

import (
	"context"
	"strings"

	"github.com/Aleph-Alpha/peek/v1/requestctx"
)

// BaseView provides defaults for View implementations:
//   - Key is the "key" option
//   - Enabled is the "enabled" option, true when unset
//   - no context and no results
//
// Embed it and override what the view needs.
type BaseView struct {
	opts Options
}

// NewBaseView wraps the registration options of a view.
func NewBaseView(opts Options) BaseView {
	if opts == nil {
		opts = Options{}
	}
	return BaseView{opts: opts}
}

// Options returns the view's private options.
func (b BaseView) Options() Options {
	return b.opts
}

func (b BaseView) Key() string {
	key, _ := b.opts.String("key")
	return key
}

func (b BaseView) Enabled(context.Context) bool {
	enabled, ok := b.opts.Bool("enabled")
	return !ok || enabled
}

func (b BaseView) HasContext() bool {
	return false
}

func (b BaseView) Context(context.Context) (any, error) {
	return nil, nil
}

func (b BaseView) Results(context.Context) (map[string]any, error) {
	return map[string]any{}, nil
}

type adapterKey struct{}

// ContextWithAdapter returns a copy of ctx carrying the active adapter.
// Results does this before building views.
func ContextWithAdapter(ctx context.Context, a Adapter) context.Context {
	return context.WithValue(ctx, adapterKey{}, a)
}

// AdapterFromContext returns the adapter stored by ContextWithAdapter, or nil.
func AdapterFromContext(ctx context.Context) Adapter {
	a, _ := ctx.Value(adapterKey{}).(Adapter)
	return a
}

// StoreView reports the measurements recorded for the current request whose
// key starts with "<view key>.". Recording "db.queries" makes a StoreView
// keyed "db" report {"queries": ...}.
//
// Options:
//   - "key" (required) view key and measurement prefix
//   - "enabled" as in BaseView
//   - "context" optional static context value
type StoreView struct {
	BaseView
}

// NewStoreView is a ViewFactory for StoreView.
//
//	p.Register(peek.NewStoreView, peek.Options{"key": "db"})
func NewStoreView(opts Options) (View, error) {
	v := &StoreView{BaseView: NewBaseView(opts)}
	if v.Key() == "" {
		return nil, ErrMissingViewKey
	}
	return v, nil
}

func (v *StoreView) HasContext() bool {
	_, ok := v.opts["context"]
	return ok
}

func (v *StoreView) Context(context.Context) (any, error) {
	return v.opts["context"], nil
}

func (v *StoreView) Results(ctx context.Context) (map[string]any, error) {
	out := map[string]any{}

	adapter := AdapterFromContext(ctx)
	id := requestctx.ID(ctx)
	if adapter == nil || id == "" {
		return out, nil
	}

	measurements, err := adapter.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	prefix := v.Key() + "."
	for key, value := range measurements {
		if name, ok := strings.CutPrefix(key, prefix); ok && name != "" {
			out[name] = value
		}
	}
	return out, nil
}
