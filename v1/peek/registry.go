package peek

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/mohae/deepcopy"
)

// Options configures one registered view.
type Options map[string]any

// Clone returns a private copy of o. Nested maps and slices of plain data are
// copied; any other value, such as a logger or a database handle, is shared.
// A nil Options clones to an empty one.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case Options:
		return x.Clone()
	case map[string]any:
		return map[string]any(Options(x).Clone())
	case []any:
		if x == nil {
			return x
		}
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	}

	t := reflect.TypeOf(v)
	if (t.Kind() == reflect.Map || t.Kind() == reflect.Slice) && plainData(t) {
		return deepcopy.Copy(v)
	}
	return v
}

// plainData reports whether values of t hold no pointers, interfaces or
// structs, so a deep copy cannot lose state.
func plainData(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Slice, reflect.Array:
		return plainData(t.Elem())
	case reflect.Map:
		return plainData(t.Key()) && plainData(t.Elem())
	default:
		return false
	}
}

// String returns o[key] when it is a string.
func (o Options) String(key string) (string, bool) {
	s, ok := o[key].(string)
	return s, ok
}

// Bool returns o[key] when it is a bool.
func (o Options) Bool(key string) (bool, bool) {
	b, ok := o[key].(bool)
	return b, ok
}

type descriptor struct {
	factory ViewFactory
	options Options
}

// Registry holds view registrations in the order they were made.
// It is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	descriptors []descriptor
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a view registration. The same factory may be registered
// several times with different options; each registration yields its own view.
func (r *Registry) Register(factory ViewFactory, opts Options) error {
	if factory == nil {
		return ErrNilFactory
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.descriptors = append(r.descriptors, descriptor{factory: factory, options: opts.Clone()})
	return nil
}

// Len returns the number of registrations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.descriptors)
}

// Reset drops all registrations.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.descriptors = nil
}

// NewCycle snapshots the current registrations for one aggregation cycle.
// Registrations made after the snapshot do not affect the cycle.
func (r *Registry) NewCycle() *Cycle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]descriptor, len(r.descriptors))
	copy(snapshot, r.descriptors)
	return &Cycle{descriptors: snapshot}
}

// EnabledViews instantiates the registered views for a new cycle and returns
// the enabled ones.
func (r *Registry) EnabledViews(ctx context.Context) ([]View, error) {
	return r.NewCycle().Views(ctx)
}

// Cycle is the lifetime of one aggregation. Views are built once per cycle
// and never shared with another cycle.
type Cycle struct {
	descriptors []descriptor

	once  sync.Once
	views []View
	err   error
}

// Views builds each registered view with a private copy of its options and
// keeps the enabled ones, in registration order. The result is computed on
// the first call; later calls return the same slice.
func (c *Cycle) Views(ctx context.Context) ([]View, error) {
	c.once.Do(func() {
		c.views, c.err = c.build(ctx)
	})
	return c.views, c.err
}

func (c *Cycle) build(ctx context.Context) ([]View, error) {
	views := make([]View, 0, len(c.descriptors))
	for i, d := range c.descriptors {
		v, err := d.factory(d.options.Clone())
		if err != nil {
			return nil, fmt.Errorf("view #%d: %w", i, err)
		}
		if v == nil {
			return nil, fmt.Errorf("view #%d: %w", i, ErrNilView)
		}
		if v.Enabled(ctx) {
			views = append(views, v)
		}
	}
	return views, nil
}
