package peek

import (
	"context"
	"fmt"
	"sync"
)

var (
	defaultMu    sync.Mutex
	defaultBuilt bool
	defaultPeek  *Peek
	defaultErr   error
)

// Default returns the process-wide instance, built on first use from
// LoadConfig unless InitDefault installed one before.
//
// An invalid environment configuration or an adapter that cannot be built is
// returned as an error, and every later call returns the same error. The
// package-level helpers then fail with it and Enabled reports false.
func Default() (*Peek, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if !defaultBuilt {
		defaultPeek, defaultErr = buildDefault()
		defaultBuilt = true
	}
	return defaultPeek, defaultErr
}

func buildDefault() (*Peek, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("peek: default instance: %w", err)
	}
	p, err := New(cfg)
	if err != nil {
		return nil, fmt.Errorf("peek: default instance: %w", err)
	}
	return p, nil
}

// InitDefault builds the process-wide instance from cfg, replacing any
// previous one. On error the previous state is kept.
func InitDefault(cfg Config, opts ...Option) error {
	p, err := New(cfg, opts...)
	if err != nil {
		return err
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultPeek, defaultErr, defaultBuilt = p, nil, true
	return nil
}

// Register adds a view registration to the Default instance.
func Register(factory ViewFactory, opts Options) error {
	p, err := Default()
	if err != nil {
		return err
	}
	return p.Register(factory, opts)
}

// SetAdapter configures the adapter of the Default instance by name.
func SetAdapter(name string, params ...any) error {
	p, err := Default()
	if err != nil {
		return err
	}
	return p.SetAdapter(name, params...)
}

// UseAdapter installs a prebuilt adapter on the Default instance.
func UseAdapter(a Adapter) error {
	p, err := Default()
	if err != nil {
		return err
	}
	p.UseAdapter(a)
	return nil
}

// Snapshot builds the results of the Default instance for ctx.
func Snapshot(ctx context.Context) (*Results, error) {
	p, err := Default()
	if err != nil {
		return nil, err
	}
	return p.Results(ctx)
}

// Record saves a measurement through the Default instance.
func Record(ctx context.Context, key string, value any) error {
	p, err := Default()
	if err != nil {
		return err
	}
	return p.Record(ctx, key, value)
}

// Reset drops the view registrations of the Default instance.
func Reset() error {
	p, err := Default()
	if err != nil {
		return err
	}
	p.Reset()
	return nil
}

// Enabled reports whether the Default instance is enabled. It is false when
// the Default instance could not be built.
func Enabled() bool {
	p, err := Default()
	return err == nil && p.Enabled()
}
