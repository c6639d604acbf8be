package peek

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/Aleph-Alpha/peek/v1/adapter/memory"
	"github.com/Aleph-Alpha/peek/v1/logger"
	"github.com/Aleph-Alpha/peek/v1/observability"
	"github.com/Aleph-Alpha/peek/v1/requestctx"
)

// Peek is a per-request instrumentation registry. It holds the registered
// views and the active storage adapter, and builds a Results snapshot for
// the request carried by a context.
//
// All methods are safe for concurrent use.
type Peek struct {
	cfg      Config
	registry *Registry

	adapterMu   sync.RWMutex
	adapter     Adapter
	adapterName string

	logger   Logger
	observer observability.Observer
	tracer   Tracer
}

// Option customizes a Peek built by New.
type Option func(*Peek)

// WithLogger sets the logger. Without one, peek logs warnings and errors
// through a production zap logger.
func WithLogger(l Logger) Option {
	return func(p *Peek) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithObserver sets the observer notified of results and save operations.
func WithObserver(o observability.Observer) Option {
	return func(p *Peek) { p.observer = o }
}

// WithTracer sets the tracer used to open a span around Results.
func WithTracer(t Tracer) Option {
	return func(p *Peek) { p.tracer = t }
}

// WithAdapter installs a prebuilt adapter instead of resolving Config.Adapter.
func WithAdapter(a Adapter) Option {
	return func(p *Peek) {
		if a != nil {
			p.adapter = a
			p.adapterName = adapterTypeName(a)
		}
	}
}

// WithRegistry shares an existing registry.
func WithRegistry(r *Registry) Option {
	return func(p *Peek) {
		if r != nil {
			p.registry = r
		}
	}
}

// New creates a Peek from cfg.
//
// Unless WithAdapter is given, the adapter named by cfg.Adapter is built
// with the matching cfg.Redis or cfg.Database section. An unknown name or a
// failing adapter is returned as an *AdapterError.
//
// Example:
//
//	p, err := peek.New(peek.Config{Env: "development"}, peek.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	p.Register(peek.NewStoreView, peek.Options{"key": "db"})
func New(cfg Config, opts ...Option) (*Peek, error) {
	cfg.applyDefaults()

	p := &Peek{
		cfg:      cfg,
		registry: NewRegistry(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.NewLoggerClient(logger.Config{Level: logger.Warning, ServiceName: "peek"})
	}

	if p.adapter == nil {
		p.adapter = memory.New()
		p.adapterName = AdapterMemory
		if normalizeAdapterName(cfg.Adapter) != AdapterMemory {
			if err := p.SetAdapter(cfg.Adapter, cfg.adapterParams()...); err != nil {
				return nil, err
			}
		}
	}

	return p, nil
}

// Config returns the configuration the instance was built with.
func (p *Peek) Config() Config {
	return p.cfg
}

// Enabled reports whether the configured environment is one of AllowedEnvs.
// Integrations should skip all instrumentation when it is false.
func (p *Peek) Enabled() bool {
	return AllowedEnv(p.cfg.Env)
}

// Registry returns the view registry.
func (p *Peek) Registry() *Registry {
	return p.registry
}

// Register adds a view registration. Registration order is the order of the
// results.
func (p *Peek) Register(factory ViewFactory, opts Options) error {
	return p.registry.Register(factory, opts)
}

// Reset drops all view registrations. The adapter and its data are kept.
func (p *Peek) Reset() {
	p.registry.Reset()
}

// EnabledViews builds the registered views for a new cycle and returns the
// enabled ones.
func (p *Peek) EnabledViews(ctx context.Context) ([]View, error) {
	return p.registry.NewCycle().Views(ContextWithAdapter(ctx, p.Adapter()))
}

// Results builds the snapshot for the request carried by ctx: every enabled
// view is instantiated once and queried in registration order. The first
// view error aborts the snapshot.
func (p *Peek) Results(ctx context.Context) (*Results, error) {
	start := time.Now()
	requestID := requestctx.ID(ctx)

	ctx, finish := p.startSpan(ctx, "peek.results", map[string]interface{}{
		"peek.request_id": requestID,
		"peek.adapter":    p.AdapterName(),
	})
	ctx = ContextWithAdapter(ctx, p.Adapter())

	views, err := p.registry.NewCycle().Views(ctx)
	var results *Results
	if err == nil {
		results, err = Aggregate(ctx, views)
	}
	finish(err)

	metadata := map[string]interface{}{}
	if results != nil {
		metadata["metric_count"] = results.MetricCount()
	}
	p.observeOperation("results", requestID, "", time.Since(start), err, int64(len(views)), metadata)

	if err != nil {
		p.logger.Error("Failed to build peek results", err, map[string]interface{}{"request_id": requestID})
		return nil, err
	}
	p.logger.Debug("Built peek results", nil, map[string]interface{}{
		"request_id": requestID,
		"views":      len(views),
	})
	return results, nil
}

// Adapter returns the active adapter. It is never nil.
func (p *Peek) Adapter() Adapter {
	p.adapterMu.RLock()
	defer p.adapterMu.RUnlock()
	return p.adapter
}

// AdapterName returns the name the active adapter was configured with, or
// its Go type for adapters installed with UseAdapter.
func (p *Peek) AdapterName() string {
	p.adapterMu.RLock()
	defer p.adapterMu.RUnlock()
	return p.adapterName
}

// SetAdapter builds the adapter registered under name with params and makes
// it active. On any error the current adapter stays active. Data is not
// migrated between adapters.
func (p *Peek) SetAdapter(name string, params ...any) error {
	a, err := NewAdapter(name, params...)
	if err != nil {
		p.logger.Error("Failed to configure peek adapter", err, map[string]interface{}{"adapter": name})
		return err
	}
	p.swapAdapter(a, normalizeAdapterName(name))
	return nil
}

// UseAdapter makes a prebuilt adapter active. A nil adapter restores a fresh
// in-memory adapter.
func (p *Peek) UseAdapter(a Adapter) {
	if a == nil {
		p.swapAdapter(memory.New(), AdapterMemory)
		return
	}
	p.swapAdapter(a, adapterTypeName(a))
}

func (p *Peek) swapAdapter(a Adapter, name string) {
	p.adapterMu.Lock()
	previous := p.adapterName
	p.adapter = a
	p.adapterName = name
	p.adapterMu.Unlock()

	p.logger.Info("Peek adapter configured", nil, map[string]interface{}{
		"adapter":  name,
		"previous": previous,
	})
}

func adapterTypeName(a Adapter) string {
	return fmt.Sprintf("%T", a)
}

// Close closes the active adapter when it implements io.Closer.
func (p *Peek) Close() error {
	if c, ok := p.Adapter().(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Record saves a measurement for the request carried by ctx.
// Outside of a request it returns ErrNoRequestID.
func (p *Peek) Record(ctx context.Context, key string, value any) error {
	requestID := requestctx.ID(ctx)
	if requestID == "" {
		return ErrNoRequestID
	}

	start := time.Now()
	err := p.Adapter().Save(ctx, requestID, key, value)
	p.observeOperation("save", requestID, key, time.Since(start), err, 1, nil)
	if err != nil {
		return fmt.Errorf("peek: record %q: %w", key, err)
	}
	return nil
}

// StartTimer starts measuring and returns a function that records the
// elapsed time in milliseconds under key.
//
//	stop := p.StartTimer(ctx, "db.time_ms")
//	rows, err := db.QueryContext(ctx, query)
//	stop()
func (p *Peek) StartTimer(ctx context.Context, key string) func() {
	start := time.Now()
	return func() {
		elapsed := float64(time.Since(start).Microseconds()) / 1000
		if err := p.Record(ctx, key, elapsed); err != nil {
			if errors.Is(err, ErrNoRequestID) {
				p.logger.Debug("Timer stopped outside of a request", nil, map[string]interface{}{"key": key})
				return
			}
			p.logger.Warn("Failed to record timer", err, map[string]interface{}{"key": key})
		}
	}
}

// Clear returns a copy of ctx without a request id. It is idempotent.
func (p *Peek) Clear(ctx context.Context) context.Context {
	return requestctx.Clear(ctx)
}

// BeforeRequest returns a copy of ctx carrying requestID.
func (p *Peek) BeforeRequest(ctx context.Context, requestID string) context.Context {
	return requestctx.With(ctx, requestID)
}

// AfterRequest ends the request carried by ctx and returns a copy of ctx
// without a request id.
func (p *Peek) AfterRequest(ctx context.Context) context.Context {
	if id := requestctx.ID(ctx); id != "" {
		p.logger.Debug("Peek request finished", nil, map[string]interface{}{"request_id": id})
	}
	return p.Clear(ctx)
}

// Purge drops adapter data of requests older than olderThan.
func (p *Peek) Purge(ctx context.Context, olderThan time.Duration) (int, error) {
	start := time.Now()
	removed, err := p.Adapter().Purge(ctx, olderThan)
	p.observeOperation("purge", "", p.AdapterName(), time.Since(start), err, int64(removed), nil)
	if err != nil {
		return 0, fmt.Errorf("peek: purge: %w", err)
	}
	return removed, nil
}

// RunPurger purges requests older than cfg.RetainFor every cfg.PurgeInterval
// until ctx is done. It returns immediately when PurgeInterval is not positive.
func (p *Peek) RunPurger(ctx context.Context) {
	if p.cfg.PurgeInterval <= 0 {
		return
	}

	ticker := time.NewTicker(p.cfg.PurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purgeCtx, cancel := context.WithTimeout(ctx, defaultPurgeTimeout)
			removed, err := p.Purge(purgeCtx, p.cfg.RetainFor)
			cancel()
			if err != nil {
				p.logger.Warn("Failed to purge stale requests", err, nil)
				continue
			}
			if removed > 0 {
				p.logger.Debug("Purged stale requests", nil, map[string]interface{}{"removed": removed})
			}
		}
	}
}

// Setup does nothing.
//
// Deprecated: views are registered with Register and the request lifecycle
// is handled by Middleware or BeforeRequest/AfterRequest.
func (p *Peek) Setup() {
	caller := "unknown"
	if _, file, line, ok := runtime.Caller(1); ok {
		caller = fmt.Sprintf("%s:%d", file, line)
	}
	p.logger.Warn("peek.Setup is deprecated and does nothing", nil, map[string]interface{}{"caller": caller})
}
