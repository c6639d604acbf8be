package peek

import (
	"context"
	"sort"
	"sync/atomic"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/Aleph-Alpha/peek/v1/adapter/redisstore"
	"github.com/Aleph-Alpha/peek/v1/adapter/sqlstore"
	"github.com/Aleph-Alpha/peek/v1/database"
	"github.com/Aleph-Alpha/peek/v1/logger"
	"github.com/Aleph-Alpha/peek/v1/observability"
	"github.com/Aleph-Alpha/peek/v1/redis"
	"github.com/Aleph-Alpha/peek/v1/tracer"
)

// ViewGroup is the fx value group collecting views registered with AsView.
const ViewGroup = "peek_views"

// FXModule is an fx.Module that provides a *Peek built from the injected
// Config. Views supplied with AsView are registered in the order fx
// delivers them. The optional logger, observer, tracer and Adapter are used
// when present in the container.
//
// fx does not order value groups, so AsView stamps each registration and
// NewWithDI registers them in the order the AsView calls were made.
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    peek.FXModule,
//	    peek.AsView(peek.NewStoreView, peek.Options{"key": "db"}),
//	    fx.Provide(peek.LoadConfig),
//	)
var FXModule = fx.Module("peek",
	fx.Provide(NewWithDI),
	fx.Invoke(RegisterPeekLifecycle),
)

// RedisAdapterModule provides a redis client from Config.Redis and installs
// the redis adapter on top of it.
var RedisAdapterModule = fx.Module("peek-redis",
	fx.Provide(func(cfg Config) redis.Config { return cfg.Redis }),
	redis.FXModule,
	fx.Provide(func(client redis.Client) Adapter {
		return redisstore.New(client)
	}),
)

// SQLAdapterModule opens Config.Database and installs the sql adapter on top of it.
var SQLAdapterModule = fx.Module("peek-sql",
	fx.Provide(func(cfg Config) database.Config { return cfg.Database }),
	database.FXModule,
	fx.Provide(func(db *gorm.DB) (Adapter, error) {
		return sqlstore.New(db)
	}),
)

// ViewRegistration is one view supplied to FXModule through AsView.
type ViewRegistration struct {
	Factory ViewFactory
	Options Options

	seq uint64
}

var viewSeq atomic.Uint64

// AsView supplies a view registration to FXModule.
func AsView(factory ViewFactory, opts Options) fx.Option {
	reg := ViewRegistration{Factory: factory, Options: opts, seq: viewSeq.Add(1)}
	return fx.Provide(fx.Annotated{
		Group:  ViewGroup,
		Target: func() ViewRegistration { return reg },
	})
}

// PeekParams groups the dependencies needed to create a Peek.
type PeekParams struct {
	fx.In

	Config   Config
	Logger   logger.Logger          `optional:"true"`
	Observer observability.Observer `optional:"true"`
	Tracer   *tracer.Tracer         `optional:"true"`
	Adapter  Adapter                `optional:"true"`
	Views    []ViewRegistration     `group:"peek_views"`
}

// NewWithDI creates a Peek from injected dependencies.
func NewWithDI(params PeekParams) (*Peek, error) {
	var opts []Option
	if params.Logger != nil {
		opts = append(opts, WithLogger(params.Logger))
	}
	if params.Observer != nil {
		opts = append(opts, WithObserver(params.Observer))
	}
	if params.Tracer != nil {
		opts = append(opts, WithTracer(params.Tracer))
	}
	if params.Adapter != nil {
		opts = append(opts, WithAdapter(params.Adapter))
	}

	p, err := New(params.Config, opts...)
	if err != nil {
		return nil, err
	}
	views := make([]ViewRegistration, len(params.Views))
	copy(views, params.Views)
	sort.SliceStable(views, func(i, j int) bool { return views[i].seq < views[j].seq })
	for _, v := range views {
		if err := p.Register(v.Factory, v.Options); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// RegisterPeekLifecycle starts the purger and closes the adapter on stop.
func RegisterPeekLifecycle(lc fx.Lifecycle, p *Peek) {
	purgeCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.logger.Info("Peek started", nil, map[string]interface{}{
				"env":     p.cfg.Env,
				"enabled": p.Enabled(),
				"adapter": p.AdapterName(),
				"views":   p.registry.Len(),
			})
			go func() {
				defer close(done)
				p.RunPurger(purgeCtx)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
			}
			p.logger.Info("Shutting down peek", nil)
			return p.Close()
		},
	})
}
