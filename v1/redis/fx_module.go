package redis

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/peek/v1/logger"
	"github.com/Aleph-Alpha/peek/v1/observability"
)

// FXModule is an fx.Module that provides and configures the Redis client.
//
// Usage:
//
//	app := fx.New(
//	    redis.FXModule,
//	    fx.Provide(func() redis.Config { return redis.Config{Host: "localhost"} }),
//	)
var FXModule = fx.Module("redis",
	fx.Provide(
		NewClientWithDI,
		func(c *RedisClient) Client { return c },
	),
	fx.Invoke(RegisterRedisLifecycle),
)

// RedisParams groups the dependencies needed to create a Redis client
type RedisParams struct {
	fx.In

	Config   Config
	Logger   logger.Logger          `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI creates a new Redis client using dependency injection.
// The optional logger and observer are attached when present in the container.
func NewClientWithDI(params RedisParams) (*RedisClient, error) {
	if params.Logger != nil {
		params.Config.Logger = params.Logger
	}

	client, err := NewClient(params.Config)
	if err != nil {
		return nil, err
	}
	if params.Observer != nil {
		client.WithObserver(params.Observer)
	}
	return client, nil
}

// RedisLifecycleParams groups the dependencies needed for Redis lifecycle management
type RedisLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    *RedisClient
}

// RegisterRedisLifecycle pings Redis on start and closes the client on stop.
func RegisterRedisLifecycle(params RedisLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := params.Client.Ping(ctx); err != nil {
				params.Client.logWarn("Failed to ping Redis on startup", err)
				return err
			}
			params.Client.logInfo("Redis client started and healthy", nil)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			params.Client.logInfo("Shutting down Redis client", nil)
			return params.Client.Close()
		},
	})
}
