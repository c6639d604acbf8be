// Package redis provides the Redis client behind the peek redis storage adapter.
//
// The client is deliberately narrow. It exposes the hash, sorted set and key
// expiry commands the adapter needs to persist measurements per request, and
// nothing else. Each command is timed and reported to an optional
// observability.Observer under the "redis" component.
//
// # Architecture
//
// This package follows the "accept interfaces, return structs" design pattern:
//   - Client interface: the commands the adapter depends on
//   - RedisClient struct: concrete implementation backed by go-redis
//   - NewClient constructor: returns *RedisClient
//   - FX module: provides both *RedisClient and Client
//
// # Direct Usage (Without FX)
//
//	client, err := redis.NewClient(redis.Config{Host: "localhost", Port: 6379})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	_, err = client.HSet(ctx, "peek:requests:abc", "db.queries", "3")
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule,
//		redis.FXModule,
//		fx.Provide(func() redis.Config {
//			return redis.Config{Host: "localhost", Port: 6379}
//		}),
//	)
//
// The lifecycle hook pings the server on start and closes the client on stop.
//
// # Thread Safety
//
// All methods on RedisClient are safe for concurrent use.
package redis
