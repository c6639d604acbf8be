package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is the subset of Redis operations the peek redis adapter relies on:
// request hashes, the request index sorted set and key expiry.
//
// This interface is implemented by the concrete *RedisClient type.
type Client interface {
	Ping(ctx context.Context) error
	Close() error

	Delete(ctx context.Context, keys ...string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ScanKeys(ctx context.Context, match string) ([]string, error)

	HSet(ctx context.Context, key string, values ...interface{}) (int64, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	ZAdd(ctx context.Context, key string, members ...redis.Z) (int64, error)
	ZRem(ctx context.Context, key string, members ...interface{}) (int64, error)
	ZRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	ZRangeByScore(ctx context.Context, key string, opt *redis.ZRangeBy) ([]string, error)
}
