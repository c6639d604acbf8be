package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Ping checks if the Redis server is reachable and responsive.
func (r *RedisClient) Ping(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.client.Ping(ctx).Err()
}

// PoolStats returns connection pool statistics.
func (r *RedisClient) PoolStats() *redis.PoolStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.client.PoolStats()
}

// Delete deletes one or more keys.
// Returns the number of keys that were deleted.
func (r *RedisClient) Delete(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, err := r.client.Del(ctx, keys...).Result()
	r.observeOperation("delete", keys[0], "", time.Since(start), err, result, map[string]interface{}{
		"key_count": len(keys),
	})
	return result, err
}

// Expire sets a timeout on key.
func (r *RedisClient) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, err := r.client.Expire(ctx, key, ttl).Result()
	r.observeOperation("expire", key, "", time.Since(start), err, 0, map[string]interface{}{
		"ttl": ttl.String(),
	})
	return result, err
}

// ScanKeys collects every key matching the pattern using SCAN, which does not
// block the server the way KEYS does.
func (r *RedisClient) ScanKeys(ctx context.Context, match string) ([]string, error) {
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	var keys []string
	iter := r.client.Scan(ctx, 0, match, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	err := iter.Err()
	r.observeOperation("scan", match, "", time.Since(start), err, int64(len(keys)), nil)
	return keys, err
}

// HSet sets fields in the hash stored at key. values is field1, value1, field2, value2, ...
// If the key doesn't exist, a new hash is created.
func (r *RedisClient) HSet(ctx context.Context, key string, values ...interface{}) (int64, error) {
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, err := r.client.HSet(ctx, key, values...).Result()
	r.observeOperation("hset", key, "", time.Since(start), err, result, map[string]interface{}{
		"field_count": len(values) / 2,
	})
	return result, err
}

// HGetAll returns all fields and values in the hash stored at key.
func (r *RedisClient) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, err := r.client.HGetAll(ctx, key).Result()
	r.observeOperation("hgetall", key, "", time.Since(start), err, int64(len(result)), nil)
	return result, err
}

// ZAdd adds members with scores to the sorted set stored at key.
func (r *RedisClient) ZAdd(ctx context.Context, key string, members ...redis.Z) (int64, error) {
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, err := r.client.ZAdd(ctx, key, members...).Result()
	r.observeOperation("zadd", key, "", time.Since(start), err, result, nil)
	return result, err
}

// ZRem removes the specified members from the sorted set stored at key.
func (r *RedisClient) ZRem(ctx context.Context, key string, members ...interface{}) (int64, error) {
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, err := r.client.ZRem(ctx, key, members...).Result()
	r.observeOperation("zrem", key, "", time.Since(start), err, result, nil)
	return result, err
}

// ZRange returns the specified range of elements in the sorted set stored at key,
// ordered from the lowest to the highest score.
func (r *RedisClient) ZRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	began := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, err := r.client.ZRange(ctx, key, start, stop).Result()
	r.observeOperation("zrange", key, "", time.Since(began), err, int64(len(result)), nil)
	return result, err
}

// ZRangeByScore returns all elements in the sorted set with a score between min and max.
func (r *RedisClient) ZRangeByScore(ctx context.Context, key string, opt *redis.ZRangeBy) ([]string, error) {
	start := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, err := r.client.ZRangeByScore(ctx, key, opt).Result()
	r.observeOperation("zrangebyscore", key, "", time.Since(start), err, int64(len(result)), nil)
	return result, err
}
