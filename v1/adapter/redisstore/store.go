package redisstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/Aleph-Alpha/peek/v1/redis"
)

const (
	// DefaultPrefix is the key namespace used for request hashes and the index.
	DefaultPrefix = "peek:requests"

	// DefaultExpiresIn is how long a request hash lives after its last write.
	DefaultExpiresIn = 30 * time.Minute

	deleteConcurrency = 16
)

// Store persists measurements in Redis. It is safe for concurrent use.
type Store struct {
	client    redis.Client
	owned     bool
	prefix    string
	expiresIn time.Duration
	now       func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithExpiresIn sets the TTL applied to a request hash on every write.
// A non-positive value disables expiry.
func WithExpiresIn(d time.Duration) Option {
	return func(s *Store) { s.expiresIn = d }
}

// WithPrefix changes the key namespace.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithClock overrides the time source used to score the request index.
// Scores are Unix milliseconds, which a float64 holds exactly.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Store on top of an existing client. The caller keeps
// ownership of the client; Close does not close it.
func New(client redis.Client, opts ...Option) *Store {
	s := &Store{
		client:    client,
		prefix:    DefaultPrefix,
		expiresIn: DefaultExpiresIn,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open connects a new client from cfg and returns a Store that owns it.
func Open(cfg redis.Config, opts ...Option) (*Store, error) {
	client, err := redis.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("redisstore: %w", err)
	}
	s := New(client, opts...)
	s.owned = true
	return s, nil
}

func (s *Store) requestKey(requestID string) string {
	return s.prefix + ":" + requestID
}

// Save writes value as JSON into the request hash, refreshes its TTL and
// bumps the request in the index.
func (s *Store) Save(ctx context.Context, requestID, key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redisstore: encode %q: %w", key, err)
	}

	hashKey := s.requestKey(requestID)
	if _, err := s.client.HSet(ctx, hashKey, key, string(encoded)); err != nil {
		return fmt.Errorf("redisstore: save %q: %w", key, err)
	}
	if s.expiresIn > 0 {
		if _, err := s.client.Expire(ctx, hashKey, s.expiresIn); err != nil {
			return fmt.Errorf("redisstore: expire %q: %w", hashKey, err)
		}
	}
	score := float64(s.now().UnixMilli())
	if _, err := s.client.ZAdd(ctx, s.prefix, goredis.Z{Score: score, Member: requestID}); err != nil {
		return fmt.Errorf("redisstore: index %q: %w", requestID, err)
	}
	return nil
}

// Get returns the decoded measurements of a request. Expired or unknown
// requests yield an empty map.
func (s *Store) Get(ctx context.Context, requestID string) (map[string]any, error) {
	fields, err := s.client.HGetAll(ctx, s.requestKey(requestID))
	if err != nil {
		if redis.IsNilError(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("redisstore: get %q: %w", requestID, err)
	}

	out := make(map[string]any, len(fields))
	for field, raw := range fields {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("redisstore: decode %q: %w", field, err)
		}
		out[field] = v
	}
	return out, nil
}

// Requests lists indexed request ids, oldest write first. Ids whose hash has
// already expired stay listed until the next Purge.
func (s *Store) Requests(ctx context.Context) ([]string, error) {
	ids, err := s.client.ZRange(ctx, s.prefix, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("redisstore: list requests: %w", err)
	}
	return ids, nil
}

// Purge deletes requests whose last write is older than olderThan.
func (s *Store) Purge(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.now().Add(-olderThan).UnixMilli()
	ids, err := s.client.ZRangeByScore(ctx, s.prefix, &goredis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(cutoff, 10),
	})
	if err != nil {
		return 0, fmt.Errorf("redisstore: find stale requests: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, len(ids))
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		keys[i] = s.requestKey(id)
		members[i] = id
	}
	if err := s.deleteKeys(ctx, keys); err != nil {
		return 0, fmt.Errorf("redisstore: delete stale requests: %w", err)
	}
	if _, err := s.client.ZRem(ctx, s.prefix, members...); err != nil {
		return 0, fmt.Errorf("redisstore: unindex stale requests: %w", err)
	}
	return len(ids), nil
}

// Reset deletes every request hash and the index.
func (s *Store) Reset(ctx context.Context) error {
	keys, err := s.client.ScanKeys(ctx, s.prefix+":*")
	if err != nil {
		return fmt.Errorf("redisstore: scan: %w", err)
	}
	keys = append(keys, s.prefix)
	if err := s.deleteKeys(ctx, keys); err != nil {
		return fmt.Errorf("redisstore: reset: %w", err)
	}
	return nil
}

// deleteKeys issues one DEL per key. Request hashes hash to different slots
// on a cluster, where a multi-key DEL fails with CROSSSLOT.
func (s *Store) deleteKeys(ctx context.Context, keys []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(deleteConcurrency)
	for _, key := range keys {
		g.Go(func() error {
			_, err := s.client.Delete(ctx, key)
			return err
		})
	}
	return g.Wait()
}

// Close releases the client when the Store created it through Open.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}
