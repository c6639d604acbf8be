package redisstore

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient is an in-memory stand-in for the Redis commands the store uses.
type fakeClient struct {
	mu      sync.Mutex
	hashes  map[string]map[string]string
	zsets   map[string]map[string]float64
	ttls    map[string]time.Duration
	closed  bool
	failOn  string
	failErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		hashes: map[string]map[string]string{},
		zsets:  map[string]map[string]float64{},
		ttls:   map[string]time.Duration{},
	}
}

func (f *fakeClient) fail(op string) error {
	if f.failOn == op {
		return f.failErr
	}
	return nil
}

func (f *fakeClient) Ping(context.Context) error { return nil }

func (f *fakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeClient) Delete(_ context.Context, keys ...string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("delete"); err != nil {
		return 0, err
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.hashes[k]; ok {
			delete(f.hashes, k)
			n++
		}
		if _, ok := f.zsets[k]; ok {
			delete(f.zsets, k)
			n++
		}
		delete(f.ttls, k)
	}
	return n, nil
}

func (f *fakeClient) Expire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ttls[key] = ttl
	return true, nil
}

func (f *fakeClient) ScanKeys(_ context.Context, match string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := strings.TrimSuffix(match, "*")
	var keys []string
	for k := range f.hashes {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (f *fakeClient) HSet(_ context.Context, key string, values ...interface{}) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("hset"); err != nil {
		return 0, err
	}
	h, ok := f.hashes[key]
	if !ok {
		h = map[string]string{}
		f.hashes[key] = h
	}
	for i := 0; i+1 < len(values); i += 2 {
		h[values[i].(string)] = values[i+1].(string)
	}
	return int64(len(values) / 2), nil
}

func (f *fakeClient) HGetAll(_ context.Context, key string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]string{}
	for k, v := range f.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeClient) ZAdd(_ context.Context, key string, members ...goredis.Z) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	z, ok := f.zsets[key]
	if !ok {
		z = map[string]float64{}
		f.zsets[key] = z
	}
	for _, m := range members {
		z[m.Member.(string)] = m.Score
	}
	return int64(len(members)), nil
}

func (f *fakeClient) ZRem(_ context.Context, key string, members ...interface{}) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, m := range members {
		if _, ok := f.zsets[key][m.(string)]; ok {
			delete(f.zsets[key], m.(string))
			n++
		}
	}
	return n, nil
}

func (f *fakeClient) sorted(key string) []string {
	z := f.zsets[key]
	ids := make([]string, 0, len(z))
	for id := range z {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return z[ids[i]] < z[ids[j]] })
	return ids
}

func (f *fakeClient) ZRange(_ context.Context, key string, _, _ int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(key), nil
}

func (f *fakeClient) ZRangeByScore(_ context.Context, key string, opt *goredis.ZRangeBy) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	max, err := strconv.ParseFloat(strings.TrimPrefix(opt.Max, "("), 64)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, id := range f.sorted(key) {
		if f.zsets[key][id] < max {
			out = append(out, id)
		}
	}
	return out, nil
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	s := New(client)

	require.NoError(t, s.Save(ctx, "r1", "db.queries", 3))
	require.NoError(t, s.Save(ctx, "r1", "db.tables", []string{"users", "orders"}))

	got, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"db.queries": float64(3),
		"db.tables":  []any{"users", "orders"},
	}, got)

	assert.Equal(t, `3`, client.hashes["peek:requests:r1"]["db.queries"])
	assert.Equal(t, DefaultExpiresIn, client.ttls["peek:requests:r1"])
}

func TestGetUnknownRequest(t *testing.T) {
	got, err := New(newFakeClient()).Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSaveEncodeError(t *testing.T) {
	err := New(newFakeClient()).Save(context.Background(), "r1", "bad", make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `encode "bad"`)
}

func TestSaveClientError(t *testing.T) {
	client := newFakeClient()
	client.failOn = "hset"
	client.failErr = errors.New("connection refused")

	err := New(client).Save(context.Background(), "r1", "k", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, client.failErr)
}

func TestExpiryCanBeDisabled(t *testing.T) {
	client := newFakeClient()
	require.NoError(t, New(client, WithExpiresIn(0)).Save(context.Background(), "r1", "k", 1))
	assert.Empty(t, client.ttls)
}

func TestRequestsAndPurge(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	now := time.Unix(1000, 0)
	s := New(client, WithPrefix("test"), WithClock(func() time.Time { return now }))

	require.NoError(t, s.Save(ctx, "old", "k", 1))
	now = now.Add(10 * time.Minute)
	require.NoError(t, s.Save(ctx, "fresh", "k", 1))

	ids, err := s.Requests(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"old", "fresh"}, ids)

	removed, err := s.Purge(ctx, 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	ids, err = s.Requests(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, ids)
	assert.NotContains(t, client.hashes, "test:old")
	assert.Contains(t, client.hashes, "test:fresh")
}

func TestPurgeCutoffIsExact(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	now := time.Unix(1_700_000_000, 123_456_789)
	s := New(client, WithClock(func() time.Time { return now }))

	require.NoError(t, s.Save(ctx, "r1", "k", 1))
	assert.Equal(t, float64(now.UnixMilli()), client.zsets[DefaultPrefix]["r1"])

	// a request written in the cutoff millisecond is kept
	removed, err := s.Purge(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, removed)

	now = now.Add(time.Millisecond)
	removed, err = s.Purge(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestPurgeNothingStale(t *testing.T) {
	removed, err := New(newFakeClient()).Purge(context.Background(), time.Minute)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	s := New(client)

	require.NoError(t, s.Save(ctx, "r1", "k", 1))
	require.NoError(t, s.Save(ctx, "r2", "k", 1))
	require.NoError(t, s.Reset(ctx))

	assert.Empty(t, client.hashes)
	assert.Empty(t, client.zsets)
}

func TestResetManyRequests(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	s := New(client)

	for i := 0; i < 100; i++ {
		require.NoError(t, s.Save(ctx, "r"+strconv.Itoa(i), "k", i))
	}
	require.NoError(t, s.Reset(ctx))

	assert.Empty(t, client.hashes)
	assert.Empty(t, client.zsets)
}

func TestResetDeleteError(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	s := New(client)
	require.NoError(t, s.Save(ctx, "r1", "k", 1))

	client.failOn = "delete"
	client.failErr = errors.New("CROSSSLOT")
	err := s.Reset(ctx)
	assert.ErrorIs(t, err, client.failErr)
}

func TestCloseOnlyClosesOwnedClient(t *testing.T) {
	client := newFakeClient()
	s := New(client)
	require.NoError(t, s.Close())
	assert.False(t, client.closed)

	s.owned = true
	require.NoError(t, s.Close())
	assert.True(t, client.closed)
}
