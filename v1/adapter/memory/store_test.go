package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Save(ctx, "r1", "db.queries", 3))
	require.NoError(t, s.Save(ctx, "r1", "db.time_ms", 12.5))
	require.NoError(t, s.Save(ctx, "r2", "db.queries", 1))

	got, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"db.queries": 3, "db.time_ms": 12.5}, got)

	got, err = s.Get(ctx, "r2")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"db.queries": 1}, got)
}

func TestSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Save(ctx, "r1", "db.queries", 1))
	require.NoError(t, s.Save(ctx, "r1", "db.queries", 2))

	got, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 2, got["db.queries"])
}

func TestGetUnknownRequest(t *testing.T) {
	got, err := New().Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Save(ctx, "r1", "k", 1))

	got, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	got["k"] = 99
	got["injected"] = true

	again, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": 1}, again)
}

func TestRequestsOrderedByLastWrite(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1000, 0)}
	s := New(WithClock(clock.Now))

	require.NoError(t, s.Save(ctx, "b", "k", 1))
	clock.Advance(time.Second)
	require.NoError(t, s.Save(ctx, "a", "k", 1))
	clock.Advance(time.Second)
	require.NoError(t, s.Save(ctx, "c", "k", 1))

	ids, err := s.Requests(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, ids)
}

func TestPurge(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1000, 0)}
	s := New(WithClock(clock.Now))

	require.NoError(t, s.Save(ctx, "old", "k", 1))
	clock.Advance(10 * time.Minute)
	require.NoError(t, s.Save(ctx, "fresh", "k", 1))
	clock.Advance(time.Minute)

	removed, err := s.Purge(ctx, 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	ids, err := s.Requests(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, ids)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Save(ctx, "r1", "k", 1))

	require.NoError(t, s.Reset(ctx))
	assert.Equal(t, 0, s.Len())
}

func TestConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("r%d", i)
			for j := 0; j < 50; j++ {
				_ = s.Save(ctx, id, fmt.Sprintf("k%d", j), j)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 32, s.Len())
	got, err := s.Get(ctx, "r7")
	require.NoError(t, err)
	assert.Len(t, got, 50)
}
