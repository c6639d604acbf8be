package peek

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/peek/v1/adapter/memory"
)

func TestDefaultAdapterIsMemory(t *testing.T) {
	p := newTestPeek(t)
	assert.IsType(t, &memory.Store{}, p.Adapter())
	assert.Equal(t, AdapterMemory, p.AdapterName())
}

func TestSetAdapterUnknownNameKeepsPrevious(t *testing.T) {
	p := newTestPeek(t)
	previous := p.Adapter()

	err := p.SetAdapter("cassandra")
	require.Error(t, err)
	assert.True(t, IsUnknownAdapterError(err))
	assert.True(t, IsAdapterError(err))
	assert.Contains(t, err.Error(), `"cassandra"`)

	assert.Same(t, previous, p.Adapter())
	assert.Equal(t, AdapterMemory, p.AdapterName())
}

func TestSetAdapterFactoryErrorKeepsPrevious(t *testing.T) {
	p := newTestPeek(t)
	previous := p.Adapter()

	err := p.SetAdapter(AdapterPostgres, "not a config")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidAdapterParams)
	assert.False(t, IsUnknownAdapterError(err))
	assert.Same(t, previous, p.Adapter())
}

func TestSetAdapterByName(t *testing.T) {
	p := newTestPeek(t)
	previous := p.Adapter()

	require.NoError(t, p.SetAdapter("  Memory "))
	assert.NotSame(t, previous, p.Adapter())
	assert.Equal(t, AdapterMemory, p.AdapterName())
}

func TestSwappingAdapterDoesNotMigrateData(t *testing.T) {
	ctx := context.Background()
	p := newTestPeek(t)
	rctx := p.BeforeRequest(ctx, "r1")
	require.NoError(t, p.Record(rctx, "db.queries", 1))

	require.NoError(t, p.SetAdapter(AdapterMemory))

	got, err := p.Adapter().Get(ctx, "r1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUseAdapter(t *testing.T) {
	p := newTestPeek(t)
	custom := memory.New()

	p.UseAdapter(custom)
	assert.Same(t, custom, p.Adapter())
	assert.Equal(t, "*memory.Store", p.AdapterName())

	p.UseAdapter(nil)
	assert.NotSame(t, custom, p.Adapter())
	assert.Equal(t, AdapterMemory, p.AdapterName())
}

type recordingAdapter struct {
	*memory.Store
	params []any
}

func TestRegisterAdapter(t *testing.T) {
	var built *recordingAdapter
	require.NoError(t, RegisterAdapter("recording", func(params ...any) (Adapter, error) {
		built = &recordingAdapter{Store: memory.New(), params: params}
		return built, nil
	}))
	assert.Contains(t, AdapterNames(), "recording")

	p := newTestPeek(t)
	require.NoError(t, p.SetAdapter("recording", "a", 1))
	assert.Same(t, built, p.Adapter())
	assert.Equal(t, []any{"a", 1}, built.params)
	assert.Equal(t, "recording", p.AdapterName())
}

func TestRegisterAdapterNilFactory(t *testing.T) {
	err := RegisterAdapter("nothing", nil)
	assert.ErrorIs(t, err, ErrNilFactory)
}

func TestNewAdapterNilResult(t *testing.T) {
	require.NoError(t, RegisterAdapter("nil-adapter", func(...any) (Adapter, error) { return nil, nil }))

	_, err := NewAdapter("nil-adapter")
	require.Error(t, err)
	assert.True(t, IsAdapterError(err))
}

func TestBuiltInAdapterParams(t *testing.T) {
	tests := []struct {
		name   string
		params []any
	}{
		{AdapterMemory, []any{"unexpected"}},
		{AdapterRedis, []any{42}},
		{AdapterRedis, []any{nil, "not a duration"}},
		{AdapterPostgres, nil},
		{AdapterMariaDB, []any{struct{}{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAdapter(tt.name, tt.params...)
			assert.ErrorIs(t, err, ErrInvalidAdapterParams)
		})
	}
}

func TestRedisAdapterDoesNotDialOnConstruction(t *testing.T) {
	a, err := NewAdapter(AdapterRedis)
	require.NoError(t, err)
	require.NotNil(t, a)
	if c, ok := a.(interface{ Close() error }); ok {
		assert.NoError(t, c.Close())
	}
}

func TestNewWithUnknownConfiguredAdapter(t *testing.T) {
	_, err := New(Config{Env: "development", Adapter: "does-not-exist"})
	require.Error(t, err)
	assert.True(t, IsUnknownAdapterError(err))
}

func TestPurgeDelegatesToAdapter(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1000, 0)
	store := memory.New(memory.WithClock(func() time.Time { return now }))
	p := newTestPeek(t, WithAdapter(store))

	require.NoError(t, p.Record(p.BeforeRequest(ctx, "old"), "k", 1))
	now = now.Add(time.Hour)
	require.NoError(t, p.Record(p.BeforeRequest(ctx, "new"), "k", 1))

	removed, err := p.Purge(ctx, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())
}

type failingAdapter struct {
	memory.Store
	err error
}

func (f *failingAdapter) Save(context.Context, string, string, any) error { return f.err }

func (f *failingAdapter) Purge(context.Context, time.Duration) (int, error) { return 0, f.err }

func TestAdapterErrorsAreWrapped(t *testing.T) {
	boom := errors.New("store down")
	p := newTestPeek(t, WithAdapter(&failingAdapter{err: boom}))
	ctx := p.BeforeRequest(context.Background(), "r1")

	err := p.Record(ctx, "db.queries", 1)
	assert.ErrorIs(t, err, boom)

	_, err = p.Purge(ctx, time.Minute)
	assert.ErrorIs(t, err, boom)
}
