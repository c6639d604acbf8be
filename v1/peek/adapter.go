package peek

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Aleph-Alpha/peek/v1/adapter/memory"
	"github.com/Aleph-Alpha/peek/v1/adapter/redisstore"
	"github.com/Aleph-Alpha/peek/v1/adapter/sqlstore"
	"github.com/Aleph-Alpha/peek/v1/database"
	"github.com/Aleph-Alpha/peek/v1/redis"
)

// Adapter stores raw measurements per request.
// Implementations must be safe for concurrent use.
type Adapter interface {
	// Save stores value under key for the request. A later Save of the same
	// key replaces the value.
	Save(ctx context.Context, requestID, key string, value any) error

	// Get returns all measurements of the request. Unknown requests yield an
	// empty map.
	Get(ctx context.Context, requestID string) (map[string]any, error)

	// Requests lists the stored request ids.
	Requests(ctx context.Context) ([]string, error)

	// Purge drops requests whose last write is older than olderThan and
	// returns how many were dropped.
	Purge(ctx context.Context, olderThan time.Duration) (int, error)

	// Reset drops everything.
	Reset(ctx context.Context) error
}

// AdapterFactory builds an adapter from the parameters given to SetAdapter.
type AdapterFactory func(params ...any) (Adapter, error)

// Names of the built-in adapters.
const (
	AdapterMemory   = "memory"
	AdapterRedis    = "redis"
	AdapterPostgres = "postgres"
	AdapterMariaDB  = "mariadb"
)

var (
	adaptersMu sync.RWMutex
	adapters   = map[string]AdapterFactory{
		AdapterMemory:   newMemoryAdapter,
		AdapterRedis:    newRedisAdapter,
		AdapterPostgres: sqlAdapterFactory(database.TypePostgres),
		AdapterMariaDB:  sqlAdapterFactory(database.TypeMariaDB),
	}
)

func normalizeAdapterName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// RegisterAdapter makes an adapter available to SetAdapter under name,
// replacing any previous factory of that name.
func RegisterAdapter(name string, factory AdapterFactory) error {
	if factory == nil {
		return &AdapterError{Name: name, Err: ErrNilFactory}
	}
	adaptersMu.Lock()
	defer adaptersMu.Unlock()
	adapters[normalizeAdapterName(name)] = factory
	return nil
}

// AdapterNames lists the registered adapter names, sorted.
func AdapterNames() []string {
	adaptersMu.RLock()
	defer adaptersMu.RUnlock()

	names := make([]string, 0, len(adapters))
	for name := range adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// lookupAdapter resolves name to its factory.
func lookupAdapter(name string) (AdapterFactory, error) {
	adaptersMu.RLock()
	defer adaptersMu.RUnlock()

	factory, ok := adapters[normalizeAdapterName(name)]
	if !ok {
		return nil, &AdapterError{Name: name, Err: ErrUnknownAdapter}
	}
	return factory, nil
}

// NewAdapter resolves name and builds the adapter with params.
func NewAdapter(name string, params ...any) (Adapter, error) {
	factory, err := lookupAdapter(name)
	if err != nil {
		return nil, err
	}
	a, err := factory(params...)
	if err != nil {
		return nil, &AdapterError{Name: name, Err: err}
	}
	if a == nil {
		return nil, &AdapterError{Name: name, Err: fmt.Errorf("factory returned nil adapter")}
	}
	return a, nil
}

func newMemoryAdapter(params ...any) (Adapter, error) {
	if len(params) > 0 {
		return nil, fmt.Errorf("%w: memory takes no parameters", ErrInvalidAdapterParams)
	}
	return memory.New(), nil
}

// newRedisAdapter accepts an optional redis.Client or redis.Config (default
// localhost:6379) followed by an optional time.Duration expiry.
func newRedisAdapter(params ...any) (Adapter, error) {
	var opts []redisstore.Option
	if len(params) > 1 {
		ttl, ok := params[1].(time.Duration)
		if !ok || len(params) > 2 {
			return nil, fmt.Errorf("%w: redis expects [client or config] [expiry]", ErrInvalidAdapterParams)
		}
		opts = append(opts, redisstore.WithExpiresIn(ttl))
	}

	if len(params) == 0 {
		return redisstore.Open(redis.Config{}, opts...)
	}
	switch p := params[0].(type) {
	case redis.Client:
		return redisstore.New(p, opts...), nil
	case redis.Config:
		return redisstore.Open(p, opts...)
	case *redis.Config:
		return redisstore.Open(*p, opts...)
	default:
		return nil, fmt.Errorf("%w: redis does not accept %T", ErrInvalidAdapterParams, params[0])
	}
}

// sqlAdapterFactory accepts a *gorm.DB, a database.Config or a
// database.Connection. The dialect comes from the adapter name.
func sqlAdapterFactory(dbType string) AdapterFactory {
	return func(params ...any) (Adapter, error) {
		if len(params) != 1 {
			return nil, fmt.Errorf("%w: %s expects one of *gorm.DB, database.Config, database.Connection", ErrInvalidAdapterParams, dbType)
		}
		switch p := params[0].(type) {
		case *gorm.DB:
			return sqlstore.New(p)
		case database.Config:
			p.Type = dbType
			return sqlstore.Open(p)
		case database.Connection:
			return sqlstore.Open(database.Config{Type: dbType, Connection: p})
		default:
			return nil, fmt.Errorf("%w: %s does not accept %T", ErrInvalidAdapterParams, dbType, params[0])
		}
	}
}
