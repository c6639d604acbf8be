package redis

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/Aleph-Alpha/peek/v1/observability"
)

// RedisClient wraps the go-redis client used by the peek redis adapter.
//
// RedisClient implements the Client interface.
type RedisClient struct {
	// client is the underlying Redis client
	client redis.UniversalClient

	cfg Config

	// logger is used for structured logging; nil disables logging
	logger Logger

	// observer provides optional observability hooks for tracking operations
	observer observability.Observer

	// mu protects concurrent access to client
	mu sync.RWMutex

	closeOnce sync.Once
}

// NewClient creates a Redis client for a standalone instance.
// No connection is made until the first command; call Ping to verify reachability.
//
// Example:
//
//	client, err := redis.NewClient(redis.Config{Host: "localhost", Port: 6379})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
func NewClient(cfg Config) (*RedisClient, error) {
	cfg = cfg.withDefaults()

	var tlsConfig *tls.Config
	if cfg.TLS.Enabled {
		var err error
		tlsConfig, err = createTLSConfig(cfg.TLS, cfg.Host)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	opts := &redis.Options{
		Addr:            fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Username:        cfg.Username,
		Password:        cfg.Password,
		DB:              cfg.DB,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		ConnMaxIdleTime: cfg.IdleTimeout,
		MaxRetries:      cfg.MaxRetries,
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		TLSConfig:       tlsConfig,
	}

	r := &RedisClient{
		client: redis.NewClient(opts),
		cfg:    cfg,
		logger: cfg.Logger,
	}

	r.logInfo("Redis client initialized", map[string]interface{}{"addr": opts.Addr})
	return r, nil
}

// NewFromUniversalClient wraps an already configured go-redis client.
func NewFromUniversalClient(client redis.UniversalClient) *RedisClient {
	return &RedisClient{client: client}
}

// createTLSConfig creates a TLS configuration from the provided config
func createTLSConfig(cfg TLSConfig, defaultServerName string) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}

	if cfg.ServerName != "" {
		tlsConfig.ServerName = cfg.ServerName
	} else if defaultServerName != "" {
		tlsConfig.ServerName = defaultServerName
	}

	if cfg.CACertPath != "" {
		caCert, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA cert")
		}
		tlsConfig.RootCAs = caCertPool
	}

	if cfg.ClientCertPath != "" && cfg.ClientKeyPath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// Client returns the underlying go-redis client for advanced operations.
func (r *RedisClient) Client() redis.UniversalClient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.client
}

// Close closes the Redis client and releases all resources.
// Subsequent calls return nil.
func (r *RedisClient) Close() error {
	var err error
	r.closeOnce.Do(func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		r.logInfo("Closing Redis client", nil)
		if r.client != nil {
			if err = r.client.Close(); err != nil {
				r.logWarn("Failed to close Redis client", err)
			}
		}
	})
	return err
}

// WithObserver sets the observer for this client and returns the client for method chaining.
func (r *RedisClient) WithObserver(observer observability.Observer) *RedisClient {
	r.observer = observer
	return r
}

// WithLogger sets the logger for this client and returns the client for method chaining.
func (r *RedisClient) WithLogger(logger Logger) *RedisClient {
	r.logger = logger
	return r
}

func (r *RedisClient) logInfo(msg string, fields map[string]interface{}) {
	if r.logger != nil {
		r.logger.Info(msg, nil, fields)
	}
}

func (r *RedisClient) logWarn(msg string, err error) {
	if r.logger != nil {
		r.logger.Warn(msg, err, nil)
	}
}
