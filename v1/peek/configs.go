package peek

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/Aleph-Alpha/peek/v1/database"
	"github.com/Aleph-Alpha/peek/v1/redis"
	"github.com/Aleph-Alpha/peek/v1/requestctx"
)

// Default configuration values.
const (
	DefaultEnv          = "development"
	DefaultAdapter      = AdapterMemory
	DefaultRetainFor    = 30 * time.Minute
	envconfigPrefix     = "peek"
	defaultPurgeTimeout = 10 * time.Second
)

// Config configures a Peek instance.
type Config struct {
	// Env is the current deployment environment. Peek is enabled only when it
	// is one of AllowedEnvs. An empty Env disables peek.
	//
	// This setting can be configured via:
	//   - YAML configuration with the "env" key
	//   - Environment variable PEEK_ENV
	Env string `yaml:"env" envconfig:"ENV"`

	// Adapter is the name of the storage adapter: "memory", "redis",
	// "postgres", "mariadb" or any name added with RegisterAdapter.
	//
	// This setting can be configured via:
	//   - YAML configuration with the "adapter" key
	//   - Environment variable PEEK_ADAPTER
	//
	// Default: "memory"
	Adapter string `yaml:"adapter" envconfig:"ADAPTER"`

	// RequestIDHeader is the header Middleware reads the request id from and
	// echoes it into.
	//
	// Default: "X-Request-Id"
	RequestIDHeader string `yaml:"request_id_header" envconfig:"REQUEST_ID_HEADER"`

	// IgnoreRequestIDHeader makes Middleware always generate the request id
	// instead of accepting one from the client. Clients that reuse an id
	// share one measurement bucket, so enable it when the header does not come
	// from a trusted proxy.
	//
	// This setting can be configured via:
	//   - YAML configuration with the "ignore_request_id_header" key
	//   - Environment variable PEEK_IGNORE_REQUEST_ID_HEADER
	IgnoreRequestIDHeader bool `yaml:"ignore_request_id_header" envconfig:"IGNORE_REQUEST_ID_HEADER"`

	// PurgeInterval enables periodic purging of stale requests when positive.
	PurgeInterval time.Duration `yaml:"purge_interval" envconfig:"PURGE_INTERVAL"`

	// RetainFor is how long a request's measurements survive a purge.
	//
	// Default: 30 minutes
	RetainFor time.Duration `yaml:"retain_for" envconfig:"RETAIN_FOR"`

	// Redis configures the "redis" adapter.
	Redis redis.Config `yaml:"redis" ignored:"true"`

	// Database configures the "postgres" and "mariadb" adapters.
	Database database.Config `yaml:"database" ignored:"true"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Env:             DefaultEnv,
		Adapter:         DefaultAdapter,
		RequestIDHeader: requestctx.DefaultHeader,
		RetainFor:       DefaultRetainFor,
	}
}

// LoadConfig builds a Config from DefaultConfig and PEEK_* environment variables.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if err := envconfig.Process(envconfigPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("peek: load config from environment: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads a YAML file over DefaultConfig, then applies PEEK_*
// environment overrides.
func LoadConfigFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("peek: read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("peek: parse config %s: %w", path, err)
	}
	if err := envconfig.Process(envconfigPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("peek: load config from environment: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Adapter == "" {
		c.Adapter = DefaultAdapter
	}
	if c.RequestIDHeader == "" {
		c.RequestIDHeader = requestctx.DefaultHeader
	}
	if c.RetainFor <= 0 {
		c.RetainFor = DefaultRetainFor
	}
}

func (c *Config) validate() error {
	if _, err := lookupAdapter(c.Adapter); err != nil {
		return err
	}
	if c.PurgeInterval < 0 {
		return fmt.Errorf("peek: purge_interval must not be negative")
	}
	return nil
}

// adapterParams returns the SetAdapter parameters implied by the config for
// the built-in adapters.
func (c Config) adapterParams() []any {
	switch normalizeAdapterName(c.Adapter) {
	case AdapterRedis:
		return []any{c.Redis}
	case AdapterPostgres, AdapterMariaDB:
		return []any{c.Database}
	default:
		return nil
	}
}
