package redis

import "time"

// Config defines the connection settings of the Redis client backing the
// redis storage adapter.
type Config struct {
	// Host is the Redis server hostname or IP address
	// Default: "localhost"
	Host string `yaml:"host"`

	// Port is the Redis server port
	// Default: 6379
	Port int `yaml:"port"`

	// Username is the Redis username for ACL authentication (Redis 6.0+)
	Username string `yaml:"username"`

	// Password is the Redis password for authentication
	Password string `yaml:"password"`

	// DB is the Redis database number to use
	// Default: 0
	DB int `yaml:"db"`

	// PoolSize is the maximum number of socket connections
	// Default: 10 per CPU
	PoolSize int `yaml:"pool_size"`

	// MinIdleConns is the minimum number of idle connections to maintain
	MinIdleConns int `yaml:"min_idle_conns"`

	// IdleTimeout is the amount of time after which idle connections are closed
	// Default: 5 minutes
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// MaxRetries is the maximum number of retries before giving up
	// Default: 3
	// Set to -1 to disable retries
	MaxRetries int `yaml:"max_retries"`

	// DialTimeout is the timeout for establishing new connections
	// Default: 5 seconds
	DialTimeout time.Duration `yaml:"dial_timeout"`

	// ReadTimeout is the timeout for socket reads
	// Default: 3 seconds
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the timeout for socket writes
	// Default: ReadTimeout
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// TLS contains TLS/SSL configuration
	TLS TLSConfig `yaml:"tls"`

	// Logger is optional; when set it receives connection lifecycle logs.
	Logger Logger `yaml:"-"`
}

// TLSConfig contains TLS/SSL configuration parameters.
type TLSConfig struct {
	Enabled bool `yaml:"enabled"`

	// CACertPath is the file path to the CA certificate for verifying the server
	CACertPath string `yaml:"ca_cert_path"`

	ClientCertPath string `yaml:"client_cert_path"`
	ClientKeyPath  string `yaml:"client_key_path"`

	// InsecureSkipVerify disables server certificate verification.
	// WARNING: only for testing
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`

	// ServerName is used to verify the hostname on the returned certificates
	// If empty, the Host from the main config is used
	ServerName string `yaml:"server_name"`
}

// Logger is an interface that matches the v1/logger.Logger methods used here.
type Logger interface {
	Error(msg string, err error, fields ...map[string]interface{})
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
}

// Default values for configuration
const (
	DefaultHost        = "localhost"
	DefaultPort        = 6379
	DefaultIdleTimeout = 5 * time.Minute
	DefaultMaxRetries  = 3
	DefaultDialTimeout = 5 * time.Second
	DefaultReadTimeout = 3 * time.Second
)

// withDefaults fills zero values with the package defaults.
func (c Config) withDefaults() Config {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = DefaultDialTimeout
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	return c
}
