package database

import "time"

// Supported database types.
const (
	TypePostgres = "postgres"
	TypeMariaDB  = "mariadb"
)

// Connection pool defaults applied when ConnectionDetails leaves a field at zero.
const (
	DefaultMaxOpenConns    = 50
	DefaultMaxIdleConns    = 25
	DefaultConnMaxLifetime = 1 * time.Minute
)

// Config contains configuration for database client creation.
// Use one of the helper functions (PostgresConfig, MariaDBConfig) to create it.
type Config struct {
	// Type is the database type ("postgres" or "mariadb")
	Type string `yaml:"type" envconfig:"DATABASE_TYPE"`

	Connection        Connection        `yaml:"connection"`
	ConnectionDetails ConnectionDetails `yaml:"connection_details"`
}

// Connection holds the network and credential settings.
type Connection struct {
	Host     string `yaml:"host" envconfig:"DATABASE_HOST"`
	Port     string `yaml:"port" envconfig:"DATABASE_PORT"`
	User     string `yaml:"user" envconfig:"DATABASE_USER"`
	Password string `yaml:"password" envconfig:"DATABASE_PASSWORD"`
	DbName   string `yaml:"db_name" envconfig:"DATABASE_NAME"`

	// SSLMode is only used by postgres.
	SSLMode string `yaml:"ssl_mode" envconfig:"DATABASE_SSL_MODE"`

	// Charset is only used by mariadb.
	// Default: "utf8mb4"
	Charset string `yaml:"charset" envconfig:"DATABASE_CHARSET"`
}

// ConnectionDetails configures the connection pool.
type ConnectionDetails struct {
	MaxOpenConns    int           `yaml:"max_open_conns" envconfig:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" envconfig:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" envconfig:"DATABASE_CONN_MAX_LIFETIME"`
}

// PostgresConfig creates a database.Config for PostgreSQL.
//
// Example:
//
//	fx.Provide(func() database.Config {
//	    return database.PostgresConfig(database.Connection{
//	        Host: "localhost",
//	        Port: "5432",
//	        // ...
//	    })
//	})
func PostgresConfig(conn Connection) Config {
	return Config{Type: TypePostgres, Connection: conn}
}

// MariaDBConfig creates a database.Config for MariaDB/MySQL.
func MariaDBConfig(conn Connection) Config {
	return Config{Type: TypeMariaDB, Connection: conn}
}
